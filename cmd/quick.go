package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/indicator"
	"github.com/spiffcs/focus/internal/output"
	"github.com/spiffcs/focus/internal/tui"
)

// NewCmdQuick creates the quick command.
func NewCmdQuick(opts *Options) *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "quick",
		Short: "Open the quick focus view",
		Long: `Opens an interactive view with one tab per focus group. Use --group to
choose the initial tab, or --link with a command link copied from the
status indicator tooltip.

Without a terminal the selected group is printed as a table instead.`,
		Example: `  focus quick --group blocked
  focus quick --link 'command:focus.quickFocus?%7B%22state%22%3A%7B%22initialGroup%22%3A%22mergeable%22%7D%7D'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			initial, err := initialGroup(group, opts.Link)
			if err != nil {
				return err
			}
			return runQuick(cmd, opts, initial)
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Group to open on")
	cmd.Flags().StringVar(&opts.Link, "link", "", "Command link selecting the group to open on")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Ignore cached provider lists")
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable the interactive view (default: auto-detect)")
	cmd.MarkFlagsMutuallyExclusive("group", "link")
	return cmd
}

// initialGroup resolves --group or --link. Both empty selects no group.
func initialGroup(group, link string) (focus.Group, error) {
	if link != "" {
		command, args, err := indicator.ParseCommandLink(link)
		if err != nil {
			return "", err
		}
		switch command {
		case indicator.CommandQuickFocus, indicator.CommandShowFocusPage:
		default:
			return "", fmt.Errorf("unsupported command %q", command)
		}
		return args.State.InitialGroup, nil
	}
	if group == "" {
		return "", nil
	}
	g, ok := focus.ParseGroup(group)
	if !ok {
		return "", fmt.Errorf("unknown group %q", group)
	}
	return g, nil
}

func runQuick(cmd *cobra.Command, opts *Options, initial focus.Group) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	interactive := shouldUseTUI(opts)
	items, err := fetchItems(ctx, opts, cfg)
	if err != nil {
		return err
	}

	if !interactive {
		var groups []focus.Group
		if initial != "" {
			groups = []focus.Group{initial}
		}
		return output.NewFormatter(output.FormatTable, output.Options{Groups: groups}).
			Format(focus.GroupItems(items), os.Stdout)
	}

	var quickOpts []tui.QuickOption
	if initial != "" {
		quickOpts = append(quickOpts, tui.WithInitialGroup(initial))
	}
	if store, err := openSnoozeStore(); err == nil {
		quickOpts = append(quickOpts, tui.WithSnoozer(store))
	}
	return tui.RunQuick(items, quickOpts...)
}
