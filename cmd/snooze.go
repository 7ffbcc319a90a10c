package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/focus/internal/duration"
	"github.com/spiffcs/focus/internal/format"
	"github.com/spiffcs/focus/internal/model"
	"github.com/spiffcs/focus/internal/output"
	"github.com/spiffcs/focus/internal/snooze"
	"github.com/spiffcs/focus/internal/urlutil"
)

// NewCmdSnooze creates the snooze command with subcommands.
func NewCmdSnooze(opts *Options) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "snooze <item>",
		Short: "Hide a pull request until it changes",
		Long: `Snoozed pull requests are hidden from every focus group until they are
updated again, or until the --for period ends.

The item is a key (github:owner/repo#42), a reference (owner/repo#42) or
a URL.`,
		Example: `  focus snooze owner/repo#42
  focus snooze https://github.com/owner/repo/pull/42 --for 2d
  focus snooze list
  focus snooze remove github:owner/repo#42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnooze(cmd, opts, args[0], period)
		},
	}

	cmd.Flags().StringVar(&period, "for", "", "Wake up after this period even without activity (e.g. 2d, 1w)")
	cmd.AddCommand(newCmdSnoozeList())
	cmd.AddCommand(newCmdSnoozeRemove())
	return cmd
}

func runSnooze(cmd *cobra.Command, opts *Options, query, period string) error {
	var until time.Time
	if period != "" {
		t, err := duration.Until(period, time.Now())
		if err != nil {
			return fmt.Errorf("invalid --for: %w", err)
		}
		until = t
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	off := false
	opts.TUI = &off
	items, err := fetchItems(cmd.Context(), opts, cfg)
	if err != nil {
		return err
	}

	item, ok := findItem(items, query)
	if !ok {
		return fmt.Errorf("no open pull request matches %q", query)
	}

	store, err := openSnoozeStore()
	if err != nil {
		return err
	}
	if err := store.Snooze(item, until); err != nil {
		return err
	}

	fmt.Printf("Snoozed %s: %s\n", item.Key(), item.Title)
	return nil
}

func newCmdSnoozeList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snoozed pull requests",
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := openSnoozeStore()
			if err != nil {
				return err
			}

			entries := store.List()
			if len(entries) == 0 {
				fmt.Println("Nothing is snoozed.")
				return nil
			}

			now := time.Now()
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Key, ago(e.SnoozedAt, now), untilLabel(e), format.Truncate(e.Title, 50)})
			}
			return output.RenderList(os.Stdout, []string{"ITEM", "SNOOZED", "UNTIL", "TITLE"}, rows)
		},
	}
}

func newCmdSnoozeRemove() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <key>",
		Aliases: []string{"rm"},
		Short:   "Wake a snoozed pull request",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := openSnoozeStore()
			if err != nil {
				return err
			}
			if !store.IsSnoozed(args[0]) {
				return fmt.Errorf("%s is not snoozed", args[0])
			}
			if err := store.Unsnooze(args[0]); err != nil {
				return err
			}
			fmt.Printf("Woke %s.\n", args[0])
			return nil
		},
	}
}

func openSnoozeStore() (*snooze.Store, error) {
	store, err := snooze.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open snooze store: %w", err)
	}
	return store, nil
}

func untilLabel(e snooze.Entry) string {
	if e.Until.IsZero() {
		return "next update"
	}
	return e.Until.Local().Format("2006-01-02 15:04")
}

// findItem matches an item by key, owner/repo#number reference or URL.
func findItem(items []model.Item, query string) (model.Item, bool) {
	query = strings.TrimSpace(query)
	for _, item := range items {
		if item.URL != "" && item.URL == query {
			return item, true
		}
	}

	ref, err := urlutil.ParseRef(query)
	if err != nil {
		return model.Item{}, false
	}
	for _, item := range items {
		if item.Repository == ref.Repository && item.Number == ref.Number &&
			(ref.Provider == "" || item.Provider == ref.Provider) {
			return item, true
		}
	}
	return model.Item{}, false
}
