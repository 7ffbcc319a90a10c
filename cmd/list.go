package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/focus/config"
	"github.com/spiffcs/focus/internal/duration"
	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/model"
	"github.com/spiffcs/focus/internal/output"
	"github.com/spiffcs/focus/internal/tui"
)

// NewCmdList creates the list command.
func NewCmdList(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pull requests by focus group (same as bare focus)",
		Long: `Fetches your open pull requests from every configured integration and
prints them grouped by what needs to happen next: mergeable, blocked,
needs review, follow-up, waiting for review and draft.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	addListFlags(cmd, opts)
	return cmd
}

// addListFlags adds the list-specific flags to a command.
func addListFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, markdown)")
	cmd.Flags().StringVarP(&opts.Since, "since", "s", "", "Only show items updated within this window (e.g. 1d, 1w, 6mo)")
	cmd.Flags().StringSliceVarP(&opts.Groups, "group", "g", nil, "Only show these groups (repeatable)")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Ignore cached provider lists")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable TUI progress (default: auto-detect)")
}

func runList(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(firstNonEmpty(opts.Format, cfg.DefaultFormat))
	if err != nil {
		return err
	}
	groups, err := parseGroups(opts.Groups)
	if err != nil {
		return err
	}
	cutoff, err := sinceCutoff(opts.Since, time.Now())
	if err != nil {
		return err
	}

	// JSON and markdown are usually piped; keep the terminal clean
	if format != output.FormatTable && opts.TUI == nil {
		off := false
		opts.TUI = &off
	}

	items, err := fetchItems(ctx, opts, cfg)
	if err != nil {
		return err
	}

	formatter := output.NewFormatter(format, output.Options{Groups: groups})
	return formatter.Format(focus.GroupItems(filterSince(items, cutoff)), os.Stdout)
}

// fetchItems runs one refresh behind the progress display and returns the
// published items.
func fetchItems(ctx context.Context, opts *Options, cfg *config.Config) ([]model.Item, error) {
	progress := startProgress(opts)
	defer progress.close()

	a, err := newApp(ctx, cfg, progress)
	if err != nil {
		return nil, err
	}
	if err := a.refresh(ctx, opts.Force, progress); err != nil {
		return nil, err
	}

	items := a.service.Items()
	progress.send(tui.TaskGroup, tui.StatusComplete, tui.WithCount(focus.GroupItems(items).Len()))
	tui.SendEvent(progress.events, tui.DoneEvent{})
	return items, nil
}

// parseGroups validates group names.
func parseGroups(names []string) ([]focus.Group, error) {
	groups := make([]focus.Group, 0, len(names))
	for _, name := range names {
		g, ok := focus.ParseGroup(name)
		if !ok {
			return nil, fmt.Errorf("unknown group %q", name)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// sinceCutoff converts a --since window to the oldest update time shown.
// An empty window shows everything.
func sinceCutoff(since string, now time.Time) (time.Time, error) {
	if since == "" {
		return time.Time{}, nil
	}
	t, err := duration.Since(since, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since: %w", err)
	}
	return t, nil
}

func filterSince(items []model.Item, cutoff time.Time) []model.Item {
	if cutoff.IsZero() {
		return items
	}
	var out []model.Item
	for _, item := range items {
		if !item.UpdatedAt.Before(cutoff) {
			out = append(out, item)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
