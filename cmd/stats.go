package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/format"
	"github.com/spiffcs/focus/internal/output"
	"github.com/spiffcs/focus/internal/stats"
)

// NewCmdStats creates the stats command.
func NewCmdStats() *cobra.Command {
	var (
		limit        int
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show how your focus groups changed over recent refreshes",
		Long: `Every published refresh from list, quick and watch records the size of
each focus group. This command shows the most recent records, oldest
first.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := stats.NewStore()
			if err != nil {
				return fmt.Errorf("failed to open stats history: %w", err)
			}
			snaps := store.Recent(limit)

			switch outputFormat {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(snaps)
			case "", "table":
				return printStats(os.Stdout, snaps, time.Now())
			default:
				return fmt.Errorf("invalid output format %q: must be 'table' or 'json'", outputFormat)
			}
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of refreshes to show")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json)")
	return cmd
}

func printStats(w io.Writer, snaps []stats.Snapshot, now time.Time) error {
	if len(snaps) == 0 {
		_, err := fmt.Fprintln(w, "No refreshes recorded yet.")
		return err
	}

	headers := []string{"WHEN", "TOTAL", "CHANGE"}
	for _, g := range focus.AllGroups {
		headers = append(headers, format.GroupTitle(g))
	}
	headers = append(headers, "MEDIAN AGE")

	rows := make([][]string, 0, len(snaps))
	for i, snap := range snaps {
		change := ""
		if i > 0 {
			change = fmt.Sprintf("%+d", snap.Total-snaps[i-1].Total)
		}
		row := []string{ago(snap.Timestamp, now), strconv.Itoa(snap.Total), change}
		for _, g := range focus.AllGroups {
			row = append(row, strconv.Itoa(snap.Groups[g]))
		}
		row = append(row, fmt.Sprintf("%.0fh", snap.MedianAgeHours))
		rows = append(rows, row)
	}
	return output.RenderList(w, headers, rows)
}
