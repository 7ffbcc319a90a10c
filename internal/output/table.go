package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/format"
	"github.com/spiffcs/focus/internal/indicator"
	"github.com/spiffcs/focus/internal/model"
)

// Column widths
const (
	colRef    = 28
	colTitle  = 48
	colStatus = 20
	colAuthor = 14
)

var groupColors = map[focus.Group]*color.Color{
	focus.GroupMergeable:        color.New(color.FgGreen, color.Bold),
	focus.GroupBlocked:          color.New(color.FgRed, color.Bold),
	focus.GroupNeedsReview:      color.New(color.FgYellow, color.Bold),
	focus.GroupFollowUp:         color.New(color.FgHiYellow, color.Bold),
	focus.GroupWaitingForReview: color.New(color.FgCyan, color.Bold),
	focus.GroupDraft:            color.New(color.FgHiBlack, color.Bold),
}

var (
	refColor    = color.New(color.FgBlue)
	dimColor    = color.New(color.FgHiBlack)
	failedColor = color.New(color.FgRed)
)

// TableFormatter formats output as a terminal table
type TableFormatter struct {
	Options
}

// hyperlink wraps text in an OSC 8 link when w is a terminal.
func hyperlink(w io.Writer, text, url string) string {
	f, ok := w.(*os.File)
	if !ok || url == "" || !isatty.IsTerminal(f.Fd()) {
		return text
	}
	return termenv.Hyperlink(url, text)
}

// Format writes one section per non-empty group followed by a summary.
func (f *TableFormatter) Format(g *focus.Grouped, w io.Writer) error {
	now := f.now()
	total, sections := 0, 0

	for _, group := range f.groups() {
		items := g.Get(group)
		if len(items) == 0 {
			continue
		}
		if sections > 0 {
			fmt.Fprintln(w)
		}
		sections++
		total += len(items)

		header := fmt.Sprintf("%s (%d)", format.GroupTitle(group), len(items))
		if c, ok := groupColors[group]; ok {
			header = c.Sprint(header)
		}
		fmt.Fprintln(w, header)
		fmt.Fprintln(w, dimColor.Sprint(strings.Repeat("-", colRef+colTitle+colStatus+colAuthor+12)))

		for _, item := range items {
			fmt.Fprintln(w, f.row(w, item, format.Age(item.UpdatedAt, now)))
		}
	}

	if total == 0 {
		fmt.Fprintln(w, "Nothing needs your attention.")
		return nil
	}
	fmt.Fprintf(w, "\n%s across %s\n",
		indicator.Pluralize(total, "pull request"), indicator.Pluralize(sections, "group"))
	return nil
}

func (f *TableFormatter) row(w io.Writer, item model.Item, age string) string {
	ref := format.Truncate(format.Ref(item), colRef)
	ref = format.PadRight(refColor.Sprint(hyperlink(w, ref, item.URL)), colRef)

	status := format.Fit(format.CategoryLabel(item.Category), colStatus)
	switch item.Category {
	case model.CategoryFailedChecks, model.CategoryConflicts, model.CategoryMergeableConflicts:
		status = failedColor.Sprint(status)
	}

	return fmt.Sprintf("  %s  %s  %s  %s  %s",
		ref,
		format.Fit(item.Title, colTitle),
		status,
		dimColor.Sprint(format.Fit("@"+item.Author, colAuthor)),
		age,
	)
}
