package output

import (
	"fmt"
	"io"

	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/format"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	Options
}

// Format outputs one section per non-empty group.
func (f *MarkdownFormatter) Format(g *focus.Grouped, w io.Writer) error {
	now := f.now()
	fmt.Fprintln(w, "# Focus")
	fmt.Fprintf(w, "\n*Generated: %s*\n", now.Format("2006-01-02 15:04"))

	written := 0
	for _, group := range f.groups() {
		items := g.Get(group)
		if len(items) == 0 {
			continue
		}
		written++

		fmt.Fprintf(w, "\n## %s (%d)\n\n", format.GroupTitle(group), len(items))
		for _, item := range items {
			fmt.Fprintf(w, "- [%s](%s) %s", format.Ref(item), item.URL, item.Title)
			if group == focus.GroupBlocked {
				fmt.Fprintf(w, " *(%s)*", format.CategoryLabel(item.Category))
			}
			fmt.Fprintf(w, " by @%s, updated %s ago\n", item.Author, format.Age(item.UpdatedAt, now))
		}
	}

	if written == 0 {
		fmt.Fprintln(w, "\nNothing needs your attention.")
	}
	return nil
}
