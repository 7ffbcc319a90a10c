package indicator

import (
	"fmt"
	"strings"
)

const sectionSeparator = "\n\n---\n\n"

// RenderTooltip renders tooltip sections as trusted markdown with inline
// color spans and command links. Static tooltips are returned as is.
func RenderTooltip(t Tooltip) string {
	if len(t.Sections) == 0 {
		return t.Text
	}

	parts := make([]string, 0, len(t.Sections))
	for _, s := range t.Sections {
		parts = append(parts, renderSection(s))
	}
	return strings.Join(parts, sectionSeparator)
}

func renderSection(s Section) string {
	var b strings.Builder
	for i, msg := range s.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, `<span style="color:%s;">%s</span> %s`, s.Color, GlyphCircle, msg)
	}
	fmt.Fprintf(&b, "\n<span>[%s](%s)</span>", s.Link.Title, s.Link.URI())
	return b.String()
}
