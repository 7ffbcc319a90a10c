// Package format renders items and groups for terminal output.
package format

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// StripAnsi removes ANSI escape sequences, including OSC 8 hyperlinks.
func StripAnsi(s string) string {
	return ansi.Strip(s)
}

// Width returns the number of terminal columns s occupies, ignoring color
// sequences. Wide runes such as CJK and emoji count as two.
func Width(s string) int {
	return runewidth.StringWidth(StripAnsi(s))
}

// Truncate shortens plain text to at most max columns, ending it with an
// ellipsis when anything was cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	if max <= len(ellipsis) {
		return ellipsis[:max]
	}
	return runewidth.Truncate(s, max, ellipsis)
}

// PadRight pads s with spaces to width columns. Colored strings are measured
// by their visible text.
func PadRight(s string, width int) string {
	if w := Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// Fit truncates and pads plain text to exactly width columns.
func Fit(s string, width int) string {
	return PadRight(Truncate(s, width), width)
}
