package indicator

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var glyphs = strings.NewReplacer(
	GlyphTarget, "◎",
	GlyphLoading, "…",
	GlyphCircle, "●",
)

// RenderGlyphs replaces codicon references with terminal symbols.
func RenderGlyphs(s string) string {
	return glyphs.Replace(s)
}

// LineItem is a StatusItem that prints a line to w whenever the visible
// status changes. It is used when no TUI is available.
type LineItem struct {
	w       io.Writer
	details bool

	mu       sync.Mutex
	text     string
	color    string
	command  string
	tooltip  Tooltip
	visible  bool
	disposed bool
	last     string
}

// LineOption is a functional option for LineItem.
type LineOption func(*LineItem)

// WithDetails prints the tooltip messages under each status line.
func WithDetails() LineOption {
	return func(l *LineItem) {
		l.details = true
	}
}

// NewLineItem creates a hidden line item writing to w.
func NewLineItem(w io.Writer, opts ...LineOption) *LineItem {
	l := &LineItem{w: w}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *LineItem) SetText(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.text = text
	l.render()
}

func (l *LineItem) SetTooltip(t Tooltip) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tooltip = t
	l.render()
}

func (l *LineItem) SetColor(c string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = c
	l.render()
}

func (l *LineItem) SetCommand(command string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.command = command
}

func (l *LineItem) Show() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.visible = true
	l.render()
}

func (l *LineItem) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disposed = true
	l.visible = false
}

// Command returns the bound command.
func (l *LineItem) Command() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.command
}

// render must be called with l.mu held. Unchanged output is not reprinted.
func (l *LineItem) render() {
	if !l.visible || l.disposed {
		return
	}

	var b strings.Builder
	b.WriteString(colorize(l.color, RenderGlyphs(l.text)))
	if l.details {
		if len(l.tooltip.Sections) == 0 {
			if l.tooltip.Text != "" {
				fmt.Fprintf(&b, "\n    %s", l.tooltip.Text)
			}
		}
		for _, s := range l.tooltip.Sections {
			for _, msg := range s.Messages {
				fmt.Fprintf(&b, "\n  %s %s", colorize(s.Color, "●"), msg)
			}
		}
	}

	out := b.String()
	if out == l.last {
		return
	}
	l.last = out
	_, _ = fmt.Fprintln(l.w, out)
}

func colorize(hex, s string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return s
	}
	return color.RGB(r, g, b).Sprint(s)
}

func parseHex(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
