// Package output renders grouped focus items for the list command.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/spiffcs/focus/internal/focus"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name. The empty string selects the table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or markdown)", s)
	}
}

// Formatter writes grouped items to w.
type Formatter interface {
	Format(g *focus.Grouped, w io.Writer) error
}

// Options are shared by every formatter.
type Options struct {
	// Groups limits output to these groups; nil means all of them.
	Groups []focus.Group
	// Now is the reference time for ages. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) groups() []focus.Group {
	if len(o.Groups) > 0 {
		return o.Groups
	}
	return focus.AllGroups
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format, opts Options) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Options: opts, Pretty: true}
	case FormatMarkdown:
		return &MarkdownFormatter{Options: opts}
	default:
		return &TableFormatter{Options: opts}
	}
}
