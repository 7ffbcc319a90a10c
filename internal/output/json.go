package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/model"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Options
	Pretty bool
}

// JSONGroup is one group in JSON output. Blocked items are additionally
// split by sub-category.
type JSONGroup struct {
	Group   focus.Group                               `json:"group"`
	Count   int                                       `json:"count"`
	Items   []model.Item                              `json:"items"`
	Blocked map[model.ActionableCategory][]model.Item `json:"blocked,omitempty"`
}

// JSONOutput wraps the groups with totals.
type JSONOutput struct {
	Total  int         `json:"total"`
	Groups []JSONGroup `json:"groups"`
}

// Format outputs grouped items as JSON. Empty groups are included so the
// shape is stable.
func (f *JSONFormatter) Format(g *focus.Grouped, w io.Writer) error {
	out := JSONOutput{Groups: []JSONGroup{}}
	for _, group := range f.groups() {
		items := g.Get(group)
		if items == nil {
			items = []model.Item{}
		}
		jg := JSONGroup{Group: group, Count: len(items), Items: items}
		if group == focus.GroupBlocked && len(items) > 0 {
			jg.Blocked = focus.SplitBlocked(items)
		}
		out.Total += len(items)
		out.Groups = append(out.Groups, jg)
	}

	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(out)
}
