package indicator

import (
	"fmt"

	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/model"
)

// Codicon glyphs used in indicator text.
const (
	GlyphTarget        = "$(target)"
	GlyphLoading       = "$(loading~spin)"
	GlyphCircle        = "$(circle-filled)"
	TooltipLoading     = "Loading..."
	TooltipAllCaughtUp = "You are all caught up!"
)

// Group colors.
const (
	ColorMergeable   = "#00FF00"
	ColorBlocked     = "#FF0000"
	ColorNeedsReview = "#FFFF00"
	ColorFollowUp    = "#FFA500"
)

// Tooltip is either static Text or an ordered list of sections.
type Tooltip struct {
	Text     string
	Sections []Section
}

// Markdown renders the tooltip as trusted markdown.
func (t Tooltip) Markdown() string {
	return RenderTooltip(t)
}

// Section is the tooltip block for one group.
type Section struct {
	Group    focus.Group
	Color    string
	Messages []string
	Link     Link
}

// State is everything the status item displays. Color "" means unset.
type State struct {
	Text    string
	Color   string
	Tooltip Tooltip
	Top     *focus.Representative
}

// LoadingState is shown between creation and the first refresh.
func LoadingState() State {
	return State{Text: GlyphLoading, Tooltip: Tooltip{Text: TooltipLoading}}
}

type presentation struct {
	color     string
	linkTitle string
	messages  func(items []model.Item) []string
}

var presentations = map[focus.Group]presentation{
	focus.GroupMergeable: {
		color:     ColorMergeable,
		linkTitle: "Show all mergeable",
		messages: func(items []model.Item) []string {
			return []string{fmt.Sprintf("You have %s that can be merged.", Pluralize(len(items), "pull request"))}
		},
	},
	focus.GroupBlocked: {
		color:     ColorBlocked,
		linkTitle: "Show all blocked",
		messages:  blockedMessages,
	},
	focus.GroupNeedsReview: {
		color:     ColorNeedsReview,
		linkTitle: "Show all waiting for review",
		messages: func(items []model.Item) []string {
			n := len(items)
			return []string{fmt.Sprintf("You have %s that %s waiting for your review.",
				Pluralize(n, "pull request"), agree(n, "is", "are"))}
		},
	},
	focus.GroupFollowUp: {
		color:     ColorFollowUp,
		linkTitle: "Show all requiring follow-up",
		messages: func(items []model.Item) []string {
			n := len(items)
			return []string{fmt.Sprintf("You have %s that %s been reviewed and %s follow-up.",
				Pluralize(n, "pull request"), agree(n, "has", "have"), agree(n, "requires", "require"))}
		},
	},
}

// blockedMessage phrases one blocked sub-category.
var blockedMessage = map[model.ActionableCategory]func(n int) string{
	model.CategoryFailedChecks: func(n int) string {
		return fmt.Sprintf("You have %s that %s failed CI checks.", Pluralize(n, "pull request"), agree(n, "has", "have"))
	},
	model.CategoryMergeableConflicts: func(n int) string {
		return fmt.Sprintf("You have %s that can be merged once conflicts are resolved.", Pluralize(n, "pull request"))
	},
	model.CategoryConflicts: func(n int) string {
		return fmt.Sprintf("You have %s that %s conflicts.", Pluralize(n, "pull request"), agree(n, "has", "have"))
	},
	model.CategoryBlocked: func(n int) string {
		return fmt.Sprintf("You have %s that %s attention.", Pluralize(n, "pull request"), agree(n, "needs", "need"))
	},
}

func blockedMessages(items []model.Item) []string {
	split := focus.SplitBlocked(items)
	var out []string
	for _, c := range focus.BlockedCategories {
		if n := len(split[c]); n > 0 {
			out = append(out, blockedMessage[c](n))
		}
	}
	return out
}

// Project derives the indicator state from grouped items.
func Project(g *focus.Grouped) State {
	if !g.HasAny(focus.IndicatorGroups) {
		return State{Text: GlyphTarget, Tooltip: Tooltip{Text: TooltipAllCaughtUp}}
	}

	var st State
	for _, group := range focus.IndicatorGroups {
		items := g.Get(group)
		if len(items) == 0 {
			continue
		}
		p := presentations[group]
		st.Tooltip.Sections = append(st.Tooltip.Sections, Section{
			Group:    group,
			Color:    p.color,
			Messages: p.messages(items),
			Link:     NewGroupLink(p.linkTitle, group),
		})
		if st.Color == "" {
			st.Color = p.color
		}
	}

	st.Text = GlyphTarget
	if top, ok := focus.Top(g, focus.IndicatorGroups); ok {
		st.Top = &top
		st.Text = fmt.Sprintf("%s #%s %s", GlyphTarget, top.Item.ID, top.Label)
	}
	return st
}

// Pluralize returns "1 <word>" or "<n> <word>s".
func Pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func agree(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
