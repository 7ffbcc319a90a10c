package focus

import (
	"slices"

	"github.com/spiffcs/focus/internal/model"
)

// Representative is the item chosen to stand for a group, with the short
// label describing what it needs.
type Representative struct {
	Item  model.Item
	Group Group
	Label string
}

// rankRule selects the first item of a group, optionally narrowed to one
// blocked sub-category.
type rankRule struct {
	group    Group
	category model.ActionableCategory
	label    string
}

// representativeRules are evaluated top-down. The first rule with a
// matching item wins, regardless of how many items other rules would match.
var representativeRules = []rankRule{
	{group: GroupMergeable, label: "can be merged"},
	{group: GroupBlocked, category: model.CategoryFailedChecks, label: "failed CI checks"},
	{group: GroupBlocked, category: model.CategoryMergeableConflicts, label: "has conflicts"},
	{group: GroupBlocked, category: model.CategoryConflicts, label: "has conflicts"},
	{group: GroupBlocked, category: model.CategoryBlocked, label: "is blocked"},
	{group: GroupNeedsReview, label: "needs your review"},
	{group: GroupFollowUp, label: "requires follow-up"},
	{group: GroupWaitingForReview, label: "is waiting for review"},
	{group: GroupDraft, label: "is a draft"},
}

func (r rankRule) pick(g *Grouped) (model.Item, bool) {
	items := g.Get(r.group)
	if r.category != "" {
		items = SplitBlocked(items)[r.category]
	}
	if len(items) == 0 {
		return model.Item{}, false
	}
	return items[0], true
}

// Top returns the representative of the first group in canonical order,
// restricted to groups, that has one.
func Top(g *Grouped, groups []Group) (Representative, bool) {
	for _, r := range representativeRules {
		if !slices.Contains(groups, r.group) {
			continue
		}
		if item, ok := r.pick(g); ok {
			return Representative{Item: item, Group: r.group, Label: r.label}, true
		}
	}
	return Representative{}, false
}

// RepresentativeOf returns the representative of a single group.
func RepresentativeOf(g *Grouped, group Group) (Representative, bool) {
	return Top(g, []Group{group})
}
