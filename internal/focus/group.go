package focus

import (
	"github.com/spiffcs/focus/internal/model"
)

// Group is one of the fixed focus groups. Groups have a total order given
// by AllGroups.
type Group string

const (
	GroupMergeable        Group = "mergeable"
	GroupBlocked          Group = "blocked"
	GroupNeedsReview      Group = "needs-review"
	GroupFollowUp         Group = "follow-up"
	GroupWaitingForReview Group = "waiting-for-review"
	GroupDraft            Group = "draft"
)

// AllGroups lists every group in canonical order.
var AllGroups = []Group{
	GroupMergeable,
	GroupBlocked,
	GroupNeedsReview,
	GroupFollowUp,
	GroupWaitingForReview,
	GroupDraft,
}

// IndicatorGroups are the groups the status indicator considers, in
// canonical order.
var IndicatorGroups = []Group{
	GroupMergeable,
	GroupBlocked,
	GroupNeedsReview,
	GroupFollowUp,
}

// BlockedCategories are the sub-categories folded into GroupBlocked, in the
// order they are probed.
var BlockedCategories = []model.ActionableCategory{
	model.CategoryFailedChecks,
	model.CategoryMergeableConflicts,
	model.CategoryConflicts,
	model.CategoryBlocked,
}

var categoryGroups = map[model.ActionableCategory]Group{
	model.CategoryMergeable:          GroupMergeable,
	model.CategoryFailedChecks:       GroupBlocked,
	model.CategoryMergeableConflicts: GroupBlocked,
	model.CategoryConflicts:          GroupBlocked,
	model.CategoryBlocked:            GroupBlocked,
	model.CategoryNeedsReview:        GroupNeedsReview,
	model.CategoryFollowUp:           GroupFollowUp,
	model.CategoryWaitingForReview:   GroupWaitingForReview,
	model.CategoryDraft:              GroupDraft,
}

// GroupFor returns the group a category belongs to. ok is false for
// categories that map to no group, including "other" and unknown values.
func GroupFor(c model.ActionableCategory) (Group, bool) {
	g, ok := categoryGroups[c]
	return g, ok
}

// ParseGroup validates a group name.
func ParseGroup(s string) (Group, bool) {
	for _, g := range AllGroups {
		if string(g) == s {
			return g, true
		}
	}
	return "", false
}

// Grouped holds items partitioned by group. Empty groups are not stored.
type Grouped struct {
	groups map[Group][]model.Item
}

// GroupItems partitions items into groups. Input order is preserved within
// each group. Items with unrecognized categories are dropped.
func GroupItems(items []model.Item) *Grouped {
	g := &Grouped{groups: make(map[Group][]model.Item)}
	for _, item := range items {
		group, ok := GroupFor(item.Category)
		if !ok {
			continue
		}
		g.groups[group] = append(g.groups[group], item)
	}
	return g
}

// Get returns the items in a group, or nil if the group is empty.
func (g *Grouped) Get(group Group) []model.Item {
	return g.groups[group]
}

// Groups returns the non-empty groups in canonical order.
func (g *Grouped) Groups() []Group {
	var out []Group
	for _, group := range AllGroups {
		if len(g.groups[group]) > 0 {
			out = append(out, group)
		}
	}
	return out
}

// Len returns the total number of grouped items.
func (g *Grouped) Len() int {
	n := 0
	for _, items := range g.groups {
		n += len(items)
	}
	return n
}

// Empty reports whether no group has items.
func (g *Grouped) Empty() bool {
	return g.Len() == 0
}

// HasAny reports whether any of the given groups has items.
func (g *Grouped) HasAny(groups []Group) bool {
	for _, group := range groups {
		if len(g.groups[group]) > 0 {
			return true
		}
	}
	return false
}

// SplitBlocked re-buckets blocked items by sub-category. Anything that is not
// one of the specific sub-categories lands in CategoryBlocked.
func SplitBlocked(items []model.Item) map[model.ActionableCategory][]model.Item {
	out := make(map[model.ActionableCategory][]model.Item)
	for _, item := range items {
		switch item.Category {
		case model.CategoryFailedChecks, model.CategoryMergeableConflicts, model.CategoryConflicts:
			out[item.Category] = append(out[item.Category], item)
		default:
			out[model.CategoryBlocked] = append(out[model.CategoryBlocked], item)
		}
	}
	return out
}
