package format

import (
	"fmt"

	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/model"
)

var groupTitles = map[focus.Group]string{
	focus.GroupMergeable:        "Mergeable",
	focus.GroupBlocked:          "Blocked",
	focus.GroupNeedsReview:      "Needs Review",
	focus.GroupFollowUp:         "Follow-up",
	focus.GroupWaitingForReview: "Waiting for Review",
	focus.GroupDraft:            "Draft",
}

var categoryLabels = map[model.ActionableCategory]string{
	model.CategoryMergeable:          "mergeable",
	model.CategoryFailedChecks:       "failed checks",
	model.CategoryMergeableConflicts: "approved, conflicts",
	model.CategoryConflicts:          "conflicts",
	model.CategoryBlocked:            "blocked",
	model.CategoryNeedsReview:        "review requested",
	model.CategoryFollowUp:           "follow-up",
	model.CategoryWaitingForReview:   "waiting for review",
	model.CategoryDraft:              "draft",
	model.CategoryOther:              "other",
}

// GroupTitle returns the display title of a group.
func GroupTitle(g focus.Group) string {
	if t, ok := groupTitles[g]; ok {
		return t
	}
	return string(g)
}

// CategoryLabel returns a short human label for a category.
func CategoryLabel(c model.ActionableCategory) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Ref returns the compact reference of an item, e.g. "owner/repo#42".
func Ref(item model.Item) string {
	return fmt.Sprintf("%s#%d", item.Repository, item.Number)
}
