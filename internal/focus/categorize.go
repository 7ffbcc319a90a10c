// Package focus turns raw pull requests into actionable items and groups
// them into the fixed set of focus groups.
package focus

import (
	"strconv"

	"github.com/spiffcs/focus/internal/model"
)

// categoryRule assigns a category when match returns true.
type categoryRule struct {
	name     string
	match    func(pr *model.PullRequest) bool
	category model.ActionableCategory
}

// authoredRules are evaluated top-down for pull requests the viewer opened.
var authoredRules = []categoryRule{
	{
		name:     "failing checks",
		match:    func(pr *model.PullRequest) bool { return pr.CIStatus == model.CIStatusFailure },
		category: model.CategoryFailedChecks,
	},
	{
		name: "approved with conflicts",
		match: func(pr *model.PullRequest) bool {
			return pr.Merge == model.MergeConflicting && pr.ReviewDecision == model.ReviewApproved
		},
		category: model.CategoryMergeableConflicts,
	},
	{
		name:     "conflicts",
		match:    func(pr *model.PullRequest) bool { return pr.Merge == model.MergeConflicting },
		category: model.CategoryConflicts,
	},
	{
		name: "approved and clean",
		match: func(pr *model.PullRequest) bool {
			return pr.ReviewDecision == model.ReviewApproved &&
				pr.Merge == model.MergeClean &&
				(pr.CIStatus == model.CIStatusSuccess || pr.CIStatus == model.CIStatusNone)
		},
		category: model.CategoryMergeable,
	},
	{
		name: "reviewed",
		match: func(pr *model.PullRequest) bool {
			return pr.ReviewDecision == model.ReviewChangesRequested || pr.ReviewDecision == model.ReviewCommented
		},
		category: model.CategoryFollowUp,
	},
	{
		name:     "merge blocked",
		match:    func(pr *model.PullRequest) bool { return pr.Merge == model.MergeBlocked },
		category: model.CategoryBlocked,
	},
	{
		name: "no reviewers",
		match: func(pr *model.PullRequest) bool {
			return pr.Reviewers == 0 && pr.ReviewDecision != model.ReviewApproved
		},
		category: model.CategoryBlocked,
	},
}

// Categorize assigns the actionable category for a raw pull request.
func Categorize(pr *model.PullRequest) model.ActionableCategory {
	if pr.Draft {
		return model.CategoryDraft
	}

	if pr.ViewerIsAuthor {
		for _, r := range authoredRules {
			if r.match(pr) {
				return r.category
			}
		}
		return model.CategoryWaitingForReview
	}

	if pr.ViewerReviewRequested {
		return model.CategoryNeedsReview
	}

	return model.CategoryOther
}

// Normalize converts raw pull requests into items, categorizing each once.
func Normalize(prs []model.PullRequest) []model.Item {
	items := make([]model.Item, 0, len(prs))
	for i := range prs {
		pr := &prs[i]
		items = append(items, model.Item{
			ID:         strconv.Itoa(pr.Number),
			Category:   Categorize(pr),
			Provider:   pr.Provider,
			Repository: pr.Repository,
			Number:     pr.Number,
			Title:      pr.Title,
			URL:        pr.URL,
			Author:     pr.Author,
			State:      pr.State,
			Draft:      pr.Draft,
			CreatedAt:  pr.CreatedAt,
			UpdatedAt:  pr.UpdatedAt,
		})
	}
	return items
}
