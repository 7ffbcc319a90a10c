// Package model contains the provider-neutral domain types for focus.
// These types are independent of any hosting provider library.
package model

import (
	"fmt"
	"time"
)

// ActionableCategory classifies what the current user should do with an item.
// It is assigned once by the normalizer and never changed downstream.
type ActionableCategory string

const (
	CategoryMergeable          ActionableCategory = "mergeable"
	CategoryFailedChecks       ActionableCategory = "failed-checks"
	CategoryMergeableConflicts ActionableCategory = "mergeable-conflicts"
	CategoryConflicts          ActionableCategory = "conflicts"
	CategoryBlocked            ActionableCategory = "blocked"
	CategoryNeedsReview        ActionableCategory = "needs-review"
	CategoryFollowUp           ActionableCategory = "follow-up"
	CategoryWaitingForReview   ActionableCategory = "waiting-for-review"
	CategoryDraft              ActionableCategory = "draft"
	CategoryOther              ActionableCategory = "other"
)

// AllCategories contains every category the normalizer can assign.
var AllCategories = []ActionableCategory{
	CategoryMergeable,
	CategoryFailedChecks,
	CategoryMergeableConflicts,
	CategoryConflicts,
	CategoryBlocked,
	CategoryNeedsReview,
	CategoryFollowUp,
	CategoryWaitingForReview,
	CategoryDraft,
	CategoryOther,
}

// Item is a normalized pull or merge request that may need the user's action.
type Item struct {
	ID         string             `json:"id"`
	Category   ActionableCategory `json:"actionableCategory"`
	Provider   string             `json:"provider"`
	Repository string             `json:"repository"`
	Number     int                `json:"number"`
	Title      string             `json:"title"`
	URL        string             `json:"url"`
	Author     string             `json:"author"`
	State      string             `json:"state"`
	Draft      bool               `json:"draft"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// Key identifies an item across providers, e.g. "github:owner/repo#42".
func (i Item) Key() string {
	return fmt.Sprintf("%s:%s#%d", i.Provider, i.Repository, i.Number)
}

// CIStatus is the aggregate state of a pull request's checks.
type CIStatus string

const (
	CIStatusNone    CIStatus = ""
	CIStatusSuccess CIStatus = "success"
	CIStatusFailure CIStatus = "failure"
	CIStatusPending CIStatus = "pending"
)

// ReviewDecision summarizes the reviews a pull request has received.
type ReviewDecision string

const (
	ReviewNone             ReviewDecision = ""
	ReviewApproved         ReviewDecision = "approved"
	ReviewChangesRequested ReviewDecision = "changes_requested"
	ReviewCommented        ReviewDecision = "commented"
	ReviewRequired         ReviewDecision = "review_required"
)

// MergeState describes whether the head branch can be merged.
type MergeState string

const (
	MergeUnknown     MergeState = ""
	MergeClean       MergeState = "clean"
	MergeConflicting MergeState = "conflicting"
	MergeBlocked     MergeState = "blocked"
)

// PullRequest is the raw, provider-neutral record that provider clients
// produce and the normalizer consumes.
type PullRequest struct {
	Provider   string
	Repository string
	Number     int
	Title      string
	URL        string
	Author     string
	State      string
	Draft      bool
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// ViewerIsAuthor is set when the authenticated user opened the PR.
	ViewerIsAuthor bool
	// ViewerReviewRequested is set when the user's review was requested.
	ViewerReviewRequested bool

	ReviewDecision ReviewDecision
	// Reviewers is the number of requested reviewers plus reviewers who
	// already submitted a review.
	Reviewers int
	CIStatus  CIStatus
	Merge     MergeState
}
