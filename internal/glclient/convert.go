package glclient

import (
	"strings"
	"time"

	"github.com/spiffcs/focus/internal/model"
)

// MergeRequest mirrors the fields we use from the merge_requests API.
type MergeRequest struct {
	IID                 int        `json:"iid"`
	Title               string     `json:"title"`
	State               string     `json:"state"`
	WebURL              string     `json:"web_url"`
	Draft               bool       `json:"draft"`
	HasConflicts        bool       `json:"has_conflicts"`
	DetailedMergeStatus string     `json:"detailed_merge_status"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	Author              user       `json:"author"`
	Reviewers           []user     `json:"reviewers"`
	References          references `json:"references"`
}

type references struct {
	Full string `json:"full"`
}

type user struct {
	Username string `json:"username"`
}

// repository returns the project path, e.g. "group/sub/project".
func (mr MergeRequest) repository() string {
	if path, _, ok := strings.Cut(mr.References.Full, "!"); ok && path != "" {
		return path
	}
	// https://host/group/project/-/merge_requests/12
	if before, _, ok := strings.Cut(mr.WebURL, "/-/merge_requests/"); ok {
		if _, rest, ok := strings.Cut(before, "://"); ok {
			if _, path, ok := strings.Cut(rest, "/"); ok {
				return path
			}
		}
	}
	return ""
}

// mergeStatus is the part of the record one detailed_merge_status implies.
type mergeStatus struct {
	decision model.ReviewDecision
	ci       model.CIStatus
	merge    model.MergeState
	draft    bool
}

// detailedMergeStatus maps GitLab's detailed_merge_status. GitLab reports
// only the first failing mergeability check, so each value sets what it
// proves and leaves the rest unknown.
var detailedMergeStatus = map[string]mergeStatus{
	"mergeable":                  {decision: model.ReviewApproved, ci: model.CIStatusSuccess, merge: model.MergeClean},
	"conflict":                   {merge: model.MergeConflicting},
	"need_rebase":                {merge: model.MergeConflicting},
	"ci_must_pass":               {ci: model.CIStatusFailure},
	"ci_still_running":           {ci: model.CIStatusPending},
	"not_approved":               {decision: model.ReviewRequired},
	"requested_changes":          {decision: model.ReviewChangesRequested},
	"draft_status":               {draft: true},
	"discussions_not_resolved":   {merge: model.MergeBlocked},
	"blocked_status":             {merge: model.MergeBlocked},
	"external_status_checks":     {merge: model.MergeBlocked},
	"status_checks_must_pass":    {merge: model.MergeBlocked},
	"jira_association_missing":   {merge: model.MergeBlocked},
	"merge_request_blocked":      {merge: model.MergeBlocked},
	"security_policy_violations": {merge: model.MergeBlocked},
	"locked_paths":               {merge: model.MergeBlocked},
	"locked_lfs_files":           {merge: model.MergeBlocked},
	"merge_time":                 {merge: model.MergeBlocked},
}

func toPullRequest(provider string, mr MergeRequest, viewer string, reviewRequested bool) model.PullRequest {
	status := detailedMergeStatus[mr.DetailedMergeStatus]

	pr := model.PullRequest{
		Provider:              provider,
		Repository:            mr.repository(),
		Number:                mr.IID,
		Title:                 mr.Title,
		URL:                   mr.WebURL,
		Author:                mr.Author.Username,
		State:                 normaliseState(mr.State),
		Draft:                 mr.Draft || status.draft,
		CreatedAt:             mr.CreatedAt,
		UpdatedAt:             mr.UpdatedAt,
		ViewerIsAuthor:        mr.Author.Username == viewer,
		ViewerReviewRequested: reviewRequested,
		ReviewDecision:        status.decision,
		Reviewers:             len(mr.Reviewers),
		CIStatus:              status.ci,
		Merge:                 status.merge,
	}
	if mr.HasConflicts {
		pr.Merge = model.MergeConflicting
	}
	return pr
}

func normaliseState(s string) string {
	if s == "opened" {
		return "open"
	}
	return s
}
