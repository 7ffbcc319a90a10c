package ghclient

import (
	"strings"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/focus/internal/model"
)

// repoFromURL extracts owner and repo name from a GitHub API repository URL.
// Both https://api.github.com/repos/owner/repo and the enterprise form
// https://host/api/v3/repos/owner/repo are accepted.
func repoFromURL(url string) (owner, repo string) {
	_, trimmed, ok := strings.Cut(url, "/repos/")
	if !ok || trimmed == "" {
		return "", ""
	}
	parts := strings.SplitN(trimmed, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", ""
	}
	return parts[0], parts[1]
}

// reviewDecision reduces the review history to a single decision. Only the
// latest approving or change-requesting review of each user counts; a
// dismissal clears that user's earlier decision.
func reviewDecision(reviews []*gh.PullRequestReview, author string, requested int) model.ReviewDecision {
	latest := make(map[string]string, len(reviews))
	commented := false

	for _, review := range reviews {
		user := review.GetUser().GetLogin()
		if user == author {
			continue
		}
		switch state := review.GetState(); state {
		case "APPROVED", "CHANGES_REQUESTED":
			latest[user] = state
		case "DISMISSED":
			delete(latest, user)
		case "COMMENTED":
			commented = true
		}
	}

	approved := false
	for _, state := range latest {
		if state == "CHANGES_REQUESTED" {
			return model.ReviewChangesRequested
		}
		approved = true
	}

	switch {
	case approved:
		return model.ReviewApproved
	case commented:
		return model.ReviewCommented
	case requested > 0:
		return model.ReviewRequired
	}
	return model.ReviewNone
}

// reviewerCount counts requested reviewers and teams plus everyone other
// than the author who already reviewed.
func reviewerCount(pr *gh.PullRequest, reviews []*gh.PullRequestReview) int {
	seen := make(map[string]struct{})
	for _, u := range pr.RequestedReviewers {
		seen[u.GetLogin()] = struct{}{}
	}
	author := pr.GetUser().GetLogin()
	for _, review := range reviews {
		if login := review.GetUser().GetLogin(); login != author {
			seen[login] = struct{}{}
		}
	}
	return len(seen) + len(pr.RequestedTeams)
}

func requestedCount(pr *gh.PullRequest) int {
	return len(pr.RequestedReviewers) + len(pr.RequestedTeams)
}

// ciStatus combines the legacy commit statuses with check runs. Any failure
// wins, then anything still running.
func ciStatus(status *gh.CombinedStatus, runs []*gh.CheckRun) model.CIStatus {
	var failed, pending, passed bool

	if status != nil && status.GetTotalCount() > 0 {
		switch status.GetState() {
		case "failure", "error":
			failed = true
		case "pending":
			pending = true
		case "success":
			passed = true
		}
	}

	for _, run := range runs {
		if run.GetStatus() != "completed" {
			pending = true
			continue
		}
		switch run.GetConclusion() {
		case "failure", "timed_out", "cancelled", "action_required":
			failed = true
		case "success", "neutral", "skipped":
			passed = true
		}
	}

	switch {
	case failed:
		return model.CIStatusFailure
	case pending:
		return model.CIStatusPending
	case passed:
		return model.CIStatusSuccess
	}
	return model.CIStatusNone
}

// mergeState maps GitHub's mergeable_state. "blocked" is also reported for
// PRs that simply lack approvals, so it only counts once the PR is approved.
func mergeState(pr *gh.PullRequest, decision model.ReviewDecision) model.MergeState {
	switch pr.GetMergeableState() {
	case "dirty":
		return model.MergeConflicting
	case "blocked", "behind":
		if decision == model.ReviewApproved {
			return model.MergeBlocked
		}
	case "clean", "unstable", "has_hooks":
		return model.MergeClean
	}
	return model.MergeUnknown
}

// toPullRequest builds the provider-neutral record. details may be nil when
// the detail lookup failed; the record then carries only search data.
func toPullRequest(provider string, issue *gh.Issue, d *pullRequestDetails, viewer string, reviewRequested bool) model.PullRequest {
	owner, repo := repoFromURL(issue.GetRepositoryURL())
	author := issue.GetUser().GetLogin()

	pr := model.PullRequest{
		Provider:              provider,
		Repository:            owner + "/" + repo,
		Number:                issue.GetNumber(),
		Title:                 issue.GetTitle(),
		URL:                   issue.GetHTMLURL(),
		Author:                author,
		State:                 issue.GetState(),
		Draft:                 issue.GetDraft(),
		CreatedAt:             issue.GetCreatedAt().Time,
		UpdatedAt:             issue.GetUpdatedAt().Time,
		ViewerIsAuthor:        author == viewer,
		ViewerReviewRequested: reviewRequested,
	}

	if d == nil || d.pr == nil {
		return pr
	}

	pr.Draft = d.pr.GetDraft()
	pr.ReviewDecision = reviewDecision(d.reviews, author, requestedCount(d.pr))
	pr.Reviewers = reviewerCount(d.pr, d.reviews)
	pr.CIStatus = ciStatus(d.status, d.checkRuns)
	pr.Merge = mergeState(d.pr, pr.ReviewDecision)
	return pr
}
