package ghclient

import (
	"testing"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/focus/internal/model"
)

func review(user, state string) *gh.PullRequestReview {
	return &gh.PullRequestReview{User: &gh.User{Login: gh.String(user)}, State: gh.String(state)}
}

func TestRepoFromURL(t *testing.T) {
	tests := []struct {
		url       string
		wantOwner string
		wantRepo  string
	}{
		{"https://api.github.com/repos/spiffcs/focus", "spiffcs", "focus"},
		{"https://ghe.example.com/api/v3/repos/team/svc", "team", "svc"},
		{"https://api.github.com/repos/owner/repo/issues/3", "owner", "repo"},
		{"https://api.github.com/repos/owner", "", ""},
		{"https://example.com/other", "", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			owner, repo := repoFromURL(tt.url)
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("repoFromURL(%q) = %q, %q, want %q, %q", tt.url, owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

func TestReviewDecision(t *testing.T) {
	tests := []struct {
		name      string
		reviews   []*gh.PullRequestReview
		requested int
		want      model.ReviewDecision
	}{
		{"no reviews", nil, 0, model.ReviewNone},
		{"reviewers requested", nil, 2, model.ReviewRequired},
		{"approved", []*gh.PullRequestReview{review("bob", "APPROVED")}, 0, model.ReviewApproved},
		{
			name:    "changes requested wins",
			reviews: []*gh.PullRequestReview{review("bob", "APPROVED"), review("carol", "CHANGES_REQUESTED")},
			want:    model.ReviewChangesRequested,
		},
		{
			name:    "later approval replaces changes requested",
			reviews: []*gh.PullRequestReview{review("bob", "CHANGES_REQUESTED"), review("bob", "APPROVED")},
			want:    model.ReviewApproved,
		},
		{
			name:    "comment does not reset approval",
			reviews: []*gh.PullRequestReview{review("bob", "APPROVED"), review("bob", "COMMENTED")},
			want:    model.ReviewApproved,
		},
		{
			name:      "dismissed approval",
			reviews:   []*gh.PullRequestReview{review("bob", "APPROVED"), review("bob", "DISMISSED")},
			requested: 1,
			want:      model.ReviewRequired,
		},
		{"commented", []*gh.PullRequestReview{review("bob", "COMMENTED")}, 1, model.ReviewCommented},
		{"author comments ignored", []*gh.PullRequestReview{review("me", "COMMENTED")}, 0, model.ReviewNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reviewDecision(tt.reviews, "me", tt.requested); got != tt.want {
				t.Errorf("reviewDecision() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCIStatus(t *testing.T) {
	run := func(status, conclusion string) *gh.CheckRun {
		r := &gh.CheckRun{Status: gh.String(status)}
		if conclusion != "" {
			r.Conclusion = gh.String(conclusion)
		}
		return r
	}
	combined := func(state string, total int) *gh.CombinedStatus {
		return &gh.CombinedStatus{State: gh.String(state), TotalCount: gh.Int(total)}
	}

	tests := []struct {
		name   string
		status *gh.CombinedStatus
		runs   []*gh.CheckRun
		want   model.CIStatus
	}{
		{"nothing", nil, nil, model.CIStatusNone},
		{"empty combined status", combined("pending", 0), nil, model.CIStatusNone},
		{"status success", combined("success", 2), nil, model.CIStatusSuccess},
		{"status error", combined("error", 1), nil, model.CIStatusFailure},
		{"check success", nil, []*gh.CheckRun{run("completed", "success"), run("completed", "skipped")}, model.CIStatusSuccess},
		{"check running", nil, []*gh.CheckRun{run("completed", "success"), run("in_progress", "")}, model.CIStatusPending},
		{"failure beats pending", combined("pending", 1), []*gh.CheckRun{run("completed", "timed_out")}, model.CIStatusFailure},
		{"cancelled", nil, []*gh.CheckRun{run("completed", "cancelled")}, model.CIStatusFailure},
		{"status pending with passing checks", combined("pending", 1), []*gh.CheckRun{run("completed", "success")}, model.CIStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ciStatus(tt.status, tt.runs); got != tt.want {
				t.Errorf("ciStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMergeState(t *testing.T) {
	tests := []struct {
		state    string
		decision model.ReviewDecision
		want     model.MergeState
	}{
		{"dirty", model.ReviewNone, model.MergeConflicting},
		{"clean", model.ReviewApproved, model.MergeClean},
		{"unstable", model.ReviewNone, model.MergeClean},
		{"blocked", model.ReviewApproved, model.MergeBlocked},
		{"blocked", model.ReviewRequired, model.MergeUnknown},
		{"behind", model.ReviewApproved, model.MergeBlocked},
		{"unknown", model.ReviewApproved, model.MergeUnknown},
		{"", model.ReviewNone, model.MergeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.state+"/"+string(tt.decision), func(t *testing.T) {
			pr := &gh.PullRequest{MergeableState: gh.String(tt.state)}
			if got := mergeState(pr, tt.decision); got != tt.want {
				t.Errorf("mergeState(%q) = %q, want %q", tt.state, got, tt.want)
			}
		})
	}
}

func TestToPullRequest(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	issue := &gh.Issue{
		Number:        gh.Int(7),
		Title:         gh.String("Add widgets"),
		HTMLURL:       gh.String("https://github.com/o/r/pull/7"),
		RepositoryURL: gh.String("https://api.github.com/repos/o/r"),
		State:         gh.String("open"),
		User:          &gh.User{Login: gh.String("me")},
		CreatedAt:     &gh.Timestamp{Time: created},
	}

	t.Run("search only", func(t *testing.T) {
		pr := toPullRequest("github", issue, nil, "me", false)
		if pr.Repository != "o/r" || pr.Number != 7 || !pr.ViewerIsAuthor || pr.ReviewDecision != model.ReviewNone {
			t.Errorf("toPullRequest() = %+v", pr)
		}
		if !pr.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt = %v, want %v", pr.CreatedAt, created)
		}
	})

	t.Run("with details", func(t *testing.T) {
		d := &pullRequestDetails{
			pr: &gh.PullRequest{
				User:               &gh.User{Login: gh.String("me")},
				MergeableState:     gh.String("clean"),
				Draft:              gh.Bool(false),
				RequestedReviewers: []*gh.User{{Login: gh.String("dave")}},
			},
			reviews:   []*gh.PullRequestReview{review("bob", "APPROVED")},
			status:    &gh.CombinedStatus{State: gh.String("success"), TotalCount: gh.Int(1)},
			checkRuns: nil,
		}
		pr := toPullRequest("github", issue, d, "me", false)
		if pr.ReviewDecision != model.ReviewApproved || pr.Merge != model.MergeClean || pr.CIStatus != model.CIStatusSuccess {
			t.Errorf("toPullRequest() = %+v", pr)
		}
		if pr.Reviewers != 2 {
			t.Errorf("Reviewers = %d, want 2", pr.Reviewers)
		}
	})

	t.Run("reviewer view", func(t *testing.T) {
		pr := toPullRequest("github", issue, nil, "someone-else", true)
		if pr.ViewerIsAuthor || !pr.ViewerReviewRequested {
			t.Errorf("toPullRequest() viewer flags = %v, %v", pr.ViewerIsAuthor, pr.ViewerReviewRequested)
		}
	})
}
