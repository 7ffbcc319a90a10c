package ghclient

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v57/github"
)

// SearchQuery selects the open pull requests relevant to a user.
type SearchQuery string

const (
	// QueryAuthored matches open PRs opened by the user.
	QueryAuthored SearchQuery = "is:pr is:open author:%s archived:false"
	// QueryReviewRequested matches open PRs awaiting the user's review.
	QueryReviewRequested SearchQuery = "is:pr is:open review-requested:%s archived:false"
)

// For returns the query text for username.
func (q SearchQuery) For(username string) string {
	return fmt.Sprintf(string(q), username)
}

// SearchPullRequests pages through the issue search for query and returns
// every pull request it matches.
func (c *Client) SearchPullRequests(ctx context.Context, query string) ([]*gh.Issue, error) {
	opts := &gh.SearchOptions{
		Sort:  "updated",
		Order: "desc",
		ListOptions: gh.ListOptions{
			PerPage: 100,
		},
	}

	var issues []*gh.Issue
	for {
		result, resp, err := c.client.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, wrap(fmt.Sprintf("failed to search %q", query), err)
		}

		for _, issue := range result.Issues {
			if issue.IsPullRequest() {
				issues = append(issues, issue)
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return issues, nil
}

// pullRequestDetails is everything fetched for one PR beyond the search hit.
type pullRequestDetails struct {
	pr        *gh.PullRequest
	reviews   []*gh.PullRequestReview
	status    *gh.CombinedStatus
	checkRuns []*gh.CheckRun
}

// fetchDetails loads the PR, its reviews, and the checks on its head commit.
// Failures of the status and check lookups degrade to "no CI" rather than
// failing the PR.
func (c *Client) fetchDetails(ctx context.Context, owner, repo string, number int) (*pullRequestDetails, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, wrap(fmt.Sprintf("failed to get %s/%s#%d", owner, repo, number), err)
	}

	reviews, _, err := c.client.PullRequests.ListReviews(ctx, owner, repo, number, &gh.ListOptions{PerPage: 100})
	if err != nil {
		return nil, wrap(fmt.Sprintf("failed to list reviews for %s/%s#%d", owner, repo, number), err)
	}

	d := &pullRequestDetails{pr: pr, reviews: reviews}

	sha := pr.GetHead().GetSHA()
	if sha == "" {
		return d, nil
	}

	if status, _, err := c.client.Repositories.GetCombinedStatus(ctx, owner, repo, sha, nil); err == nil {
		d.status = status
	}

	if runs, _, err := c.client.Checks.ListCheckRunsForRef(ctx, owner, repo, sha, &gh.ListCheckRunsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}); err == nil && runs != nil {
		d.checkRuns = runs.CheckRuns
	}

	return d, nil
}
