package ghclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/focus/config"
	"github.com/spiffcs/focus/internal/integration"
	"github.com/spiffcs/focus/internal/log"
	"github.com/spiffcs/focus/internal/model"
	"golang.org/x/sync/errgroup"
)

// Provider lists the open pull requests the viewer authored or was asked
// to review, with review, CI and merge state filled in.
type Provider struct {
	client  *Client
	workers int

	mu     sync.Mutex
	viewer string
}

// NewProvider creates a provider that fetches PR details with up to
// workers concurrent requests.
func NewProvider(client *Client, workers int) *Provider {
	if workers <= 0 {
		workers = config.DefaultGitHubWorkers
	}
	return &Provider{client: client, workers: workers}
}

// ID returns the integration this provider fetches from.
func (p *Provider) ID() integration.IntegrationID {
	return p.client.ID()
}

// CurrentUser returns the viewer's login, looking it up once.
func (p *Provider) CurrentUser(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.viewer != "" {
		return p.viewer, nil
	}
	login, err := p.client.AuthenticatedUser(ctx)
	if err != nil {
		return "", err
	}
	p.viewer = login
	return login, nil
}

type searchHit struct {
	issue           *gh.Issue
	reviewRequested bool
}

// PullRequests fetches and converts every relevant open PR.
func (p *Provider) PullRequests(ctx context.Context) ([]model.PullRequest, error) {
	viewer, err := p.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	var authored, requested []*gh.Issue
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		authored, err = p.client.SearchPullRequests(gctx, QueryAuthored.For(viewer))
		return err
	})
	g.Go(func() error {
		var err error
		requested, err = p.client.SearchPullRequests(gctx, QueryReviewRequested.For(viewer))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hits := make([]searchHit, 0, len(authored)+len(requested))
	seen := make(map[string]struct{}, cap(hits))
	add := func(issue *gh.Issue, reviewRequested bool) {
		key := fmt.Sprintf("%s#%d", issue.GetRepositoryURL(), issue.GetNumber())
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		hits = append(hits, searchHit{issue: issue, reviewRequested: reviewRequested})
	}
	for _, issue := range authored {
		add(issue, false)
	}
	for _, issue := range requested {
		add(issue, true)
	}

	log.Debug("github search complete", "provider", p.ID(), "authored", len(authored), "review_requested", len(requested))

	return p.enrich(ctx, viewer, hits)
}

// enrich fetches details for every hit with bounded concurrency. A failed
// lookup keeps the search-only record unless the host is rate limited.
func (p *Provider) enrich(ctx context.Context, viewer string, hits []searchHit) ([]model.PullRequest, error) {
	prs := make([]model.PullRequest, len(hits))
	provider := string(p.ID())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, hit := range hits {
		g.Go(func() error {
			owner, repo := repoFromURL(hit.issue.GetRepositoryURL())
			d, err := p.client.fetchDetails(gctx, owner, repo, hit.issue.GetNumber())
			if err != nil {
				if errors.Is(err, ErrRateLimited) {
					return err
				}
				log.Debug("pull request details unavailable", "repo", owner+"/"+repo, "number", hit.issue.GetNumber(), "error", err)
			}
			prs[i] = toPullRequest(provider, hit.issue, d, viewer, hit.reviewRequested)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return prs, nil
}
