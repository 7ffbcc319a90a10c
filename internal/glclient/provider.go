package glclient

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/spiffcs/focus/internal/integration"
	"github.com/spiffcs/focus/internal/log"
	"github.com/spiffcs/focus/internal/model"
	"golang.org/x/sync/errgroup"
)

// Provider lists the open merge requests the viewer authored or was asked
// to review.
type Provider struct {
	client *Client

	mu     sync.Mutex
	viewer string
}

// NewProvider creates a provider backed by client.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

// ID returns the integration this provider fetches from.
func (p *Provider) ID() integration.IntegrationID {
	return p.client.ID()
}

// CurrentUser returns the viewer's username, looking it up once.
func (p *Provider) CurrentUser(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.viewer != "" {
		return p.viewer, nil
	}
	var u user
	if err := p.client.API(ctx, "user", &u); err != nil {
		return "", fmt.Errorf("failed to get GitLab user: %w", err)
	}
	if u.Username == "" {
		return "", fmt.Errorf("GitLab user has no username")
	}
	p.viewer = u.Username
	return u.Username, nil
}

// PullRequests fetches authored and review-requested merge requests.
func (p *Provider) PullRequests(ctx context.Context) ([]model.PullRequest, error) {
	viewer, err := p.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	var authored, requested []MergeRequest
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		authored, err = p.client.MergeRequests(gctx, url.Values{
			"state": {"opened"},
			"scope": {"created_by_me"},
		})
		return err
	})
	g.Go(func() error {
		var err error
		requested, err = p.client.MergeRequests(gctx, url.Values{
			"state":             {"opened"},
			"scope":             {"all"},
			"reviewer_username": {viewer},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	provider := string(p.ID())
	prs := make([]model.PullRequest, 0, len(authored)+len(requested))
	seen := make(map[string]struct{}, cap(prs))
	for i, mr := range append(authored, requested...) {
		if _, ok := seen[mr.WebURL]; ok {
			continue
		}
		seen[mr.WebURL] = struct{}{}
		prs = append(prs, toPullRequest(provider, mr, viewer, i >= len(authored)))
	}

	log.Debug("gitlab fetch complete", "provider", provider, "authored", len(authored), "review_requested", len(requested))
	return prs, nil
}
