// Package ghclient fetches the pull requests that need the viewer's
// attention from GitHub and GitHub Enterprise.
package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/focus/internal/integration"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub API client for one host.
type Client struct {
	client *gh.Client
	id     integration.IntegrationID
	state  *RateLimitState
}

// NewClient creates a client for a GitHub or GitHub Enterprise session.
func NewClient(ctx context.Context, session integration.ProviderSession) (*Client, error) {
	if session.AccessToken == "" {
		return nil, fmt.Errorf("%s token not provided", session.ID.Name())
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: session.AccessToken},
	)
	tc := oauth2.NewClient(ctx, ts)

	baseURL := ""
	if session.ID != integration.GitHub {
		baseURL = session.BaseURL()
	}
	return newClient(tc, session.ID, baseURL)
}

// newClient wraps httpClient's transport with rate limit tracking. An empty
// baseURL targets api.github.com.
func newClient(httpClient *http.Client, id integration.IntegrationID, baseURL string) (*Client, error) {
	state := newRateLimitState()
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpClient.Transport = &rateLimitTransport{base: base, state: state}

	client := gh.NewClient(httpClient)
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub Enterprise URL %q: %w", baseURL, err)
		}
	}

	return &Client{client: client, id: id, state: state}, nil
}

// ID returns the integration this client talks to.
func (c *Client) ID() integration.IntegrationID {
	return c.id
}

// AuthenticatedUser returns the authenticated user's login
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return "", wrap("failed to get authenticated user", err)
	}
	return user.GetLogin(), nil
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, wrap("failed to get rate limits", err)
	}
	return limits, nil
}

// RateLimitState returns the rate limit observed from responses.
func (c *Client) RateLimitState() *RateLimitState {
	return c.state
}

// wrap keeps ErrRateLimited matchable with errors.Is even when go-github
// wraps the transport error in a url.Error.
func wrap(msg string, err error) error {
	if errors.Is(err, ErrRateLimited) {
		return fmt.Errorf("%s: %w", msg, ErrRateLimited)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
