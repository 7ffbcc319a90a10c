// Package glclient lists GitLab merge requests through the glab CLI.
package glclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/spiffcs/focus/config"
	"github.com/spiffcs/focus/internal/constants"
	"github.com/spiffcs/focus/internal/integration"
	"github.com/spiffcs/focus/internal/log"
)

// ErrCLINotFound is returned when the glab binary is not on PATH.
var ErrCLINotFound = errors.New("glab CLI not found")

// Runner runs glab with extra environment entries and returns stdout.
type Runner interface {
	Run(ctx context.Context, env []string, args ...string) ([]byte, error)
}

type execRunner struct {
	binary string
}

func (r execRunner) Run(ctx context.Context, env []string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(r.binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCLINotFound, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = append(os.Environ(), env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("glab %s: %w: %s", strings.Join(args, " "), err, trimOutput(stderr.Bytes()))
	}
	return out, nil
}

func trimOutput(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		return s[:200] + "…"
	}
	return s
}

// Client issues GitLab REST calls with `glab api`.
type Client struct {
	runner   Runner
	id       integration.IntegrationID
	hostname string
	token    string
}

// Option configures a Client.
type Option func(*Client)

// WithRunner replaces the glab executor.
func WithRunner(r Runner) Option {
	return func(c *Client) {
		c.runner = r
	}
}

// NewClient creates a client for a GitLab or GitLab Self-Managed session.
// An empty access token leaves authentication to glab's own login.
func NewClient(session integration.ProviderSession, opts ...Option) *Client {
	c := &Client{
		runner:   execRunner{binary: "glab"},
		id:       session.ID,
		hostname: session.Domain,
		token:    session.AccessToken,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the integration this client talks to.
func (c *Client) ID() integration.IntegrationID {
	return c.id
}

// API calls `glab api endpoint` and decodes the JSON output into v.
func (c *Client) API(ctx context.Context, endpoint string, v any) error {
	out, err := c.run(ctx, endpoint, false)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(out, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", endpoint, err)
	}
	return nil
}

// MergeRequests lists every merge request matching query across all pages.
func (c *Client) MergeRequests(ctx context.Context, query url.Values) ([]MergeRequest, error) {
	query.Set("per_page", "100")
	endpoint := "merge_requests?" + query.Encode()

	out, err := c.run(ctx, endpoint, true)
	if err != nil {
		return nil, err
	}

	// paginated output is one JSON array per page
	var mrs []MergeRequest
	dec := json.NewDecoder(bytes.NewReader(out))
	for {
		var page []MergeRequest
		if err := dec.Decode(&page); err != nil {
			if errors.Is(err, io.EOF) {
				return mrs, nil
			}
			return nil, fmt.Errorf("failed to decode %s: %w", endpoint, err)
		}
		mrs = append(mrs, page...)
	}
}

func (c *Client) run(ctx context.Context, endpoint string, paginate bool) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.GitLabCommandTimeout)
	defer cancel()

	args := []string{"api"}
	if c.hostname != "" && c.hostname != config.DefaultGitLabHost {
		args = append(args, "--hostname", c.hostname)
	}
	if paginate {
		args = append(args, "--paginate")
	}
	args = append(args, endpoint)

	var env []string
	if c.token != "" {
		env = append(env, integration.EnvGitLabToken+"="+c.token)
	}

	log.Trace("glab api", "host", c.hostname, "endpoint", endpoint)
	return c.runner.Run(ctx, env, args...)
}
