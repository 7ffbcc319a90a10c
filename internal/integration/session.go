package integration

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spiffcs/focus/config"
)

// ErrNoSession is returned when no integration has usable credentials.
var ErrNoSession = errors.New("no integration configured")

// ProviderSession is an authenticated connection to one integration.
type ProviderSession struct {
	ID          IntegrationID
	AccessToken string
	Account     string
	Scopes      []string
	Cloud       bool
	ExpiresAt   *time.Time
	Domain      string
	Protocol    string
}

// Expired reports whether the session has an expiry in the past.
func (s ProviderSession) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// BaseURL returns protocol://domain/ for self-hosted sessions.
func (s ProviderSession) BaseURL() string {
	protocol := s.Protocol
	if protocol == "" {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/", protocol, s.Domain)
}

// ConfiguredIntegrationDescriptor summarizes a configured integration
// without its credentials.
type ConfiguredIntegrationDescriptor struct {
	Cloud         bool          `json:"cloud"`
	IntegrationID IntegrationID `json:"integrationId"`
	Scopes        string        `json:"scopes"`
	Domain        string        `json:"domain,omitempty"`
	ExpiresAt     *time.Time    `json:"expiresAt,omitempty"`
}

// Descriptor describes the session.
func (s ProviderSession) Descriptor() ConfiguredIntegrationDescriptor {
	return ConfiguredIntegrationDescriptor{
		Cloud:         s.Cloud,
		IntegrationID: s.ID,
		Scopes:        strings.Join(s.Scopes, ","),
		Domain:        s.Domain,
		ExpiresAt:     s.ExpiresAt,
	}
}

// Environment variables read for tokens.
const (
	EnvGitHubToken           = "GITHUB_TOKEN"
	EnvGitHubEnterpriseToken = "GITHUB_ENTERPRISE_TOKEN"
	EnvGitLabToken           = "GITLAB_TOKEN"
)

// Sessions builds the sessions for every enabled integration that has
// credentials. getenv is usually os.Getenv.
func Sessions(cfg *config.Config, getenv func(string) string) ([]ProviderSession, error) {
	var sessions []ProviderSession

	gh := cfg.GetGitHubSettings()
	if gh.Enabled {
		if token := getenv(EnvGitHubToken); token != "" {
			sessions = append(sessions, ProviderSession{
				ID:          GitHub,
				AccessToken: token,
				Scopes:      []string{"repo", "read:user"},
				Domain:      "github.com",
				Protocol:    "https",
			})
		}
		if gh.EnterpriseURL != "" {
			token := getenv(EnvGitHubEnterpriseToken)
			if token == "" {
				return nil, fmt.Errorf("%s is required for %s", EnvGitHubEnterpriseToken, gh.EnterpriseURL)
			}
			u, err := url.Parse(gh.EnterpriseURL)
			if err != nil || u.Host == "" {
				return nil, fmt.Errorf("invalid enterprise_url %q", gh.EnterpriseURL)
			}
			sessions = append(sessions, ProviderSession{
				ID:          GitHubEnterprise,
				AccessToken: token,
				Scopes:      []string{"repo", "read:user"},
				Domain:      u.Host,
				Protocol:    u.Scheme,
			})
		}
	}

	gl := cfg.GetGitLabSettings()
	if gl.Enabled {
		id := GitLab
		if gl.Hostname != config.DefaultGitLabHost {
			id = GitLabSelfHosted
		}
		sessions = append(sessions, ProviderSession{
			ID:          id,
			AccessToken: getenv(EnvGitLabToken),
			Scopes:      []string{"read_api"},
			Domain:      gl.Hostname,
			Protocol:    "https",
		})
	}

	if len(sessions) == 0 {
		return nil, fmt.Errorf("%w: set %s or enable integrations.gitlab", ErrNoSession, EnvGitHubToken)
	}
	return sessions, nil
}
