package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DefaultFormat  string   `yaml:"default_format,omitempty"`
	ExcludeRepos   []string `yaml:"exclude_repos,omitempty"`
	ExcludeAuthors []string `yaml:"exclude_authors,omitempty"`

	Focus             *FocusOverrides            `yaml:"focus,omitempty"`
	Integrations      *IntegrationOverrides      `yaml:"integrations,omitempty"`
	CloudIntegrations *CloudIntegrationOverrides `yaml:"cloud_integrations,omitempty"`
}

// FocusOverrides holds the focus feature settings.
type FocusOverrides struct {
	Indicators *IndicatorOverrides `yaml:"indicators,omitempty"`
}

// IndicatorOverrides configures the status indicator.
type IndicatorOverrides struct {
	Enabled        *bool `yaml:"enabled,omitempty"`
	OpenQuickFocus *bool `yaml:"openQuickFocus,omitempty"`
	// RefreshRate is in minutes. Zero or negative disables polling.
	RefreshRate *int `yaml:"refreshRate,omitempty"`
}

// IntegrationOverrides selects which hosting providers are queried.
type IntegrationOverrides struct {
	GitHub *GitHubOverrides `yaml:"github,omitempty"`
	GitLab *GitLabOverrides `yaml:"gitlab,omitempty"`
}

// GitHubOverrides configures github.com and GitHub Enterprise access.
type GitHubOverrides struct {
	Enabled *bool `yaml:"enabled,omitempty"`
	// EnterpriseURL is the base URL of a GitHub Enterprise Server instance,
	// e.g. https://github.example.com/. Used with GITHUB_ENTERPRISE_TOKEN.
	EnterpriseURL string `yaml:"enterprise_url,omitempty"`
	Workers       *int   `yaml:"workers,omitempty"`
}

// GitLabOverrides configures GitLab access through the glab CLI.
type GitLabOverrides struct {
	Enabled  *bool  `yaml:"enabled,omitempty"`
	Hostname string `yaml:"hostname,omitempty"`
}

// CloudIntegrationOverrides toggles the cloud integration id set.
type CloudIntegrationOverrides struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// IndicatorSettings is the resolved indicator configuration.
type IndicatorSettings struct {
	Enabled        bool
	OpenQuickFocus bool
	RefreshRate    int
}

// GitHubSettings is the resolved GitHub configuration.
type GitHubSettings struct {
	Enabled       bool
	EnterpriseURL string
	Workers       int
}

// GitLabSettings is the resolved GitLab configuration.
type GitLabSettings struct {
	Enabled  bool
	Hostname string
}

// Default values
const (
	DefaultRefreshRate   = 5
	DefaultGitHubWorkers = 8
	DefaultGitLabHost    = "gitlab.com"
)

// DefaultIndicatorSettings returns the indicator defaults.
func DefaultIndicatorSettings() IndicatorSettings {
	return IndicatorSettings{
		Enabled:        true,
		OpenQuickFocus: true,
		RefreshRate:    DefaultRefreshRate,
	}
}

// GetIndicatorSettings returns indicator settings with overrides applied.
func (c *Config) GetIndicatorSettings() IndicatorSettings {
	s := DefaultIndicatorSettings()
	if c.Focus == nil || c.Focus.Indicators == nil {
		return s
	}
	ind := c.Focus.Indicators
	if ind.Enabled != nil {
		s.Enabled = *ind.Enabled
	}
	if ind.OpenQuickFocus != nil {
		s.OpenQuickFocus = *ind.OpenQuickFocus
	}
	if ind.RefreshRate != nil {
		s.RefreshRate = *ind.RefreshRate
	}
	return s
}

// GetGitHubSettings returns GitHub settings with overrides applied.
func (c *Config) GetGitHubSettings() GitHubSettings {
	s := GitHubSettings{Enabled: true, Workers: DefaultGitHubWorkers}
	if c.Integrations == nil || c.Integrations.GitHub == nil {
		return s
	}
	gh := c.Integrations.GitHub
	if gh.Enabled != nil {
		s.Enabled = *gh.Enabled
	}
	if gh.Workers != nil && *gh.Workers > 0 {
		s.Workers = *gh.Workers
	}
	s.EnterpriseURL = gh.EnterpriseURL
	return s
}

// GetGitLabSettings returns GitLab settings with overrides applied.
// GitLab is off unless enabled, since it needs the glab CLI.
func (c *Config) GetGitLabSettings() GitLabSettings {
	s := GitLabSettings{Hostname: DefaultGitLabHost}
	if c.Integrations == nil || c.Integrations.GitLab == nil {
		return s
	}
	gl := c.Integrations.GitLab
	if gl.Enabled != nil {
		s.Enabled = *gl.Enabled
	}
	if gl.Hostname != "" {
		s.Hostname = gl.Hostname
	}
	return s
}

// CloudIntegrationsEnabled reports whether cloud integrations are enabled.
func (c *Config) CloudIntegrationsEnabled() bool {
	if c.CloudIntegrations == nil || c.CloudIntegrations.Enabled == nil {
		return true
	}
	return *c.CloudIntegrations.Enabled
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".focus"
	}
	return filepath.Join(configDir, "focus")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".focus.yaml"
}

// Load loads the global config from the user config directory and merges
// any local .focus.yaml on top (local values take precedence).
func Load() (*Config, error) {
	return LoadFrom(ConfigPath(), LocalConfigPath())
}

// LoadFrom loads and merges the config files at the given paths. Missing
// files are skipped.
func LoadFrom(globalPath, localPath string) (*Config, error) {
	cfg := &Config{
		DefaultFormat: "table",
	}

	global, err := readFile(globalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load global config file: %w", err)
	}
	if global != nil {
		cfg = mergeConfig(cfg, global)
	}

	local, err := readFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load local config file: %w", err)
	}
	if local != nil {
		cfg = mergeConfig(cfg, local)
	}

	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "table"
	}

	return cfg, nil
}

func readFile(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := &Config{}

	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	} else {
		result.DefaultFormat = global.DefaultFormat
	}

	// Arrays: local replaces if non-empty
	if len(local.ExcludeRepos) > 0 {
		result.ExcludeRepos = local.ExcludeRepos
	} else {
		result.ExcludeRepos = global.ExcludeRepos
	}

	if len(local.ExcludeAuthors) > 0 {
		result.ExcludeAuthors = local.ExcludeAuthors
	} else {
		result.ExcludeAuthors = global.ExcludeAuthors
	}

	result.Focus = mergeFocus(global.Focus, local.Focus)
	result.Integrations = mergeIntegrations(global.Integrations, local.Integrations)
	result.CloudIntegrations = mergeCloudIntegrations(global.CloudIntegrations, local.CloudIntegrations)

	return result
}

func mergeFocus(global, local *FocusOverrides) *FocusOverrides {
	if global == nil && local == nil {
		return nil
	}
	var g, l *IndicatorOverrides
	if global != nil {
		g = global.Indicators
	}
	if local != nil {
		l = local.Indicators
	}
	ind := mergeIndicators(g, l)
	if ind == nil {
		return nil
	}
	return &FocusOverrides{Indicators: ind}
}

func mergeIndicators(global, local *IndicatorOverrides) *IndicatorOverrides {
	if global == nil && local == nil {
		return nil
	}
	result := &IndicatorOverrides{}

	if global != nil {
		result.Enabled = global.Enabled
		result.OpenQuickFocus = global.OpenQuickFocus
		result.RefreshRate = global.RefreshRate
	}

	if local != nil {
		if local.Enabled != nil {
			result.Enabled = local.Enabled
		}
		if local.OpenQuickFocus != nil {
			result.OpenQuickFocus = local.OpenQuickFocus
		}
		if local.RefreshRate != nil {
			result.RefreshRate = local.RefreshRate
		}
	}

	if result.Enabled == nil && result.OpenQuickFocus == nil && result.RefreshRate == nil {
		return nil
	}
	return result
}

func mergeIntegrations(global, local *IntegrationOverrides) *IntegrationOverrides {
	if global == nil && local == nil {
		return nil
	}
	result := &IntegrationOverrides{}

	if global != nil {
		result.GitHub = global.GitHub
		result.GitLab = global.GitLab
	}

	if local != nil {
		if local.GitHub != nil {
			result.GitHub = mergeGitHub(result.GitHub, local.GitHub)
		}
		if local.GitLab != nil {
			result.GitLab = mergeGitLab(result.GitLab, local.GitLab)
		}
	}

	return result
}

func mergeGitHub(global, local *GitHubOverrides) *GitHubOverrides {
	result := &GitHubOverrides{}
	if global != nil {
		*result = *global
	}
	if local.Enabled != nil {
		result.Enabled = local.Enabled
	}
	if local.EnterpriseURL != "" {
		result.EnterpriseURL = local.EnterpriseURL
	}
	if local.Workers != nil {
		result.Workers = local.Workers
	}
	return result
}

func mergeGitLab(global, local *GitLabOverrides) *GitLabOverrides {
	result := &GitLabOverrides{}
	if global != nil {
		*result = *global
	}
	if local.Enabled != nil {
		result.Enabled = local.Enabled
	}
	if local.Hostname != "" {
		result.Hostname = local.Hostname
	}
	return result
}

func mergeCloudIntegrations(global, local *CloudIntegrationOverrides) *CloudIntegrationOverrides {
	if local != nil && local.Enabled != nil {
		return &CloudIntegrationOverrides{Enabled: local.Enabled}
	}
	return global
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return SaveTo(path, string(data))
}

// Set assigns a single setting by key path.
func (c *Config) Set(key, value string) error {
	switch key {
	case "default_format":
		if !slices.Contains([]string{"table", "json", "markdown"}, value) {
			return fmt.Errorf("invalid format %q: must be 'table', 'json' or 'markdown'", value)
		}
		c.DefaultFormat = value
	case KeyIndicatorsEnabled, KeyIndicatorsOpenQuickFocus:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		ind := c.indicators()
		if key == KeyIndicatorsEnabled {
			ind.Enabled = &b
		} else {
			ind.OpenQuickFocus = &b
		}
	case KeyIndicatorsRefreshRate:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		c.indicators().RefreshRate = &n
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func (c *Config) indicators() *IndicatorOverrides {
	if c.Focus == nil {
		c.Focus = &FocusOverrides{}
	}
	if c.Focus.Indicators == nil {
		c.Focus.Indicators = &IndicatorOverrides{}
	}
	return c.Focus.Indicators
}

// IsRepoExcluded checks if a repo is in the exclude list
func (c *Config) IsRepoExcluded(repoFullName string) bool {
	return slices.Contains(c.ExcludeRepos, repoFullName)
}

// IsAuthorExcluded checks if an author is in the exclude list
func (c *Config) IsAuthorExcluded(author string) bool {
	return slices.Contains(c.ExcludeAuthors, author)
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	ind := DefaultIndicatorSettings()
	enabled := true
	disabled := false
	workers := DefaultGitHubWorkers

	return &Config{
		DefaultFormat:  "table",
		ExcludeRepos:   []string{},
		ExcludeAuthors: []string{},
		Focus: &FocusOverrides{
			Indicators: &IndicatorOverrides{
				Enabled:        &ind.Enabled,
				OpenQuickFocus: &ind.OpenQuickFocus,
				RefreshRate:    &ind.RefreshRate,
			},
		},
		Integrations: &IntegrationOverrides{
			GitHub: &GitHubOverrides{Enabled: &enabled, Workers: &workers},
			GitLab: &GitLabOverrides{Enabled: &disabled, Hostname: DefaultGitLabHost},
		},
		CloudIntegrations: &CloudIntegrationOverrides{Enabled: &enabled},
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# focus configuration file
# See: focus config defaults  (for all available options)

# Output format: table, json or markdown
default_format: table

focus:
  indicators:
    enabled: true
    # Open the quick focus view from the status indicator instead of the
    # full focus page.
    openQuickFocus: true
    # Minutes between refreshes. 0 disables polling.
    refreshRate: 5

# integrations:
#   github:
#     enterprise_url: https://github.example.com/
#   gitlab:
#     enabled: true
#     hostname: gitlab.com

# Exclude noisy repositories (optional)
# exclude_repos:
#   - owner/noisy-repo

# Exclude bot authors (optional)
# exclude_authors:
#   - dependabot[bot]
#   - renovate[bot]
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
