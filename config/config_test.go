package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestGetIndicatorSettings(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		want IndicatorSettings
	}{
		{
			name: "defaults when unset",
			cfg:  &Config{},
			want: IndicatorSettings{Enabled: true, OpenQuickFocus: true, RefreshRate: 5},
		},
		{
			name: "partial override",
			cfg: &Config{Focus: &FocusOverrides{Indicators: &IndicatorOverrides{
				RefreshRate: intPtr(0),
			}}},
			want: IndicatorSettings{Enabled: true, OpenQuickFocus: true, RefreshRate: 0},
		},
		{
			name: "full override",
			cfg: &Config{Focus: &FocusOverrides{Indicators: &IndicatorOverrides{
				Enabled:        boolPtr(false),
				OpenQuickFocus: boolPtr(false),
				RefreshRate:    intPtr(15),
			}}},
			want: IndicatorSettings{Enabled: false, OpenQuickFocus: false, RefreshRate: 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.GetIndicatorSettings(); got != tt.want {
				t.Errorf("GetIndicatorSettings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetIntegrationSettings(t *testing.T) {
	cfg := &Config{}
	gh := cfg.GetGitHubSettings()
	if !gh.Enabled || gh.Workers != DefaultGitHubWorkers {
		t.Errorf("GetGitHubSettings() = %+v, want enabled with default workers", gh)
	}
	gl := cfg.GetGitLabSettings()
	if gl.Enabled || gl.Hostname != DefaultGitLabHost {
		t.Errorf("GetGitLabSettings() = %+v, want disabled on %s", gl, DefaultGitLabHost)
	}
	if !cfg.CloudIntegrationsEnabled() {
		t.Error("CloudIntegrationsEnabled() = false, want true by default")
	}

	cfg = &Config{
		Integrations: &IntegrationOverrides{
			GitHub: &GitHubOverrides{Workers: intPtr(-1), EnterpriseURL: "https://ghe.example.com/"},
			GitLab: &GitLabOverrides{Enabled: boolPtr(true), Hostname: "gitlab.example.com"},
		},
		CloudIntegrations: &CloudIntegrationOverrides{Enabled: boolPtr(false)},
	}
	gh = cfg.GetGitHubSettings()
	if gh.Workers != DefaultGitHubWorkers {
		t.Errorf("Workers = %d, want default for non-positive override", gh.Workers)
	}
	if gh.EnterpriseURL != "https://ghe.example.com/" {
		t.Errorf("EnterpriseURL = %q", gh.EnterpriseURL)
	}
	gl = cfg.GetGitLabSettings()
	if !gl.Enabled || gl.Hostname != "gitlab.example.com" {
		t.Errorf("GetGitLabSettings() = %+v", gl)
	}
	if cfg.CloudIntegrationsEnabled() {
		t.Error("CloudIntegrationsEnabled() = true, want false")
	}
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.yaml")
	local := filepath.Join(dir, ".focus.yaml")

	writeFile(t, global, `
default_format: json
exclude_repos:
  - owner/noisy
focus:
  indicators:
    enabled: true
    refreshRate: 10
integrations:
  gitlab:
    enabled: true
`)
	writeFile(t, local, `
focus:
  indicators:
    openQuickFocus: false
integrations:
  gitlab:
    hostname: gitlab.example.com
`)

	cfg, err := LoadFrom(global, local)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.DefaultFormat != "json" {
		t.Errorf("DefaultFormat = %q, want json", cfg.DefaultFormat)
	}
	if !cfg.IsRepoExcluded("owner/noisy") {
		t.Error("IsRepoExcluded(owner/noisy) = false, want true")
	}

	want := IndicatorSettings{Enabled: true, OpenQuickFocus: false, RefreshRate: 10}
	if got := cfg.GetIndicatorSettings(); got != want {
		t.Errorf("GetIndicatorSettings() = %+v, want %+v", got, want)
	}

	gl := cfg.GetGitLabSettings()
	if !gl.Enabled || gl.Hostname != "gitlab.example.com" {
		t.Errorf("GetGitLabSettings() = %+v, want merged enabled + hostname", gl)
	}
}

func TestLoadFrom_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(dir, "nope.yaml"), filepath.Join(dir, "nope-local.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.DefaultFormat != "table" {
		t.Errorf("DefaultFormat = %q, want table", cfg.DefaultFormat)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.yaml")
	writeFile(t, global, "focus: [not: a map")

	if _, err := LoadFrom(global, ""); err == nil {
		t.Error("LoadFrom() error = nil, want parse error")
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{"default_format", "json", false},
		{"default_format", "xml", true},
		{KeyIndicatorsEnabled, "false", false},
		{KeyIndicatorsOpenQuickFocus, "nope", true},
		{KeyIndicatorsRefreshRate, "15", false},
		{KeyIndicatorsRefreshRate, "soon", true},
		{"unknown.key", "1", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := &Config{}
			err := cfg.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Set(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
		})
	}

	cfg := &Config{}
	_ = cfg.Set(KeyIndicatorsRefreshRate, "15")
	_ = cfg.Set(KeyIndicatorsEnabled, "false")
	want := IndicatorSettings{Enabled: false, OpenQuickFocus: true, RefreshRate: 15}
	if got := cfg.GetIndicatorSettings(); got != want {
		t.Errorf("GetIndicatorSettings() after Set = %+v, want %+v", got, want)
	}
}

func TestIsAuthorExcluded(t *testing.T) {
	cfg := &Config{ExcludeAuthors: []string{"dependabot[bot]"}}
	if !cfg.IsAuthorExcluded("dependabot[bot]") {
		t.Error("IsAuthorExcluded(dependabot[bot]) = false, want true")
	}
	if cfg.IsAuthorExcluded("octocat") {
		t.Error("IsAuthorExcluded(octocat) = true, want false")
	}
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	out, err := DefaultConfig().ToYAML()
	if err != nil {
		t.Fatalf("ToYAML() error = %v", err)
	}
	for _, want := range []string{"refreshRate: 5", "openQuickFocus: true", "hostname: gitlab.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("ToYAML() missing %q:\n%s", want, out)
		}
	}
}

func TestMinimalConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, MinimalConfig())

	cfg, err := LoadFrom(path, "")
	if err != nil {
		t.Fatalf("LoadFrom(minimal) error = %v", err)
	}
	if got := cfg.GetIndicatorSettings(); got != DefaultIndicatorSettings() {
		t.Errorf("minimal config indicator settings = %+v, want defaults", got)
	}
}
