package config

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestChangeEventAffects(t *testing.T) {
	e := ChangeEvent{Keys: []string{KeyIndicatorsRefreshRate}}

	tests := []struct {
		key  string
		want bool
	}{
		{KeyIndicatorsRefreshRate, true},
		{KeyIndicators, true},
		{"focus", true},
		{KeyIndicatorsEnabled, false},
		{KeyDefaultFormat, false},
		{"focus.indicators.refreshRateX", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := e.Affects(tt.key); got != tt.want {
				t.Errorf("Affects(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}

	section := ChangeEvent{Keys: []string{"focus"}}
	if !section.Affects(KeyIndicatorsOpenQuickFocus) {
		t.Error("section change should affect child key")
	}
}

func TestDiff(t *testing.T) {
	prev := &Config{DefaultFormat: "table"}
	next := &Config{
		DefaultFormat: "table",
		ExcludeRepos:  []string{"o/r"},
		Focus: &FocusOverrides{Indicators: &IndicatorOverrides{
			RefreshRate:    intPtr(1),
			OpenQuickFocus: boolPtr(true), // same as default
		}},
		Integrations: &IntegrationOverrides{GitLab: &GitLabOverrides{Enabled: boolPtr(true)}},
	}

	got := Diff(prev, next).Keys
	want := []string{KeyExcludeRepos, KeyIndicatorsRefreshRate, KeyIntegrationsGitLab}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Diff() = %v, want %v", got, want)
	}

	if !Diff(prev, prev).Empty() {
		t.Error("Diff(same) not empty")
	}
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.yaml")
	writeFile(t, global, "focus:\n  indicators:\n    refreshRate: 5\n")

	cfg, err := LoadFrom(global, "")
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	w := NewWatcher(cfg, WithPaths(global, ""))

	var events []ChangeEvent
	var seen *Config
	w.OnDidChange(func(e ChangeEvent, c *Config) {
		events = append(events, e)
		seen = c
	})

	// No change on disk: no notification
	if _, err := w.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("got %d events for unchanged config, want 0", len(events))
	}

	writeFile(t, global, "focus:\n  indicators:\n    refreshRate: 0\n    enabled: false\n")
	e, err := w.Reload()
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if !e.Affects(KeyIndicatorsRefreshRate) || !e.Affects(KeyIndicatorsEnabled) {
		t.Errorf("Reload() event = %v, want refreshRate and enabled", e.Keys)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if seen.GetIndicatorSettings().RefreshRate != 0 {
		t.Errorf("handler config refreshRate = %d, want 0", seen.GetIndicatorSettings().RefreshRate)
	}
	if w.Current() != seen {
		t.Error("Current() does not return the reloaded config")
	}
}

func TestWatcherReload_KeepsConfigOnError(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.yaml")
	cfg := &Config{DefaultFormat: "table"}
	w := NewWatcher(cfg, WithPaths(global, ""))

	writeFile(t, global, "focus: [broken")
	if _, err := w.Reload(); err == nil {
		t.Fatal("Reload() error = nil, want parse error")
	}
	if w.Current() != cfg {
		t.Error("Current() changed after failed reload")
	}
}

// watchFormat runs w in the background and returns a channel that receives
// once a reload sets default_format to want. Intermediate reloads, such as
// one landing between truncate and write, are ignored.
func watchFormat(t *testing.T, w *Watcher, reload chan os.Signal, want string) <-chan ChangeEvent {
	t.Helper()
	changed := make(chan ChangeEvent, 8)
	w.OnDidChange(func(e ChangeEvent, c *Config) {
		if e.Affects(KeyDefaultFormat) && c.DefaultFormat == want {
			select {
			case changed <- e:
			default:
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, reload, func(err error) { t.Logf("watch error: %v", err) })
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return changed
}

func waitChange(t *testing.T, changed <-chan ChangeEvent) {
	t.Helper()
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherRun_SignalForcesReload(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.yaml")
	writeFile(t, global, "default_format: table\n")
	cfg, _ := LoadFrom(global, "")

	// file events never settle, so only the signal can reload
	w := NewWatcher(cfg, WithPaths(global, ""), WithDebounce(time.Hour))
	reload := make(chan os.Signal, 1)
	changed := watchFormat(t, w, reload, "json")

	writeFile(t, global, "default_format: json\n")
	reload <- os.Interrupt

	waitChange(t, changed)
	if got := w.Current().DefaultFormat; got != "json" {
		t.Errorf("Current().DefaultFormat = %q, want json", got)
	}
}

func TestWatcherRun_FileEvents(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, global, local string)
		edit  func(t *testing.T, global, local string)
	}{
		{
			name:  "write",
			setup: func(t *testing.T, global, _ string) { writeFile(t, global, "default_format: table\n") },
			edit:  func(t *testing.T, global, _ string) { writeFile(t, global, "default_format: json\n") },
		},
		{
			name:  "create local",
			setup: func(t *testing.T, global, _ string) { writeFile(t, global, "default_format: table\n") },
			edit:  func(t *testing.T, _, local string) { writeFile(t, local, "default_format: json\n") },
		},
		{
			name:  "atomic rename",
			setup: func(t *testing.T, global, _ string) { writeFile(t, global, "default_format: table\n") },
			edit: func(t *testing.T, global, _ string) {
				tmp := global + ".tmp"
				writeFile(t, tmp, "default_format: json\n")
				if err := os.Rename(tmp, global); err != nil {
					t.Fatalf("rename: %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			global := filepath.Join(dir, "global", "config.yaml")
			local := filepath.Join(dir, ".focus.yaml")
			if err := os.MkdirAll(filepath.Dir(global), 0700); err != nil {
				t.Fatal(err)
			}
			tt.setup(t, global, local)
			cfg, err := LoadFrom(global, local)
			if err != nil {
				t.Fatalf("LoadFrom() error = %v", err)
			}

			w := NewWatcher(cfg, WithPaths(global, local), WithDebounce(20*time.Millisecond))
			changed := watchFormat(t, w, nil, "json")
			// let Run register its directory watches
			time.Sleep(100 * time.Millisecond)

			tt.edit(t, global, local)
			waitChange(t, changed)
			if got := w.Current().DefaultFormat; got != "json" {
				t.Errorf("Current().DefaultFormat = %q, want json", got)
			}
		})
	}
}

func TestWatcherRun_MissingDirectory(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "absent", "config.yaml")
	w := NewWatcher(&Config{}, WithPaths(global, ""), WithDebounce(time.Millisecond))

	reload := make(chan os.Signal, 1)
	changed := watchFormat(t, w, reload, "json")

	if err := os.MkdirAll(filepath.Dir(global), 0700); err != nil {
		t.Fatal(err)
	}
	writeFile(t, global, "default_format: json\n")
	reload <- os.Interrupt
	waitChange(t, changed)
}

func TestWatcherFiles(t *testing.T) {
	w := NewWatcher(&Config{}, WithPaths("/etc/focus/config.yaml", ""))
	if got := w.files(); !reflect.DeepEqual(got, []string{"/etc/focus/config.yaml"}) {
		t.Errorf("files() = %v", got)
	}

	w = NewWatcher(&Config{}, WithPaths("/a/../b/config.yaml", ".focus.yaml"))
	got := w.files()
	if len(got) != 2 || got[0] != "/b/config.yaml" || !filepath.IsAbs(got[1]) {
		t.Errorf("files() = %v, want cleaned absolute paths", got)
	}
}
