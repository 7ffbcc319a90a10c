package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spiffcs/focus/internal/constants"
	"github.com/spiffcs/focus/internal/log"
)

// Key paths reported in change events.
const (
	KeyDefaultFormat            = "default_format"
	KeyExcludeRepos             = "exclude_repos"
	KeyExcludeAuthors           = "exclude_authors"
	KeyIndicators               = "focus.indicators"
	KeyIndicatorsEnabled        = "focus.indicators.enabled"
	KeyIndicatorsOpenQuickFocus = "focus.indicators.openQuickFocus"
	KeyIndicatorsRefreshRate    = "focus.indicators.refreshRate"
	KeyIntegrationsGitHub       = "integrations.github"
	KeyIntegrationsGitLab       = "integrations.gitlab"
	KeyCloudIntegrations        = "cloud_integrations.enabled"
)

// ChangeEvent lists the key paths whose effective value changed.
type ChangeEvent struct {
	Keys []string
}

// Affects reports whether the event touches key, one of its children, or a
// section containing it.
func (e ChangeEvent) Affects(key string) bool {
	for _, k := range e.Keys {
		if k == key || strings.HasPrefix(k, key+".") || strings.HasPrefix(key, k+".") {
			return true
		}
	}
	return false
}

// Empty reports whether nothing changed.
func (e ChangeEvent) Empty() bool {
	return len(e.Keys) == 0
}

// Diff compares the effective settings of two configs.
func Diff(prev, next *Config) ChangeEvent {
	var keys []string

	if prev.DefaultFormat != next.DefaultFormat {
		keys = append(keys, KeyDefaultFormat)
	}
	if !slices.Equal(prev.ExcludeRepos, next.ExcludeRepos) {
		keys = append(keys, KeyExcludeRepos)
	}
	if !slices.Equal(prev.ExcludeAuthors, next.ExcludeAuthors) {
		keys = append(keys, KeyExcludeAuthors)
	}

	pi, ni := prev.GetIndicatorSettings(), next.GetIndicatorSettings()
	if pi.Enabled != ni.Enabled {
		keys = append(keys, KeyIndicatorsEnabled)
	}
	if pi.OpenQuickFocus != ni.OpenQuickFocus {
		keys = append(keys, KeyIndicatorsOpenQuickFocus)
	}
	if pi.RefreshRate != ni.RefreshRate {
		keys = append(keys, KeyIndicatorsRefreshRate)
	}

	if prev.GetGitHubSettings() != next.GetGitHubSettings() {
		keys = append(keys, KeyIntegrationsGitHub)
	}
	if prev.GetGitLabSettings() != next.GetGitLabSettings() {
		keys = append(keys, KeyIntegrationsGitLab)
	}
	if prev.CloudIntegrationsEnabled() != next.CloudIntegrationsEnabled() {
		keys = append(keys, KeyCloudIntegrations)
	}

	return ChangeEvent{Keys: keys}
}

// ChangeHandler receives a change event and the config after the change.
type ChangeHandler func(ChangeEvent, *Config)

// Watcher reloads configuration when the config files change or when
// asked to, and notifies handlers of effective changes.
type Watcher struct {
	globalPath string
	localPath  string
	debounce   time.Duration

	mu       sync.Mutex
	current  *Config
	handlers []ChangeHandler
}

// WatcherOption is a functional option for configuring a Watcher.
type WatcherOption func(*Watcher)

// WithPaths overrides the global and local config paths.
func WithPaths(global, local string) WatcherOption {
	return func(w *Watcher) {
		w.globalPath = global
		w.localPath = local
	}
}

// WithDebounce sets how long file events must settle before a reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a watcher seeded with the already loaded config.
func NewWatcher(cfg *Config, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		globalPath: ConfigPath(),
		localPath:  LocalConfigPath(),
		debounce:   constants.ConfigReloadDebounce,
		current:    cfg,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// OnDidChange registers a handler for effective config changes.
func (w *Watcher) OnDidChange(fn ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, fn)
}

// Current returns the most recently loaded config.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Reload re-reads the config files and notifies handlers if any effective
// value changed. A parse error leaves the current config in place.
func (w *Watcher) Reload() (ChangeEvent, error) {
	next, err := LoadFrom(w.globalPath, w.localPath)
	if err != nil {
		return ChangeEvent{}, err
	}

	w.mu.Lock()
	event := Diff(w.current, next)
	w.current = next
	handlers := slices.Clone(w.handlers)
	w.mu.Unlock()

	if event.Empty() {
		return event, nil
	}
	for _, h := range handlers {
		h(event, next)
	}
	return event, nil
}

// Run watches the config files until ctx is done. A value on reload forces
// a reload right away. File events are coalesced until they settle, so an
// editor's write-then-rename reloads once. Errors go to onError.
func (w *Watcher) Run(ctx context.Context, reload <-chan os.Signal, onError func(error)) {
	report := func(err error) {
		if onError != nil {
			onError(err)
		}
	}

	files := w.files()
	var events <-chan fsnotify.Event
	var errs <-chan error
	fsw, err := watchDirs(files)
	if err != nil {
		report(fmt.Errorf("watching config files: %w", err))
	} else {
		defer fsw.Close()
		events, errs = fsw.Events, fsw.Errors
	}

	var settled <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-reload:
			settled = nil
		case e, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if e.Op != fsnotify.Chmod && slices.Contains(files, filepath.Clean(e.Name)) {
				log.Trace("config file event", "file", e.Name, "op", e.Op)
				settled = time.After(w.debounce)
			}
			continue
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			report(fmt.Errorf("watching config files: %w", err))
			continue
		case <-settled:
			settled = nil
		}
		if _, err := w.Reload(); err != nil {
			report(err)
		}
	}
}

// files returns the absolute config paths.
func (w *Watcher) files() []string {
	var out []string
	for _, p := range []string{w.globalPath, w.localPath} {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, filepath.Clean(p))
	}
	return out
}

// watchDirs watches the directories holding files rather than the files
// themselves, so creation, removal and atomic renames all register.
// Directories that do not exist are skipped; SIGHUP still reloads.
func watchDirs(files []string) (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		dir := filepath.Dir(f)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := fsw.Add(dir); err != nil {
			log.Debug("not watching config directory", "dir", dir, "error", err)
		}
	}
	return fsw, nil
}
