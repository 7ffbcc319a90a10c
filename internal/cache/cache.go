// Package cache stores each provider's last fetched pull request list on
// disk so repeated runs stay within API limits.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spiffcs/focus/internal/constants"
	"github.com/spiffcs/focus/internal/log"
	"github.com/spiffcs/focus/internal/model"
)

// Cacher defines the interface for caching operations.
// This interface enables mocking the cache in unit tests.
type Cacher interface {
	GetList(provider string) (*ListEntry, bool)
	SetList(provider string, prs []model.PullRequest) error
	Clear() error
	Stats() (*Stats, error)
}

// Ensure Cache implements Cacher interface.
var _ Cacher = (*Cache)(nil)

// Cache is a directory of one JSON file per provider.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets how long a cached list stays valid.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithDir stores entries in dir instead of the user cache directory.
func WithDir(dir string) Option {
	return func(c *Cache) {
		c.dir = dir
	}
}

// New creates the cache, by default under $XDG_CACHE_HOME/focus/lists.
func New(opts ...Option) (*Cache, error) {
	c := &Cache{ttl: constants.PRListCacheTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	if c.dir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		c.dir = filepath.Join(cacheDir, "focus", "lists")
	}

	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return c, nil
}

// Dir returns the directory entries are stored in.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) path(provider string) string {
	// keep entries inside dir
	safe := strings.NewReplacer("/", "_", string(os.PathSeparator), "_").Replace(provider)
	return filepath.Join(c.dir, "list_"+safe+".json")
}

func (c *Cache) read(path string) (*ListEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry ListEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Cache) valid(entry *ListEntry) bool {
	return entry.Version == Version && c.now().Sub(entry.CachedAt) <= c.ttl
}

// GetList returns the cached list for provider while it is fresh.
func (c *Cache) GetList(provider string) (*ListEntry, bool) {
	entry, err := c.read(c.path(provider))
	if err != nil {
		return nil, false
	}
	if entry.Version != Version {
		log.Debug("cache version mismatch", "cached", entry.Version, "current", Version, "provider", provider)
		return nil, false
	}
	if !c.valid(entry) {
		return nil, false
	}
	return entry, true
}

// SetList replaces the cached list for provider.
func (c *Cache) SetList(provider string, prs []model.PullRequest) error {
	entry := ListEntry{
		Provider:     provider,
		PullRequests: prs,
		CachedAt:     c.now(),
		Version:      Version,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(provider), data, 0600)
}

// Clear removes all cached entries
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

// Stats reports every cached list and whether it is still fresh.
func (c *Cache) Stats() (*Stats, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Providers: make(map[string]ProviderStat)}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "list_") {
			continue
		}
		entry, err := c.read(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}
		valid := c.valid(entry)
		stats.Total++
		if valid {
			stats.Valid++
		}
		stats.Providers[entry.Provider] = ProviderStat{
			Count:    len(entry.PullRequests),
			CachedAt: entry.CachedAt,
			Valid:    valid,
		}
	}

	return stats, nil
}
