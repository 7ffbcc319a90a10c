package cache

import (
	"time"

	"github.com/spiffcs/focus/internal/model"
)

// Version should be incremented when the cached record format changes so
// old entries are ignored.
const Version = 1

// ListEntry is one provider's cached pull request list.
type ListEntry struct {
	Provider     string              `json:"provider"`
	PullRequests []model.PullRequest `json:"pullRequests"`
	CachedAt     time.Time           `json:"cachedAt"`
	Version      int                 `json:"version"`
}

// ProviderStat describes the cached list of one provider.
type ProviderStat struct {
	Count    int
	CachedAt time.Time
	Valid    bool
}

// Stats summarizes the cache directory.
type Stats struct {
	Total     int
	Valid     int
	Providers map[string]ProviderStat
}
