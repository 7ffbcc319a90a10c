// Package service fetches pull requests from every configured provider and
// publishes the normalized item set to subscribers.
package service

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/spiffcs/focus/internal/cache"
	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/integration"
	"github.com/spiffcs/focus/internal/log"
	"github.com/spiffcs/focus/internal/model"
	"golang.org/x/sync/singleflight"
)

// ErrAllProvidersFailed is returned when no provider produced any data.
var ErrAllProvidersFailed = errors.New("all providers failed")

// Snoozer hides snoozed items.
type Snoozer interface {
	Filter(items []model.Item) []model.Item
}

// Exclusions decides which repositories and authors are ignored.
type Exclusions interface {
	IsRepoExcluded(repo string) bool
	IsAuthorExcluded(author string) bool
}

// FocusService is the upstream data source of the indicator and the
// list commands.
type FocusService struct {
	providers  []Provider
	cache      cache.Cacher
	snoozer    Snoozer
	exclusions Exclusions
	onProgress ProgressFunc
	now        func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	last      map[integration.IntegrationID][]model.PullRequest
	items     []model.Item
	refreshed time.Time
	listeners map[int]func(focus.RefreshEvent)
	nextID    int
}

// Option configures a FocusService.
type Option func(*FocusService)

// WithCache serves non-forced refreshes from c while it is fresh.
func WithCache(c cache.Cacher) Option {
	return func(s *FocusService) {
		s.cache = c
	}
}

// WithSnoozer drops snoozed items from every published set.
func WithSnoozer(sn Snoozer) Option {
	return func(s *FocusService) {
		s.snoozer = sn
	}
}

// WithExclusions drops items from excluded repositories or authors.
func WithExclusions(e Exclusions) Option {
	return func(s *FocusService) {
		s.exclusions = e
	}
}

// WithProgress reports provider completion during each fetch.
func WithProgress(fn ProgressFunc) Option {
	return func(s *FocusService) {
		s.onProgress = fn
	}
}

// New creates a service over providers. Provider order decides which
// record wins when two providers return the same item.
func New(providers []Provider, opts ...Option) *FocusService {
	s := &FocusService{
		providers: providers,
		now:       time.Now,
		last:      make(map[integration.IntegrationID][]model.PullRequest),
		listeners: make(map[int]func(focus.RefreshEvent)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnDidRefresh registers fn for every published refresh event and returns
// a function that unregisters it.
func (s *FocusService) OnDidRefresh(fn func(focus.RefreshEvent)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Refresh fetches every provider and publishes the result. Concurrent
// calls with the same force flag share one fetch. When every provider
// fails nothing is published and subscribers keep their last state.
func (s *FocusService) Refresh(ctx context.Context, force bool) error {
	key := "refresh"
	if force {
		key = "force"
	}
	_, err, shared := s.group.Do(key, func() (any, error) {
		return nil, s.refresh(ctx, force)
	})
	if shared {
		log.Trace("refresh coalesced", "force", force)
	}
	return err
}

func (s *FocusService) refresh(ctx context.Context, force bool) error {
	start := s.now()
	result := s.fetchAll(ctx, force)
	if !result.Succeeded() {
		return errors.Join(ErrAllProvidersFailed, result.Err())
	}

	items := s.prepare(focus.Normalize(result.PullRequests()))
	event := focus.RefreshEvent{Items: items, Force: force, At: s.now()}

	s.mu.Lock()
	s.items = items
	s.refreshed = event.At
	listeners := make([]func(focus.RefreshEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	log.Debug("refresh complete", "items", len(items), "force", force, "elapsed", s.now().Sub(start))

	for _, fn := range listeners {
		fn(event)
	}
	return nil
}

// prepare removes duplicates, excluded and snoozed items, then orders the
// rest by most recent activity.
func (s *FocusService) prepare(items []model.Item) []model.Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		key := item.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if s.exclusions != nil && (s.exclusions.IsRepoExcluded(item.Repository) || s.exclusions.IsAuthorExcluded(item.Author)) {
			continue
		}
		out = append(out, item)
	}

	if s.snoozer != nil {
		out = s.snoozer.Filter(out)
	}

	slices.SortStableFunc(out, func(a, b model.Item) int {
		return cmp.Compare(b.UpdatedAt.UnixNano(), a.UpdatedAt.UnixNano())
	})
	return out
}

// Items returns the last published item set.
func (s *FocusService) Items() []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// LastRefresh returns when items were last published, or the zero time.
func (s *FocusService) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshed
}

// Providers returns the ids of the configured providers.
func (s *FocusService) Providers() []integration.IntegrationID {
	ids := make([]integration.IntegrationID, len(s.providers))
	for i, p := range s.providers {
		ids[i] = p.ID()
	}
	return ids
}
