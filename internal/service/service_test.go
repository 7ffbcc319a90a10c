package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spiffcs/focus/internal/cache"
	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/ghclient"
	"github.com/spiffcs/focus/internal/integration"
	"github.com/spiffcs/focus/internal/model"
)

type fakeProvider struct {
	id      integration.IntegrationID
	mu      sync.Mutex
	prs     []model.PullRequest
	err     error
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (p *fakeProvider) ID() integration.IntegrationID { return p.id }

func (p *fakeProvider) PullRequests(ctx context.Context) ([]model.PullRequest, error) {
	p.calls.Add(1)
	if p.started != nil {
		p.started <- struct{}{}
	}
	if p.release != nil {
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prs, p.err
}

func (p *fakeProvider) set(prs []model.PullRequest, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prs = prs
	p.err = err
}

func authored(provider string, number int, updated time.Time) model.PullRequest {
	return model.PullRequest{
		Provider:       provider,
		Repository:     "o/r",
		Number:         number,
		Author:         "me",
		ViewerIsAuthor: true,
		ReviewDecision: model.ReviewApproved,
		Merge:          model.MergeClean,
		Reviewers:      1,
		UpdatedAt:      updated,
	}
}

// memCache is an in-memory cache.Cacher.
type memCache struct {
	mu      sync.Mutex
	entries map[string]*cache.ListEntry
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*cache.ListEntry)}
}

func (c *memCache) GetList(provider string) (*cache.ListEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[provider]
	return e, ok
}

func (c *memCache) SetList(provider string, prs []model.PullRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[provider] = &cache.ListEntry{Provider: provider, PullRequests: prs}
	return nil
}

func (c *memCache) Clear() error                 { return nil }
func (c *memCache) Stats() (*cache.Stats, error) { return &cache.Stats{}, nil }

type excludeRepo string

func (e excludeRepo) IsRepoExcluded(repo string) bool     { return repo == string(e) }
func (e excludeRepo) IsAuthorExcluded(author string) bool { return author == "bot" }

type snoozeNumber int

func (n snoozeNumber) Filter(items []model.Item) []model.Item {
	var out []model.Item
	for _, item := range items {
		if item.Number != int(n) {
			out = append(out, item)
		}
	}
	return out
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []focus.RefreshEvent
}

func (r *recorder) record(e focus.RefreshEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) last() focus.RefreshEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

var base = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

func TestRefresh_PublishesNormalizedItems(t *testing.T) {
	gh := &fakeProvider{id: integration.GitHub, prs: []model.PullRequest{
		authored("github", 1, base),
		authored("github", 2, base.Add(time.Hour)),
		authored("github", 1, base),
	}}
	gl := &fakeProvider{id: integration.GitLab, prs: []model.PullRequest{
		{Provider: "gitlab", Repository: "g/p", Number: 3, ViewerReviewRequested: true, UpdatedAt: base.Add(2 * time.Hour)},
	}}

	s := New([]Provider{gh, gl})
	var rec recorder
	s.OnDidRefresh(rec.record)

	if err := s.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if rec.count() != 1 {
		t.Fatalf("published %d events, want 1", rec.count())
	}

	e := rec.last()
	if !e.Force {
		t.Error("event Force = false, want true")
	}
	var keys []string
	for _, item := range e.Items {
		keys = append(keys, item.Key())
	}
	want := []string{"gitlab:g/p#3", "github:o/r#2", "github:o/r#1"}
	if len(keys) != len(want) {
		t.Fatalf("event keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("event keys = %v, want %v", keys, want)
			break
		}
	}
	if e.Items[0].Category != model.CategoryNeedsReview || e.Items[1].Category != model.CategoryMergeable {
		t.Errorf("categories = %q, %q", e.Items[0].Category, e.Items[1].Category)
	}
	if got := s.Items(); len(got) != 3 {
		t.Errorf("Items() = %d items, want 3", len(got))
	}
	if s.LastRefresh().IsZero() {
		t.Error("LastRefresh() is zero after a refresh")
	}
}

func TestRefresh_Filters(t *testing.T) {
	p := &fakeProvider{id: integration.GitHub, prs: []model.PullRequest{
		authored("github", 1, base),
		{Provider: "github", Repository: "skip/me", Number: 2, ViewerIsAuthor: true},
		{Provider: "github", Repository: "o/r", Number: 3, Author: "bot", ViewerReviewRequested: true},
		authored("github", 4, base),
	}}
	s := New([]Provider{p}, WithExclusions(excludeRepo("skip/me")), WithSnoozer(snoozeNumber(4)))

	if err := s.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	items := s.Items()
	if len(items) != 1 || items[0].Number != 1 {
		t.Errorf("Items() = %+v, want only #1", items)
	}
}

func TestRefresh_Cache(t *testing.T) {
	p := &fakeProvider{id: integration.GitHub, prs: []model.PullRequest{authored("github", 1, base)}}
	c := newMemCache()
	s := New([]Provider{p}, WithCache(c))

	for range 2 {
		if err := s.Refresh(context.Background(), false); err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
	}
	if got := p.calls.Load(); got != 1 {
		t.Errorf("provider called %d times, want 1 with a warm cache", got)
	}

	if err := s.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh(force) error = %v", err)
	}
	if got := p.calls.Load(); got != 2 {
		t.Errorf("provider called %d times, want 2 after a forced refresh", got)
	}
}

func TestRefresh_ProviderFailures(t *testing.T) {
	gh := &fakeProvider{id: integration.GitHub, prs: []model.PullRequest{authored("github", 1, base)}}
	gl := &fakeProvider{id: integration.GitLab, prs: []model.PullRequest{authored("gitlab", 2, base)}}
	s := New([]Provider{gh, gl})
	var rec recorder
	s.OnDidRefresh(rec.record)

	if err := s.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	t.Run("partial failure reuses previous list", func(t *testing.T) {
		gh.set(nil, ghclient.ErrRateLimited)
		gl.set([]model.PullRequest{authored("gitlab", 2, base), authored("gitlab", 3, base)}, nil)

		if err := s.Refresh(context.Background(), true); err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		if got := len(rec.last().Items); got != 3 {
			t.Errorf("published %d items, want 3 (1 stale + 2 fresh)", got)
		}
	})

	t.Run("all failing publishes nothing", func(t *testing.T) {
		fresh := New([]Provider{&fakeProvider{id: integration.GitHub, err: errors.New("boom")}})
		var r recorder
		fresh.OnDidRefresh(r.record)

		err := fresh.Refresh(context.Background(), true)
		if !errors.Is(err, ErrAllProvidersFailed) {
			t.Errorf("Refresh() error = %v, want ErrAllProvidersFailed", err)
		}
		if r.count() != 0 {
			t.Errorf("published %d events, want 0", r.count())
		}
	})
}

func TestRefresh_Coalesced(t *testing.T) {
	p := &fakeProvider{
		id:      integration.GitHub,
		prs:     []model.PullRequest{authored("github", 1, base)},
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	s := New([]Provider{p})
	var rec recorder
	s.OnDidRefresh(rec.record)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = s.Refresh(context.Background(), true)
	}()
	<-p.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[1] = s.Refresh(context.Background(), true)
	}()
	// give the second caller time to join the in-flight fetch
	time.Sleep(50 * time.Millisecond)
	close(p.release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Refresh() #%d error = %v", i, err)
		}
	}
	if got := p.calls.Load(); got != 1 {
		t.Errorf("provider called %d times, want 1", got)
	}
	if rec.count() != 1 {
		t.Errorf("published %d events, want 1", rec.count())
	}
}

func TestOnDidRefresh_Unsubscribe(t *testing.T) {
	p := &fakeProvider{id: integration.GitHub}
	s := New([]Provider{p})
	var a, b recorder
	unsubscribe := s.OnDidRefresh(a.record)
	s.OnDidRefresh(b.record)

	unsubscribe()
	unsubscribe()

	if err := s.Refresh(context.Background(), false); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if a.count() != 0 || b.count() != 1 {
		t.Errorf("events = %d, %d; want 0, 1", a.count(), b.count())
	}
}

func TestProgress(t *testing.T) {
	var mu sync.Mutex
	var calls [][2]int
	providers := []Provider{
		&fakeProvider{id: integration.GitHub},
		&fakeProvider{id: integration.GitLab},
	}
	s := New(providers, WithProgress(func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, [2]int{completed, total})
	}))

	if err := s.Refresh(context.Background(), true); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if len(calls) != 3 || calls[0] != [2]int{0, 2} || !slices.Contains(calls, [2]int{2, 2}) {
		t.Errorf("progress calls = %v", calls)
	}
	if ids := s.Providers(); len(ids) != 2 || ids[1] != integration.GitLab {
		t.Errorf("Providers() = %v", ids)
	}
}
