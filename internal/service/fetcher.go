package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/spiffcs/focus/internal/ghclient"
	"github.com/spiffcs/focus/internal/integration"
	"github.com/spiffcs/focus/internal/log"
	"github.com/spiffcs/focus/internal/model"
	"golang.org/x/sync/errgroup"
)

// Provider lists the raw pull requests of one integration.
type Provider interface {
	ID() integration.IntegrationID
	PullRequests(ctx context.Context) ([]model.PullRequest, error)
}

// ProgressFunc is called as providers complete.
type ProgressFunc func(completed, total int)

// ProviderResult is the outcome of fetching one provider.
type ProviderResult struct {
	Provider     integration.IntegrationID
	PullRequests []model.PullRequest
	FromCache    bool
	// Stale is set when the fetch failed and the previous list was reused.
	Stale       bool
	RateLimited bool
	Err         error
}

// FetchResult contains the outcome of every provider, in provider order.
type FetchResult struct {
	Results []ProviderResult
}

// Succeeded reports whether at least one provider produced data, fresh
// or stale.
func (r *FetchResult) Succeeded() bool {
	for _, res := range r.Results {
		if res.Err == nil || res.Stale {
			return true
		}
	}
	return false
}

// PullRequests concatenates every usable provider list.
func (r *FetchResult) PullRequests() []model.PullRequest {
	var prs []model.PullRequest
	for _, res := range r.Results {
		prs = append(prs, res.PullRequests...)
	}
	return prs
}

// Err joins the provider errors, or returns nil if all succeeded.
func (r *FetchResult) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Provider.Name(), res.Err))
		}
	}
	return errors.Join(errs...)
}

// fetchAll fetches every provider in parallel. One provider failing never
// cancels the others; its previous list is reused when there is one.
func (s *FocusService) fetchAll(ctx context.Context, force bool) *FetchResult {
	total := len(s.providers)
	result := &FetchResult{Results: make([]ProviderResult, total)}

	var completed int32
	s.reportProgress(0, total)

	var g errgroup.Group
	for i, p := range s.providers {
		g.Go(func() error {
			result.Results[i] = s.fetchOne(ctx, p, force)
			s.reportProgress(int(atomic.AddInt32(&completed, 1)), total)
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func (s *FocusService) fetchOne(ctx context.Context, p Provider, force bool) ProviderResult {
	id := p.ID()
	res := ProviderResult{Provider: id}

	if !force && s.cache != nil {
		if entry, ok := s.cache.GetList(string(id)); ok {
			log.Debug("cache hit", "provider", id, "count", len(entry.PullRequests))
			res.PullRequests = entry.PullRequests
			res.FromCache = true
			s.remember(id, entry.PullRequests)
			return res
		}
	}

	prs, err := p.PullRequests(ctx)
	if err != nil {
		res.Err = err
		res.RateLimited = errors.Is(err, ghclient.ErrRateLimited)
		if prev, ok := s.previous(id); ok {
			res.PullRequests = prev
			res.Stale = true
		}
		log.Warn("provider fetch failed", "provider", id, "rate_limited", res.RateLimited, "reusing_previous", res.Stale, "error", err)
		return res
	}

	res.PullRequests = prs
	s.remember(id, prs)
	if s.cache != nil {
		if err := s.cache.SetList(string(id), prs); err != nil {
			log.Debug("failed to cache provider list", "provider", id, "error", err)
		}
	}
	return res
}

func (s *FocusService) reportProgress(completed, total int) {
	if s.onProgress != nil {
		s.onProgress(completed, total)
	}
}

func (s *FocusService) remember(id integration.IntegrationID, prs []model.PullRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[id] = prs
}

func (s *FocusService) previous(id integration.IntegrationID) ([]model.PullRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prs, ok := s.last[id]
	return prs, ok
}
