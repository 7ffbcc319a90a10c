package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spiffcs/focus/config"
	"github.com/spiffcs/focus/internal/cache"
	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/format"
	"github.com/spiffcs/focus/internal/ghclient"
	"github.com/spiffcs/focus/internal/glclient"
	"github.com/spiffcs/focus/internal/integration"
	"github.com/spiffcs/focus/internal/log"
	"github.com/spiffcs/focus/internal/service"
	"github.com/spiffcs/focus/internal/snooze"
	"github.com/spiffcs/focus/internal/stats"
	"github.com/spiffcs/focus/internal/tui"
)

// progressUI bundles the optional progress display of one-shot commands.
type progressUI struct {
	events chan tui.Event
	done   chan error
}

// startProgress starts the progress TUI when enabled, and routes logs so
// they do not interleave with it.
func startProgress(opts *Options) *progressUI {
	if !shouldUseTUI(opts) {
		log.Initialize(opts.Verbosity, os.Stderr)
		return &progressUI{}
	}
	log.Initialize(opts.Verbosity, io.Discard)

	p := &progressUI{
		events: make(chan tui.Event, 100),
		done:   make(chan error, 1),
	}
	go func() {
		p.done <- tui.Run(p.events)
	}()
	return p
}

func (p *progressUI) send(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	if p == nil {
		return
	}
	tui.SendTaskEvent(p.events, task, status, opts...)
}

// close stops the progress display and waits for it to restore the terminal.
func (p *progressUI) close() {
	if p == nil || p.events == nil {
		return
	}
	close(p.events)
	if err := <-p.done; err != nil {
		log.Warn("progress display failed", "error", err)
	}
	p.events = nil
	log.Initialize(log.Verbosity(), os.Stderr)
}

// app holds what the data commands share: configuration, the snooze store
// and the service over every configured provider.
type app struct {
	cfg     *config.Config
	snooze  *snooze.Store
	service *service.FocusService
}

// newApp builds a service over every configured integration. progress may
// be nil; extra options are applied last.
func newApp(ctx context.Context, cfg *config.Config, progress *progressUI, extra ...service.Option) (*app, error) {
	progress.send(tui.TaskSessions, tui.StatusRunning)
	sessions, err := integration.Sessions(cfg, os.Getenv)
	if err != nil {
		progress.send(tui.TaskSessions, tui.StatusError, tui.WithError(err))
		return nil, err
	}

	providers := make([]service.Provider, 0, len(sessions))
	names := make([]string, 0, len(sessions))
	for _, s := range sessions {
		p, err := newProvider(ctx, cfg, s)
		if err != nil {
			progress.send(tui.TaskSessions, tui.StatusError, tui.WithError(err))
			return nil, err
		}
		providers = append(providers, p)
		names = append(names, s.ID.Name())
	}
	progress.send(tui.TaskSessions, tui.StatusComplete, tui.WithMessage(strings.Join(names, ", ")))

	a := &app{cfg: cfg}
	opts := []service.Option{
		service.WithExclusions(cfg),
		service.WithProgress(func(completed, total int) {
			progress.send(tui.TaskFetch, tui.StatusRunning,
				tui.WithProgress(float64(completed)/float64(total)),
				tui.WithMessage(fmt.Sprintf("%d/%d providers", completed, total)))
		}),
	}

	if store, err := snooze.NewStore(); err != nil {
		log.Warn("could not load snoozed items", "error", err)
	} else {
		a.snooze = store
		opts = append(opts, service.WithSnoozer(store))
	}

	if c, err := cache.New(); err != nil {
		log.Warn("could not open cache", "error", err)
	} else {
		opts = append(opts, service.WithCache(c))
	}

	a.service = service.New(providers, append(opts, extra...)...)

	if history, err := stats.NewStore(); err != nil {
		log.Debug("could not open stats history", "error", err)
	} else {
		a.service.OnDidRefresh(func(e focus.RefreshEvent) {
			if err := history.Append(stats.FromEvent(e)); err != nil {
				log.Debug("failed to record stats", "error", err)
			}
		})
	}
	return a, nil
}

// newProvider creates the client for one session.
func newProvider(ctx context.Context, cfg *config.Config, s integration.ProviderSession) (service.Provider, error) {
	switch {
	case s.ID.IsGitHub():
		client, err := ghclient.NewClient(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.ID.Name(), err)
		}
		return ghclient.NewProvider(client, cfg.GetGitHubSettings().Workers), nil
	case s.ID.IsGitLab():
		return glclient.NewProvider(glclient.NewClient(s)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported integration", s.ID.Name())
	}
}

// refresh fetches every provider once and reports progress. Partial
// failures are logged by the service; only a total failure is an error.
func (a *app) refresh(ctx context.Context, force bool, progress *progressUI) error {
	progress.send(tui.TaskFetch, tui.StatusRunning)
	err := a.service.Refresh(ctx, force)
	if err != nil {
		progress.send(tui.TaskFetch, tui.StatusError, tui.WithError(err))
		if errors.Is(err, ghclient.ErrRateLimited) {
			return fmt.Errorf("rate limited, try again later: %w", err)
		}
		return err
	}
	progress.send(tui.TaskFetch, tui.StatusComplete, tui.WithCount(len(a.service.Items())))
	return nil
}

// loadConfig loads the merged configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// ago renders t relative to now, e.g. "3h ago".
func ago(t, now time.Time) string {
	age := format.Age(t, now)
	if age == "now" || age == "-" {
		return age
	}
	return age + " ago"
}
