package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spiffcs/focus/config"
	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/indicator"
	"github.com/spiffcs/focus/internal/log"
	"github.com/spiffcs/focus/internal/service"
	"github.com/spiffcs/focus/internal/tui"
)

// NewCmdWatch creates the watch command.
func NewCmdWatch(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep a live focus status indicator",
		Long: `Shows a status indicator summarizing the most urgent focus group and
refreshes it every focus.indicators.refreshRate minutes.

Config file changes are picked up while running; send SIGHUP to reload
immediately. Without a terminal the indicator is printed as one line per
change.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Details, "details", false, "Print tooltip sections under each status line (non-interactive only)")
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable the interactive view (default: auto-detect)")
	return cmd
}

// liveExclusions reads exclusions from the watcher's current config so
// edits apply from the next refresh on.
type liveExclusions struct {
	w *config.Watcher
}

func (e liveExclusions) IsRepoExcluded(repo string) bool {
	return e.w.Current().IsRepoExcluded(repo)
}

func (e liveExclusions) IsAuthorExcluded(author string) bool {
	return e.w.Current().IsAuthorExcluded(author)
}

// indicatorHost owns the current indicator and replaces it when the
// indicator is enabled again after being disposed.
type indicatorHost struct {
	create func(config.IndicatorSettings) *indicator.Indicator

	mu      sync.Mutex
	current *indicator.Indicator
}

func (h *indicatorHost) start(settings config.IndicatorSettings) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = h.create(settings)
}

func (h *indicatorHost) configurationChanged(e config.ChangeEvent, settings config.IndicatorSettings) {
	if !e.Affects(config.KeyIndicators) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current.Disposed() {
		if settings.Enabled {
			log.Info("status indicator enabled")
			h.current = h.create(settings)
		}
		return
	}
	h.current.OnConfigurationChanged(e, settings)
}

func (h *indicatorHost) dispose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current.Dispose()
}

func runWatch(ctx context.Context, opts *Options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := shouldUseTUI(opts)
	if interactive {
		log.Initialize(opts.Verbosity, io.Discard)
		defer log.Initialize(opts.Verbosity, os.Stderr)
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	watcher := config.NewWatcher(cfg)

	a, err := newApp(ctx, cfg, nil, service.WithExclusions(liveExclusions{w: watcher}))
	if err != nil {
		return err
	}

	events := make(chan tui.Event, 100)
	unsubscribe := a.service.OnDidRefresh(func(e focus.RefreshEvent) {
		tui.SendEvent(events, tui.ItemsEvent{Items: e.Items, At: e.At})
	})
	defer unsubscribe()

	var bar *tui.StatusBar
	host := &indicatorHost{
		create: func(settings config.IndicatorSettings) *indicator.Indicator {
			factory := func() indicator.StatusItem { return newLineItem(opts) }
			if interactive {
				// a disposed bar stays hidden, so each indicator gets its own
				b := tui.NewStatusBar(events)
				bar = b
				factory = func() indicator.StatusItem { return b }
			}
			return indicator.New(ctx, a.service, factory, settings)
		},
	}
	host.start(cfg.GetIndicatorSettings())
	defer host.dispose()

	watcher.OnDidChange(func(e config.ChangeEvent, next *config.Config) {
		log.Debug("config changed", "keys", e.Keys)
		if e.Affects(config.KeyIntegrationsGitHub) || e.Affects(config.KeyIntegrationsGitLab) || e.Affects(config.KeyCloudIntegrations) {
			log.Warn("integration changes apply after restarting watch")
		}
		host.configurationChanged(e, next.GetIndicatorSettings())
	})

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)
	go watcher.Run(ctx, reload, func(err error) {
		log.Warn("failed to reload config", "error", err)
	})

	if !interactive {
		<-ctx.Done()
		return nil
	}

	watchOpts := []tui.WatchOption{
		tui.WithRefresh(func() {
			go func() {
				if err := a.service.Refresh(ctx, true); err != nil {
					log.Warn("refresh failed", "error", err)
				}
			}()
		}),
	}
	if a.snooze != nil {
		watchOpts = append(watchOpts, tui.WithWatchSnoozer(a.snooze))
	}
	return tui.RunWatch(bar, events, watchOpts...)
}

func newLineItem(opts *Options) *indicator.LineItem {
	var lineOpts []indicator.LineOption
	if opts.Details {
		lineOpts = append(lineOpts, indicator.WithDetails())
	}
	return indicator.NewLineItem(os.Stdout, lineOpts...)
}
