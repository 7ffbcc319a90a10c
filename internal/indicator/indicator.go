// Package indicator projects the grouped focus items onto a persistent
// status item and keeps it fresh on a timer.
package indicator

import (
	"context"
	"sync"

	"github.com/spiffcs/focus/config"
	"github.com/spiffcs/focus/internal/constants"
	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/log"
)

// Phase is the indicator lifecycle stage.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
	PhaseDisposed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseDisposed:
		return "disposed"
	default:
		return "uninitialized"
	}
}

// StatusItem is a persistent status element owned by the indicator.
type StatusItem interface {
	SetText(text string)
	SetTooltip(t Tooltip)
	SetColor(color string)
	SetCommand(command string)
	Show()
	Dispose()
}

// StatusItemFactory creates the status item on activation.
type StatusItemFactory func() StatusItem

// Source delivers refresh events and accepts refresh requests.
type Source interface {
	// OnDidRefresh registers a listener and returns its unsubscribe func.
	OnDidRefresh(fn func(focus.RefreshEvent)) func()
	Refresh(ctx context.Context, force bool) error
}

// Indicator keeps a status item in sync with the focus source.
type Indicator struct {
	ctx       context.Context
	source    Source
	clock     Clock
	newItem   StatusItemFactory
	scheduler *Scheduler
	// spawn runs fetches off the calling goroutine.
	spawn func(func())

	mu          sync.Mutex
	settings    config.IndicatorSettings
	item        StatusItem
	startup     Timer
	unsubscribe func()
	phase       Phase
	state       State
	closed      bool
}

// Option is a functional option for configuring an Indicator.
type Option func(*Indicator)

// WithClock replaces the real clock.
func WithClock(c Clock) Option {
	return func(i *Indicator) {
		i.clock = c
	}
}

// New creates the indicator. When settings.Enabled is false the indicator
// stays inert until a config change enables it.
func New(ctx context.Context, source Source, newItem StatusItemFactory, settings config.IndicatorSettings, opts ...Option) *Indicator {
	i := &Indicator{
		ctx:      ctx,
		source:   source,
		clock:    RealClock(),
		newItem:  newItem,
		settings: settings,
		spawn:    func(f func()) { go f() },
	}
	for _, opt := range opts {
		opt(i)
	}
	i.scheduler = NewScheduler(i.clock, i.refresh)

	if settings.Enabled {
		i.mu.Lock()
		i.activate()
		i.mu.Unlock()
	}
	return i
}

// activate must be called with i.mu held.
func (i *Indicator) activate() {
	item := i.newItem()
	i.item = item
	i.phase = PhaseLoading
	i.state = LoadingState()

	item.SetText(i.state.Text)
	item.SetTooltip(i.state.Tooltip)
	item.SetCommand(CommandFor(i.settings))
	item.Show()

	i.unsubscribe = i.source.OnDidRefresh(i.onRefreshed)
	i.startup = i.clock.AfterFunc(constants.IndicatorStartupDelay, i.startRefreshing)
	log.Debug("focus indicator activated", "refreshRate", i.settings.RefreshRate)
}

// CommandFor returns the command the status item runs when clicked.
func CommandFor(s config.IndicatorSettings) string {
	if s.OpenQuickFocus {
		return CommandQuickFocus
	}
	return CommandShowFocusPage
}

func (i *Indicator) refresh() {
	i.spawn(func() {
		if err := i.source.Refresh(i.ctx, true); err != nil {
			log.Warn("focus refresh failed", "error", err)
		}
	})
}

func (i *Indicator) startRefreshing() {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return
	}
	i.startup = nil
	rate := i.settings.RefreshRate
	i.mu.Unlock()

	i.reschedule(rate)
	if rate <= 0 {
		// polling is off but the first load still happens once
		i.refresh()
	}
}

// reschedule must be called without i.mu held: an immediate refresh may
// deliver an event synchronously.
func (i *Indicator) reschedule(rate int) {
	i.scheduler.Reschedule(rate)

	i.mu.Lock()
	closed := i.closed
	i.mu.Unlock()
	if closed {
		i.scheduler.Stop()
	}
}

func (i *Indicator) onRefreshed(e focus.RefreshEvent) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed || i.item == nil {
		return
	}

	st := Project(focus.GroupItems(e.Items))
	i.item.SetText(st.Text)
	i.item.SetTooltip(st.Tooltip)
	i.item.SetColor(st.Color)
	i.state = st
	i.phase = PhaseReady
	log.Debug("focus indicator updated", "items", len(e.Items), "text", st.Text)
}

// OnConfigurationChanged applies indicator setting changes. Events that do
// not touch the indicator keys are ignored.
func (i *Indicator) OnConfigurationChanged(e config.ChangeEvent, s config.IndicatorSettings) {
	if !e.Affects(config.KeyIndicators) {
		return
	}

	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return
	}
	i.settings = s

	if e.Affects(config.KeyIndicatorsEnabled) {
		if !s.Enabled {
			i.mu.Unlock()
			i.Dispose()
			return
		}
		if i.item == nil {
			i.activate()
			i.mu.Unlock()
			return
		}
	}

	if i.item == nil {
		i.mu.Unlock()
		return
	}
	if e.Affects(config.KeyIndicatorsOpenQuickFocus) {
		i.item.SetCommand(CommandFor(s))
	}
	rateChanged := e.Affects(config.KeyIndicatorsRefreshRate)
	i.mu.Unlock()

	if rateChanged {
		i.reschedule(s.RefreshRate)
	}
}

// Dispose tears down the timer, the subscription, and the status item.
// Later refresh events and timer callbacks are no-ops.
func (i *Indicator) Dispose() {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return
	}
	i.closed = true
	i.phase = PhaseDisposed
	startup, item, unsubscribe := i.startup, i.item, i.unsubscribe
	i.startup, i.item, i.unsubscribe = nil, nil, nil
	i.mu.Unlock()

	if startup != nil {
		startup.Stop()
	}
	i.scheduler.Stop()
	if unsubscribe != nil {
		unsubscribe()
	}
	if item != nil {
		item.Dispose()
	}
	log.Debug("focus indicator disposed")
}

// Phase returns the current lifecycle stage.
func (i *Indicator) Phase() Phase {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.phase
}

// State returns the last state pushed to the status item.
func (i *Indicator) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Disposed reports whether Dispose has run.
func (i *Indicator) Disposed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.closed
}
