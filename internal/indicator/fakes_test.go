package indicator

import (
	"context"
	"sync"
	"time"

	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/model"
)

// fakeClock runs timers only when Advance is called.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward, firing due timers in order. Callbacks run
// without the clock lock so they may schedule new timers.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fakeSource counts refresh requests and optionally publishes items.
type fakeSource struct {
	mu        sync.Mutex
	listeners map[int]func(focus.RefreshEvent)
	nextID    int
	refreshes int
	items     []model.Item
	publish   bool
	err       error
}

func newFakeSource() *fakeSource {
	return &fakeSource{listeners: make(map[int]func(focus.RefreshEvent))}
}

func (s *fakeSource) OnDidRefresh(fn func(focus.RefreshEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *fakeSource) Refresh(_ context.Context, _ bool) error {
	s.mu.Lock()
	s.refreshes++
	items, publish, err := s.items, s.publish, s.err
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if publish {
		s.emit(items)
	}
	return nil
}

func (s *fakeSource) emit(items []model.Item) {
	s.mu.Lock()
	fns := make([]func(focus.RefreshEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(focus.RefreshEvent{Items: items})
	}
}

func (s *fakeSource) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

func (s *fakeSource) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// fakeItem records what the indicator pushed to it.
type fakeItem struct {
	mu       sync.Mutex
	text     string
	color    string
	command  string
	tooltip  Tooltip
	shown    bool
	disposed bool
	updates  int
}

func (f *fakeItem) SetText(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	f.updates++
}

func (f *fakeItem) SetTooltip(t Tooltip) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tooltip = t
	f.updates++
}

func (f *fakeItem) SetColor(c string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.color = c
	f.updates++
}

func (f *fakeItem) SetCommand(c string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.command = c
}

func (f *fakeItem) Show() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = true
}

func (f *fakeItem) Dispose() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disposed = true
}

func (f *fakeItem) snapshot() fakeItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeItem{
		text:     f.text,
		color:    f.color,
		command:  f.command,
		tooltip:  f.tooltip,
		shown:    f.shown,
		disposed: f.disposed,
		updates:  f.updates,
	}
}

func makeItem(id string, category model.ActionableCategory) model.Item {
	return model.Item{ID: id, Category: category, Provider: "github", Repository: "o/r"}
}

func eventOf(items ...model.Item) focus.RefreshEvent {
	return focus.RefreshEvent{Items: items}
}
