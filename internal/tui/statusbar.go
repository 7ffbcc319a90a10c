package tui

import (
	"sync"

	"github.com/spiffcs/focus/internal/indicator"
)

// StatusSnapshot is the visible state of a StatusBar.
type StatusSnapshot struct {
	Text     string
	Color    string
	Tooltip  indicator.Tooltip
	Command  string
	Visible  bool
	Disposed bool
}

// StatusBar is an indicator.StatusItem rendered by the watch view. Every
// change is announced on the event channel.
type StatusBar struct {
	events chan<- Event

	mu    sync.RWMutex
	state StatusSnapshot
}

var _ indicator.StatusItem = (*StatusBar)(nil)

// NewStatusBar creates a hidden status bar that signals changes on events.
func NewStatusBar(events chan<- Event) *StatusBar {
	return &StatusBar{events: events}
}

func (b *StatusBar) update(fn func(s *StatusSnapshot)) {
	b.mu.Lock()
	if b.state.Disposed {
		b.mu.Unlock()
		return
	}
	fn(&b.state)
	b.mu.Unlock()
	SendEvent(b.events, StatusEvent{Bar: b})
}

func (b *StatusBar) SetText(text string) {
	b.update(func(s *StatusSnapshot) { s.Text = text })
}

func (b *StatusBar) SetTooltip(t indicator.Tooltip) {
	b.update(func(s *StatusSnapshot) { s.Tooltip = t })
}

func (b *StatusBar) SetColor(color string) {
	b.update(func(s *StatusSnapshot) { s.Color = color })
}

func (b *StatusBar) SetCommand(command string) {
	b.update(func(s *StatusSnapshot) { s.Command = command })
}

func (b *StatusBar) Show() {
	b.update(func(s *StatusSnapshot) { s.Visible = true })
}

// Dispose hides the bar for good; later setters are ignored.
func (b *StatusBar) Dispose() {
	b.update(func(s *StatusSnapshot) {
		s.Visible = false
		s.Disposed = true
	})
}

// Snapshot returns the current state.
func (b *StatusBar) Snapshot() StatusSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}
