package tui

import (
	"time"

	"github.com/spiffcs/focus/internal/model"
)

// TaskID identifies a task in the TUI progress display.
type TaskID int

const (
	TaskSessions TaskID = iota // Resolving integration sessions
	TaskFetch                  // Fetching pull requests from every provider
	TaskGroup                  // Categorizing and grouping
)

// TaskStatus represents the current status of a task.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusRunning
	StatusComplete
	StatusError
	StatusSkipped
)

// Event is the interface for all TUI events.
type Event interface {
	isEvent()
}

// TaskEvent represents an update to a task's status.
type TaskEvent struct {
	Task     TaskID
	Status   TaskStatus
	Message  string  // Optional message (e.g., "1/2 providers")
	Count    int     // Count of items
	Progress float64 // Progress from 0.0 to 1.0
	Error    error   // Error if status is StatusError
}

func (TaskEvent) isEvent() {}

// DoneEvent signals that all work is complete.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}

// RateLimitEvent reports that a provider is rate limited.
type RateLimitEvent struct {
	Limited bool
	ResetAt time.Time
}

func (RateLimitEvent) isEvent() {}

// StatusEvent signals that a status bar changed. Receivers read the
// current state from Bar, so dropped signals lose nothing. A nil Bar means
// the bar already being watched.
type StatusEvent struct {
	Bar *StatusBar
}

func (StatusEvent) isEvent() {}

// ItemsEvent carries the item set of a completed refresh.
type ItemsEvent struct {
	Items []model.Item
	At    time.Time
}

func (ItemsEvent) isEvent() {}
