// Package tui implements the terminal views of focus: fetch progress, the
// watch status bar and the quick focus view.
package tui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spiffcs/focus/internal/model"
	"golang.org/x/term"
)

// Run shows fetch progress inline and blocks until the event channel is
// closed or a DoneEvent arrives.
func Run(events <-chan Event) error {
	p := tea.NewProgram(NewModel(events))
	_, err := p.Run()
	return err
}

// RunQuick starts the quick focus view over items.
func RunQuick(items []model.Item, opts ...QuickOption) error {
	p := tea.NewProgram(NewQuickModel(items, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RunWatch starts the watch view and blocks until the user quits.
func RunWatch(bar *StatusBar, events <-chan Event, opts ...WatchOption) error {
	p := tea.NewProgram(NewWatchModel(bar, events, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// ciVars are environment variables set by common CI systems.
var ciVars = []string{
	"CI",
	"GITHUB_ACTIONS",
	"JENKINS_URL",
	"TRAVIS",
	"CIRCLECI",
	"GITLAB_CI",
	"BUILDKITE",
}

// ShouldUseTUI reports whether stdout is an interactive terminal outside CI.
func ShouldUseTUI() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return false
		}
	}
	return true
}

// SendEvent sends without blocking; the event is dropped when ch is full.
func SendEvent(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- e:
	default:
	}
}

// SendTaskEvent is a convenience function for sending task events.
func SendTaskEvent(ch chan<- Event, task TaskID, status TaskStatus, opts ...TaskEventOption) {
	e := TaskEvent{Task: task, Status: status}
	for _, opt := range opts {
		opt(&e)
	}
	SendEvent(ch, e)
}

// TaskEventOption is a functional option for TaskEvent.
type TaskEventOption func(*TaskEvent)

// WithMessage sets the message on a TaskEvent.
func WithMessage(msg string) TaskEventOption {
	return func(e *TaskEvent) {
		e.Message = msg
	}
}

// WithCount sets the count on a TaskEvent.
func WithCount(count int) TaskEventOption {
	return func(e *TaskEvent) {
		e.Count = count
	}
}

// WithProgress sets the progress on a TaskEvent.
func WithProgress(progress float64) TaskEventOption {
	return func(e *TaskEvent) {
		e.Progress = progress
	}
}

// WithError sets the error on a TaskEvent.
func WithError(err error) TaskEventOption {
	return func(e *TaskEvent) {
		e.Error = err
	}
}
