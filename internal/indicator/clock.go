package indicator

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

// Clock schedules callbacks. Tests substitute a manually advanced clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockworkClock struct {
	c clockwork.Clock
}

func (c clockworkClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.c.AfterFunc(d, f)
}

// FromClockwork adapts a clockwork clock. A clockwork.FakeClock runs
// callbacks on their own goroutines when advanced.
func FromClockwork(c clockwork.Clock) Clock {
	return clockworkClock{c: c}
}

// RealClock returns the wall clock.
func RealClock() Clock {
	return FromClockwork(clockwork.NewRealClock())
}
