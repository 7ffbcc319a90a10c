package indicator

import (
	"sync/atomic"
	"testing"
	"time"
)

func newTestScheduler() (*Scheduler, *fakeClock, *atomic.Int32) {
	clock := &fakeClock{}
	var fetches atomic.Int32
	s := NewScheduler(clock, func() { fetches.Add(1) })
	return s, clock, &fetches
}

func TestScheduler_FirstPositiveFetchesImmediately(t *testing.T) {
	s, clock, fetches := newTestScheduler()

	s.Reschedule(5)

	if got := fetches.Load(); got != 1 {
		t.Errorf("fetches after first Reschedule = %d, want 1", got)
	}
	if !s.Active() {
		t.Error("Active() = false, want true")
	}
	if s.Interval() != 5*time.Minute {
		t.Errorf("Interval() = %v, want 5m", s.Interval())
	}
	if clock.Pending() != 1 {
		t.Errorf("pending timers = %d, want 1", clock.Pending())
	}

	clock.Advance(5 * time.Minute)
	if got := fetches.Load(); got != 2 {
		t.Errorf("fetches after one interval = %d, want 2", got)
	}

	clock.Advance(10 * time.Minute)
	if got := fetches.Load(); got != 4 {
		t.Errorf("fetches after three intervals = %d, want 4", got)
	}
	if clock.Pending() != 1 {
		t.Errorf("pending timers = %d, want exactly 1", clock.Pending())
	}
}

func TestScheduler_PositiveToPositiveDoesNotFetch(t *testing.T) {
	s, clock, fetches := newTestScheduler()

	s.Reschedule(5)
	s.Reschedule(1)

	if got := fetches.Load(); got != 1 {
		t.Errorf("fetches = %d, want 1 (no extra fetch on reconfigure)", got)
	}
	if clock.Pending() != 1 {
		t.Errorf("pending timers = %d, want 1", clock.Pending())
	}
	if s.Interval() != time.Minute {
		t.Errorf("Interval() = %v, want 1m", s.Interval())
	}

	clock.Advance(time.Minute)
	if got := fetches.Load(); got != 2 {
		t.Errorf("fetches after new interval = %d, want 2", got)
	}

	// the old 5m timer must not fire
	clock.Advance(4 * time.Minute)
	if got := fetches.Load(); got != 6 {
		t.Errorf("fetches after 5m total = %d, want 6", got)
	}
}

func TestScheduler_ZeroAfterActiveCancels(t *testing.T) {
	s, clock, fetches := newTestScheduler()

	s.Reschedule(5)
	s.Reschedule(0)

	if s.Active() {
		t.Error("Active() = true after Reschedule(0)")
	}
	if clock.Pending() != 0 {
		t.Errorf("pending timers = %d, want 0", clock.Pending())
	}

	clock.Advance(time.Hour)
	if got := fetches.Load(); got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}
}

func TestScheduler_NonPositiveNeverStarts(t *testing.T) {
	for _, minutes := range []int{0, -3} {
		s, clock, fetches := newTestScheduler()
		s.Reschedule(minutes)

		clock.Advance(time.Hour)
		if fetches.Load() != 0 || s.Active() || clock.Pending() != 0 {
			t.Errorf("Reschedule(%d): fetches=%d active=%v pending=%d, want nothing",
				minutes, fetches.Load(), s.Active(), clock.Pending())
		}
	}
}

func TestScheduler_ReenableAfterZeroFetchesAgain(t *testing.T) {
	s, _, fetches := newTestScheduler()

	s.Reschedule(5)
	s.Reschedule(0)
	s.Reschedule(5)

	if got := fetches.Load(); got != 2 {
		t.Errorf("fetches = %d, want 2", got)
	}
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s, clock, fetches := newTestScheduler()

	s.Reschedule(1)
	s.Stop()
	s.Stop()

	clock.Advance(10 * time.Minute)
	if got := fetches.Load(); got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}
	if s.Active() {
		t.Error("Active() = true after Stop")
	}
}

func TestScheduler_StaleCallbackIgnored(t *testing.T) {
	clock := &fakeClock{}
	var fetches atomic.Int32
	s := NewScheduler(clock, func() { fetches.Add(1) })

	s.Reschedule(1)
	stale := clock.timers[0].f

	s.Reschedule(2)
	stale()

	if got := fetches.Load(); got != 1 {
		t.Errorf("fetches = %d, want 1 (stale tick ignored)", got)
	}
	if clock.Pending() != 1 {
		t.Errorf("pending timers = %d, want 1", clock.Pending())
	}
}
