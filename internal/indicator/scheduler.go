package indicator

import (
	"sync"
	"time"

	"github.com/spiffcs/focus/internal/log"
)

// Scheduler owns the single recurring refresh timer. Reschedule is the only
// way to change it.
type Scheduler struct {
	clock   Clock
	refresh func()

	mu       sync.Mutex
	timer    Timer
	interval time.Duration
	// gen invalidates callbacks of timers that were replaced or stopped
	// after they already started firing.
	gen uint64
}

// NewScheduler creates a stopped scheduler. refresh must not block; it is
// called from timer goroutines.
func NewScheduler(clock Clock, refresh func()) *Scheduler {
	return &Scheduler{clock: clock, refresh: refresh}
}

// Reschedule cancels any existing timer and installs a recurring one that
// fires every minutes. A non-positive value leaves the scheduler stopped.
// When no timer was active before the call, one refresh runs immediately.
func (s *Scheduler) Reschedule(minutes int) {
	s.mu.Lock()
	refreshNow := s.timer == nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++

	interval := time.Duration(minutes) * time.Minute
	if interval <= 0 {
		s.interval = 0
		s.mu.Unlock()
		log.Debug("refresh timer disabled", "refreshRate", minutes)
		return
	}

	s.interval = interval
	s.arm(s.gen)
	s.mu.Unlock()

	log.Debug("refresh timer installed", "interval", interval, "refreshNow", refreshNow)
	if refreshNow {
		s.refresh()
	}
}

// Stop cancels the timer. It is safe to call repeatedly.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.interval = 0
	s.gen++
}

// Active reports whether a recurring timer is installed.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Interval returns the current period, or zero when stopped.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// arm must be called with s.mu held.
func (s *Scheduler) arm(gen uint64) {
	s.timer = s.clock.AfterFunc(s.interval, func() { s.tick(gen) })
}

func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.arm(gen)
	s.mu.Unlock()

	log.Trace("refresh timer fired")
	s.refresh()
}
