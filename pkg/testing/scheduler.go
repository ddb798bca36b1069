package testing

import (
	"sort"
	"sync"
	"time"

	"github.com/go-drift/reflow/pkg/reflow"
)

// ManualScheduler implements reflow.Scheduler on virtual time. Callbacks
// queue until the test advances the scheduler past their deadline, which
// makes throttle behavior fully deterministic.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers []*manualTimer
}

// NewManualScheduler creates a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc queues fn to fire once virtual time reaches now+d.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) reflow.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	timer := &manualTimer{
		sched:    s,
		deadline: s.now + d,
		seq:      s.seq,
		fn:       fn,
	}
	s.timers = append(s.timers, timer)
	return timer
}

// Advance moves virtual time forward by d, firing due callbacks in deadline
// order. Callbacks scheduled while advancing fire too if their deadline
// falls inside the window, so a self-rescheduling chain drains as far as the
// window allows.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		timer := s.popDueLocked(target)
		if timer == nil {
			break
		}
		s.now = timer.deadline
		s.mu.Unlock()
		timer.fn()
		s.mu.Lock()
	}
	s.now = target
	s.mu.Unlock()
}

// Pending returns the number of queued callbacks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Now returns the current virtual time offset.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// popDueLocked removes and returns the earliest timer with deadline <=
// target, breaking ties by scheduling order. Returns nil when none is due.
func (s *ManualScheduler) popDueLocked(target time.Duration) *manualTimer {
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].deadline != s.timers[j].deadline {
			return s.timers[i].deadline < s.timers[j].deadline
		}
		return s.timers[i].seq < s.timers[j].seq
	})
	if len(s.timers) == 0 || s.timers[0].deadline > target {
		return nil
	}
	timer := s.timers[0]
	s.timers = s.timers[1:]
	return timer
}

func (s *ManualScheduler) remove(timer *manualTimer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.timers {
		if existing == timer {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return true
		}
	}
	return false
}

type manualTimer struct {
	sched    *ManualScheduler
	deadline time.Duration
	seq      uint64
	fn       func()
}

// Stop removes the timer from the queue. It reports whether the timer was
// still queued.
func (t *manualTimer) Stop() bool {
	return t.sched.remove(t)
}
