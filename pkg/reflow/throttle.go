package reflow

import (
	"sync"
	"time"
)

// throttle coalesces bursts of invocations into single deferred runs.
//
// An Invoke while no run is pending schedules one after the delay; further
// Invokes inside that window collapse into the pending run. The trailing run
// always executes, so no invocation is dropped forever. Invoking from inside
// the callback schedules a fresh run, which is how the refresh loop chains
// passes without unbounded recursion.
type throttle struct {
	sched Scheduler
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	pending bool
}

func newThrottle(sched Scheduler, delay time.Duration, fn func()) *throttle {
	return &throttle{
		sched: sched,
		delay: delay,
		fn:    fn,
	}
}

// Invoke requests a run of fn. At most one run executes per delay window.
func (t *throttle) Invoke() {
	t.mu.Lock()
	if t.pending {
		t.mu.Unlock()
		return
	}
	t.pending = true
	t.mu.Unlock()

	t.sched.AfterFunc(t.delay, t.run)
}

func (t *throttle) run() {
	t.mu.Lock()
	t.pending = false
	t.mu.Unlock()

	t.fn()
}
