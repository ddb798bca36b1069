package reflow

import "time"

// Clock provides time for pass traces. The default implementation uses
// system time. Tests can inject a fake clock through [Config] to control
// timestamps deterministically.
type Clock interface {
	Now() time.Time
}

// systemClock uses system time.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Timer is a handle to a pending scheduler callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer before it ran.
	Stop() bool
}

// Scheduler defers work, mirroring time.AfterFunc. The throttle runs on a
// Scheduler so any cooperative single-threaded driver can host it.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// SystemScheduler schedules callbacks on the runtime timer heap.
type SystemScheduler struct{}

// AfterFunc schedules fn after d on a runtime timer.
func (SystemScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
