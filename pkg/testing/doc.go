// Package testing provides deterministic time and scheduling tools for
// testing reflow controllers.
//
// # Quick Start
//
// Drive a controller on a manual scheduler and advance virtual time to fire
// the throttle:
//
//	func TestRefresh(t *testing.T) {
//	    sched := reflowtest.NewManualScheduler()
//	    ctrl := reflow.NewController(reflow.Config{
//	        Environment: signal.NewMemoryEnvironment(),
//	        Scheduler:   sched,
//	    })
//
//	    ctrl.Refresh()
//	    sched.Advance(reflow.DefaultRefreshDelay)
//	}
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import reflowtest "github.com/go-drift/reflow/pkg/testing"
package testing
