// Package reflow coordinates re-measurement of observed elements and
// notifies registered observers only when geometry actually changed.
//
// No single native change signal reliably captures every layout-affecting
// change, so the [Controller] listens to several noisy, best-effort ones
// (view resize, structural document mutation, transition completion) and
// folds them into one deduplicated, throttled, convergent refresh protocol.
//
// # Core Components
//
//   - [Controller]: the process-wide coordination singleton. It tracks the
//     set of live [Observer] instances, installs native signal subscriptions
//     exactly once regardless of observer count, and drives the refresh loop.
//
//   - [Observer]: the capability contract an observer collaborator must
//     satisfy. The controller never inspects how an observer measures or
//     stores geometry; it only asks it to gather, report, and broadcast
//     pending changes.
//
//   - [Scheduler] and [Clock]: the timing seam. Production code runs on
//     runtime timers ([SystemScheduler]); tests drive the throttle with a
//     manual scheduler from pkg/testing.
//
// # Refresh Protocol
//
// Any native signal funnels into [Controller.Refresh], which is throttled:
// bursts of signals within the refresh delay collapse into a single trailing
// pass. A pass asks every observer to gather its pending change state, then
// broadcasts for the subset that reported changes. If any observer had
// changes the controller re-enters Refresh, because delivered changes can
// trigger further layout changes (a transition still in flight, for
// example). The loop ends when a pass finds no active observers.
//
// An observer whose HasActive never returns false keeps the loop alive
// indefinitely. The controller does not guard against that; reaching a
// quiescent state is the observer's responsibility.
//
// # Basic Usage
//
//	ctrl := reflow.GetController()
//	ctrl.AddObserver(obs, target)
//	defer ctrl.RemoveObserver(obs, target)
//
// The singleton uses the environment installed via signal.SetDefault. Tests
// construct isolated controllers with [NewController] instead.
package reflow
