// Package main runs scripted refresh scenarios against an in-memory
// environment. It loads a YAML scenario, drives the controller through the
// scripted signals on a virtual clock, and prints every pass along with a
// per-observer summary.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-drift/reflow/cmd/reflow-sim/internal/scenario"
	"github.com/go-drift/reflow/pkg/reflow"
	"github.com/go-drift/reflow/pkg/signal"
	reflowtest "github.com/go-drift/reflow/pkg/testing"
)

// simObserver reports pending changes on the scripted pass numbers.
type simObserver struct {
	name       string
	activeOn   map[int]bool
	gathers    int
	broadcasts int
}

func newSimObserver(spec scenario.Observer) *simObserver {
	activeOn := make(map[int]bool, len(spec.ActivePasses))
	for _, pass := range spec.ActivePasses {
		activeOn[pass] = true
	}
	return &simObserver{name: spec.Name, activeOn: activeOn}
}

func (o *simObserver) GatherActive()   { o.gathers++ }
func (o *simObserver) HasActive() bool { return o.activeOn[o.gathers] }
func (o *simObserver) BroadcastActive() {
	o.broadcasts++
}

func main() {
	legacy := flag.Bool("legacy", false, "disable mutation watching to exercise the fallback signal path")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: reflow-sim [flags] <scenario.yaml>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	sc, err := scenario.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(sc, *legacy); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(sc *scenario.Scenario, legacy bool) error {
	env := signal.NewMemoryEnvironment()
	if legacy {
		env.SetMutationWatchSupported(false)
	}
	sched := reflowtest.NewManualScheduler()

	delay := reflow.DefaultRefreshDelay
	if sc.RefreshDelayMs > 0 {
		delay = time.Duration(sc.RefreshDelayMs) * time.Millisecond
	}

	ctrl := reflow.NewController(reflow.Config{
		Environment:  env,
		Scheduler:    sched,
		Clock:        reflowtest.NewFakeClock(),
		RefreshDelay: delay,
	})
	ctrl.SetTraceFunc(func(trace reflow.PassTrace) {
		fmt.Printf("pass %d: observers=%d active=%d\n", trace.Seq, trace.Observers, trace.Active)
	})

	observers := make([]*simObserver, 0, len(sc.Observers))
	for _, spec := range sc.Observers {
		observer := newSimObserver(spec)
		observers = append(observers, observer)
		ctrl.AddObserver(observer, spec.Name)
	}

	view := env.RootView()
	for i, step := range sc.Steps {
		switch {
		case step.Refresh:
			fmt.Printf("step %d: refresh\n", i+1)
			ctrl.Refresh()
		case step.Resize:
			fmt.Printf("step %d: resize\n", i+1)
			view.EmitResize()
		case step.TransitionEnd != "":
			fmt.Printf("step %d: transition end %q\n", i+1, step.TransitionEnd)
			view.Doc().EmitTransitionEnd(step.TransitionEnd)
		case step.Mutate:
			fmt.Printf("step %d: mutate\n", i+1)
			view.Doc().Mutate()
		case step.AdvanceMs > 0:
			fmt.Printf("step %d: advance %dms\n", i+1, step.AdvanceMs)
			sched.Advance(time.Duration(step.AdvanceMs) * time.Millisecond)
		}
	}

	// Drain any refresh still pending after the last step.
	sched.Advance(100 * delay)

	snapshot := ctrl.TakeSnapshot()
	fmt.Printf("\nscenario %q: %d passes, %d with changes\n", sc.Name, snapshot.Passes, snapshot.ActivePasses)
	for _, observer := range observers {
		fmt.Printf("  %-12s gathers=%d broadcasts=%d\n", observer.name, observer.gathers, observer.broadcasts)
	}
	return nil
}
