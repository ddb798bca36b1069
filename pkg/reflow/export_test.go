package reflow

import "github.com/go-drift/reflow/pkg/signal"

// RunPass runs a single gather/broadcast pass, bypassing the throttle.
func (c *Controller) RunPass() bool {
	return c.updateObservers()
}

// FireTransitionEnd feeds an event straight into the transition filter.
func (c *Controller) FireTransitionEnd(ev signal.Event) {
	c.onTransitionEnd(ev)
}
