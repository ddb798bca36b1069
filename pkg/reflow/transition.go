package reflow

import (
	"strings"

	"github.com/go-drift/reflow/pkg/signal"
)

// defaultTransitionKeywords are matched as substrings of a transitioned
// property name to decide whether the transition could have moved geometry.
// "weight" is not itself a geometry property; it is retained deliberately
// rather than corrected, so existing matching behavior stays put.
var defaultTransitionKeywords = []string{
	"top",
	"right",
	"bottom",
	"left",
	"width",
	"height",
	"size",
	"weight",
}

// DefaultTransitionKeywords returns a copy of the built-in keyword set.
func DefaultTransitionKeywords() []string {
	out := make([]string, len(defaultTransitionKeywords))
	copy(out, defaultTransitionKeywords)
	return out
}

// onTransitionEnd triggers a refresh when the transitioned property could
// plausibly affect element geometry. Events without a property never match.
func (c *Controller) onTransitionEnd(ev signal.Event) {
	property := ev.Property
	for _, keyword := range c.keywords {
		if strings.Contains(property, keyword) {
			c.Refresh()
			return
		}
	}
}
