// Package scenario loads simulation scripts for the reflow-sim tool.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario describes one simulation run: a set of scripted observers and a
// sequence of steps driving the controller.
type Scenario struct {
	Name           string     `yaml:"name"`
	RefreshDelayMs int        `yaml:"refreshDelayMs,omitempty"`
	Observers      []Observer `yaml:"observers"`
	Steps          []Step     `yaml:"steps"`
}

// Observer scripts one registered observer. ActivePasses lists the pass
// numbers (1-based, counted per observer) on which it reports pending
// changes.
type Observer struct {
	Name         string `yaml:"name"`
	ActivePasses []int  `yaml:"activePasses,omitempty"`
}

// Step is one scripted action. Exactly one field may be set.
type Step struct {
	// Refresh requests a refresh pass directly.
	Refresh bool `yaml:"refresh,omitempty"`
	// Resize emits a window resize signal.
	Resize bool `yaml:"resize,omitempty"`
	// TransitionEnd emits a transition-end signal for the named property.
	TransitionEnd string `yaml:"transitionEnd,omitempty"`
	// Mutate simulates a structural document mutation.
	Mutate bool `yaml:"mutate,omitempty"`
	// AdvanceMs advances simulated time, firing due refresh timers.
	AdvanceMs int `yaml:"advanceMs,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if len(s.Observers) == 0 {
		return fmt.Errorf("scenario %q has no observers", s.Name)
	}
	if s.RefreshDelayMs < 0 {
		return fmt.Errorf("refreshDelayMs must not be negative (got %d)", s.RefreshDelayMs)
	}
	seen := make(map[string]bool)
	for i, observer := range s.Observers {
		if observer.Name == "" {
			return fmt.Errorf("observer %d has no name", i)
		}
		if seen[observer.Name] {
			return fmt.Errorf("duplicate observer name %q", observer.Name)
		}
		seen[observer.Name] = true
		for _, pass := range observer.ActivePasses {
			if pass < 1 {
				return fmt.Errorf("observer %q: pass numbers are 1-based (got %d)", observer.Name, pass)
			}
		}
	}
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (s *Step) validate() error {
	count := 0
	if s.Refresh {
		count++
	}
	if s.Resize {
		count++
	}
	if s.TransitionEnd != "" {
		count++
	}
	if s.Mutate {
		count++
	}
	if s.AdvanceMs != 0 {
		count++
	}
	if s.AdvanceMs < 0 {
		return fmt.Errorf("advanceMs must not be negative (got %d)", s.AdvanceMs)
	}
	if count == 0 {
		return fmt.Errorf("empty step")
	}
	if count > 1 {
		return fmt.Errorf("multiple actions in one step")
	}
	return nil
}
