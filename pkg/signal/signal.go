// Package signal abstracts the native change-notification surface that the
// reflow controller subscribes to.
//
// # Model
//
// An [Environment] resolves the [View] hosting an observed target and exposes
// the change signals the platform can deliver:
//
//   - [View.Resize] fires when the view's dimensions change.
//   - [Document.TransitionEnd] fires when an animated property finishes
//     transitioning; the event carries the property name.
//   - [MutationWatcher] reports structural document changes (attributes,
//     child list, character data) at full subtree depth.
//   - [Document.SubtreeModified] is the legacy per-document modification
//     signal, used only when the environment cannot create mutation watchers.
//
// Signals fan out through [Source], a small subscription hub: handlers attach
// via [Source.Listen] and detach by canceling the returned [Subscription].
//
// The package ships a complete in-memory implementation ([MemoryEnvironment])
// for tests and simulation; pkg/fsenv provides a filesystem-backed one.
package signal

import (
	"sync"
	"sync/atomic"

	"github.com/go-drift/reflow/pkg/errors"
)

// Event carries the payload of a native change notification.
type Event struct {
	// Property is the style property name for transition-completion events.
	// Empty for resize and structural events.
	Property string
}

// Handler receives events from a Source.
type Handler func(Event)

// Subscription represents an active attachment of a handler to a Source.
type Subscription struct {
	source   *Source
	handler  Handler
	canceled atomic.Bool
}

// Cancel detaches the handler from its source. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s.canceled.CompareAndSwap(false, true) {
		s.source.removeSubscription(s)
	}
}

// IsCanceled returns true if this subscription has been canceled.
func (s *Subscription) IsCanceled() bool {
	return s.canceled.Load()
}

// Source fans events out to attached handlers.
type Source struct {
	name          string
	subscriptions []*Subscription
	mu            sync.Mutex
}

// NewSource creates a source with the given name. The name appears in error
// reports and inspection snapshots.
func NewSource(name string) *Source {
	return &Source{name: name}
}

// Name returns the source name.
func (s *Source) Name() string {
	return s.name
}

// Listen attaches a handler and returns its subscription handle.
func (s *Source) Listen(handler Handler) *Subscription {
	sub := &Subscription{
		source:  s,
		handler: handler,
	}
	s.mu.Lock()
	s.subscriptions = append(s.subscriptions, sub)
	s.mu.Unlock()
	return sub
}

// HasListeners reports whether any subscription is attached.
func (s *Source) HasListeners() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscriptions) > 0
}

// removeSubscription removes a subscription from the source.
func (s *Source) removeSubscription(sub *Subscription) {
	s.mu.Lock()
	for i, existing := range s.subscriptions {
		if existing == sub {
			s.subscriptions = append(s.subscriptions[:i], s.subscriptions[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
}

// Emit delivers ev to every attached handler. A panicking handler is reported
// through pkg/errors and does not prevent delivery to the remaining handlers.
func (s *Source) Emit(ev Event) {
	s.mu.Lock()
	subs := make([]*Subscription, len(s.subscriptions))
	copy(subs, s.subscriptions)
	s.mu.Unlock()

	for _, sub := range subs {
		if sub.IsCanceled() || sub.handler == nil {
			continue
		}
		s.dispatch(sub, ev)
	}
}

func (s *Source) dispatch(sub *Subscription, ev Event) {
	defer errors.Recover("signal.Source.Emit(" + s.name + ")")
	sub.handler(ev)
}
