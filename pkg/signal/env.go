package signal

import "sync"

// Target is an opaque reference to an observed element. The controller only
// ever hands a target back to its environment to resolve the hosting view;
// nothing in this module inspects it.
type Target any

// MutationOptions selects which structural changes a watcher reports.
type MutationOptions struct {
	// Attributes reports attribute changes on document nodes.
	Attributes bool
	// ChildList reports nodes being added or removed.
	ChildList bool
	// CharacterData reports text content changes.
	CharacterData bool
	// Subtree extends the watch to the full depth of the document.
	Subtree bool
}

// MutationWatcher reports structural document changes to a callback supplied
// at creation time. At most one watcher is live per controller.
type MutationWatcher interface {
	// Observe starts watching doc with the given options.
	Observe(doc Document, opts MutationOptions)
	// Disconnect stops the watcher and releases its resources.
	Disconnect()
}

// View is the signal surface of a window-like host: the thing that resizes.
type View interface {
	// Resize is the view's dimension-change signal.
	Resize() *Source
	// Document returns the document hosted by this view.
	Document() Document
}

// Document is the signal surface of a view's content tree.
type Document interface {
	// TransitionEnd fires when an animated property finishes transitioning.
	// Events carry the property name.
	TransitionEnd() *Source
	// SubtreeModified is the legacy modification signal, used as a fallback
	// when the environment cannot create mutation watchers.
	SubtreeModified() *Source
}

// Environment is the platform seam: it resolves views for targets and
// creates structural mutation watchers when the mechanism is available.
type Environment interface {
	// Capable reports whether native change signals exist at all. When false
	// the controller's connect and disconnect paths are silent no-ops.
	Capable() bool
	// ViewOf resolves the view hosting target.
	ViewOf(target Target) View
	// SupportsMutationWatch reports whether NewMutationWatcher can produce
	// a working watcher. When false, callers fall back to the document's
	// SubtreeModified signal.
	SupportsMutationWatch() bool
	// NewMutationWatcher creates a watcher that invokes fn on every batch of
	// structural changes. Returns nil when the mechanism is unavailable.
	NewMutationWatcher(fn func()) MutationWatcher
}

var (
	defaultMu  sync.RWMutex
	defaultEnv Environment = inertEnvironment{}
)

// SetDefault installs the process-wide default environment used by the
// controller singleton. Pass nil to restore the inert environment.
func SetDefault(env Environment) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if env == nil {
		defaultEnv = inertEnvironment{}
	} else {
		defaultEnv = env
	}
}

// Default returns the process-wide default environment. Unless SetDefault
// was called, it is inert: not capable, resolving no views.
func Default() Environment {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultEnv
}

// inertEnvironment is the no-signal environment used when no platform is
// present. Capable() is false, so controllers never subscribe through it.
type inertEnvironment struct{}

func (inertEnvironment) Capable() bool { return false }

func (inertEnvironment) ViewOf(Target) View { return nil }

func (inertEnvironment) SupportsMutationWatch() bool { return false }

func (inertEnvironment) NewMutationWatcher(func()) MutationWatcher { return nil }
