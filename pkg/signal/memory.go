package signal

import "sync"

// MemoryEnvironment is a fully in-memory Environment for tests and
// simulation. It hosts one or more MemoryViews, resolves targets to them,
// and lets callers fire any signal by hand.
//
// By default every target resolves to the root view and mutation watching is
// supported; both are adjustable to exercise the fallback paths.
type MemoryEnvironment struct {
	mu            sync.Mutex
	root          *MemoryView
	bindings      map[Target]*MemoryView
	mutationWatch bool
}

// NewMemoryEnvironment creates an environment with a single root view and
// mutation watching enabled.
func NewMemoryEnvironment() *MemoryEnvironment {
	return &MemoryEnvironment{
		root:          NewMemoryView(),
		mutationWatch: true,
	}
}

// RootView returns the environment's root view.
func (e *MemoryEnvironment) RootView() *MemoryView {
	return e.root
}

// BindTarget makes target resolve to view instead of the root view.
func (e *MemoryEnvironment) BindTarget(target Target, view *MemoryView) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bindings == nil {
		e.bindings = make(map[Target]*MemoryView)
	}
	e.bindings[target] = view
}

// SetMutationWatchSupported toggles availability of the structural watch
// mechanism, forcing the legacy fallback when disabled.
func (e *MemoryEnvironment) SetMutationWatchSupported(ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mutationWatch = ok
}

// Capable always reports true: a memory environment can deliver signals.
func (e *MemoryEnvironment) Capable() bool { return true }

// ViewOf resolves target to its bound view, defaulting to the root view.
func (e *MemoryEnvironment) ViewOf(target Target) View {
	e.mu.Lock()
	defer e.mu.Unlock()
	if view, ok := e.bindings[target]; ok {
		return view
	}
	return e.root
}

// SupportsMutationWatch reports the configured watch availability.
func (e *MemoryEnvironment) SupportsMutationWatch() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mutationWatch
}

// NewMutationWatcher creates an in-memory watcher, or nil when mutation
// watching has been disabled.
func (e *MemoryEnvironment) NewMutationWatcher(fn func()) MutationWatcher {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.mutationWatch {
		return nil
	}
	return &memoryWatcher{fn: fn}
}

// MemoryView is an in-memory View whose signals are fired by the caller.
type MemoryView struct {
	resize *Source
	doc    *MemoryDocument
}

// NewMemoryView creates a view with an empty document.
func NewMemoryView() *MemoryView {
	return &MemoryView{
		resize: NewSource("resize"),
		doc:    NewMemoryDocument(),
	}
}

// Resize returns the view's dimension-change signal.
func (v *MemoryView) Resize() *Source { return v.resize }

// Document returns the view's document.
func (v *MemoryView) Document() Document { return v.doc }

// Doc returns the concrete document, for callers that need to fire signals.
func (v *MemoryView) Doc() *MemoryDocument { return v.doc }

// EmitResize fires the view's resize signal.
func (v *MemoryView) EmitResize() {
	v.resize.Emit(Event{})
}

// MemoryDocument is an in-memory Document. Mutate simulates a structural
// change: it notifies live watchers and fires the legacy subtree signal,
// matching platforms where both mechanisms observe the same change.
type MemoryDocument struct {
	transition *Source
	subtree    *Source

	mu       sync.Mutex
	watchers []*memoryWatcher
}

// NewMemoryDocument creates an empty document.
func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{
		transition: NewSource("transitionend"),
		subtree:    NewSource("subtree-modified"),
	}
}

// TransitionEnd returns the document's transition-completion signal.
func (d *MemoryDocument) TransitionEnd() *Source { return d.transition }

// SubtreeModified returns the document's legacy modification signal.
func (d *MemoryDocument) SubtreeModified() *Source { return d.subtree }

// EmitTransitionEnd fires a transition-completion event for property.
func (d *MemoryDocument) EmitTransitionEnd(property string) {
	d.transition.Emit(Event{Property: property})
}

// Mutate simulates a structural document change.
func (d *MemoryDocument) Mutate() {
	d.mu.Lock()
	watchers := make([]*memoryWatcher, len(d.watchers))
	copy(watchers, d.watchers)
	d.mu.Unlock()

	for _, w := range watchers {
		w.notify()
	}
	d.subtree.Emit(Event{})
}

// WatcherCount returns the number of live watchers attached to the document.
func (d *MemoryDocument) WatcherCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.watchers)
}

func (d *MemoryDocument) attach(w *memoryWatcher) {
	d.mu.Lock()
	d.watchers = append(d.watchers, w)
	d.mu.Unlock()
}

func (d *MemoryDocument) detach(w *memoryWatcher) {
	d.mu.Lock()
	for i, existing := range d.watchers {
		if existing == w {
			d.watchers = append(d.watchers[:i], d.watchers[i+1:]...)
			break
		}
	}
	d.mu.Unlock()
}

// memoryWatcher is the in-memory MutationWatcher.
type memoryWatcher struct {
	fn   func()
	mu   sync.Mutex
	doc  *MemoryDocument
	opts MutationOptions
}

func (w *memoryWatcher) Observe(doc Document, opts MutationOptions) {
	memDoc, ok := doc.(*MemoryDocument)
	if !ok {
		return
	}
	w.mu.Lock()
	if w.doc != nil {
		w.doc.detach(w)
	}
	w.doc = memDoc
	w.opts = opts
	w.mu.Unlock()
	memDoc.attach(w)
}

func (w *memoryWatcher) Disconnect() {
	w.mu.Lock()
	doc := w.doc
	w.doc = nil
	w.mu.Unlock()
	if doc != nil {
		doc.detach(w)
	}
}

func (w *memoryWatcher) notify() {
	w.mu.Lock()
	attached := w.doc != nil
	fn := w.fn
	w.mu.Unlock()
	if attached && fn != nil {
		fn()
	}
}
