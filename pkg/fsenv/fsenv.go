// Package fsenv provides a signal.Environment backed by the filesystem.
//
// A directory tree plays the role of a document: file and directory changes
// are its structural mutations. Mutation watching rides on fsnotify; when an
// fsnotify watcher cannot be created the environment reports the mechanism
// as unsupported and feeds the document's legacy subtree signal from a
// modification-time poller instead, so the controller's fallback path works
// against a real platform.
//
// There is no native resize analog, so the view's resize signal exists but
// never fires on its own. Callers simulating viewport changes can emit it by
// hand.
package fsenv

import (
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/go-drift/reflow/pkg/signal"
)

// DefaultPollInterval is the legacy poller's scan cadence.
const DefaultPollInterval = 500 * time.Millisecond

// Environment is a filesystem-backed signal.Environment rooted at one
// directory. Every target resolves to the root view.
type Environment struct {
	view      *View
	supported bool

	mu     sync.Mutex
	poller *poller
	closed bool
}

// New creates an environment whose document is the tree rooted at root.
// Watch capability is probed once at construction; when unavailable, a
// legacy poller feeds the document's subtree signal at DefaultPollInterval.
func New(root string) *Environment {
	env := &Environment{
		view:      newView(root),
		supported: probeWatchSupport(),
	}
	if !env.supported {
		env.startPoller(DefaultPollInterval)
	}
	return env
}

// probeWatchSupport checks whether fsnotify watchers can be created, which
// fails on platforms without inotify/kqueue resources.
func probeWatchSupport() bool {
	probe, err := fsnotify.NewWatcher()
	if err != nil {
		return false
	}
	probe.Close()
	return true
}

// Capable reports true: a filesystem always delivers change signals, by
// watcher or by poller.
func (e *Environment) Capable() bool { return true }

// ViewOf resolves every target to the root view.
func (e *Environment) ViewOf(signal.Target) signal.View { return e.view }

// View returns the environment's root view.
func (e *Environment) View() *View { return e.view }

// SupportsMutationWatch reports whether fsnotify watchers are available.
func (e *Environment) SupportsMutationWatch() bool { return e.supported }

// NewMutationWatcher creates an fsnotify-backed watcher, or nil when the
// mechanism is unsupported.
func (e *Environment) NewMutationWatcher(fn func()) signal.MutationWatcher {
	if !e.supported {
		return nil
	}
	return &Watcher{fn: fn}
}

// Close stops the legacy poller if one is running. Live watchers are owned
// by their creator and disconnect separately.
func (e *Environment) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	if e.poller != nil {
		e.poller.stop()
		e.poller = nil
	}
}

func (e *Environment) startPoller(interval time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.poller != nil {
		return
	}
	e.poller = newPoller(e.view.doc, interval)
}

// View is the filesystem View. It hosts one Document and a resize signal
// that only fires when emitted by the caller.
type View struct {
	resize *signal.Source
	doc    *Document
}

func newView(root string) *View {
	return &View{
		resize: signal.NewSource("fs-resize"),
		doc:    newDocument(root),
	}
}

// Resize returns the view's resize signal.
func (v *View) Resize() *signal.Source { return v.resize }

// Document returns the view's document.
func (v *View) Document() signal.Document { return v.doc }

// Doc returns the concrete document.
func (v *View) Doc() *Document { return v.doc }

// Document is the filesystem Document: the directory tree rooted at Root.
type Document struct {
	root       string
	transition *signal.Source
	subtree    *signal.Source
}

func newDocument(root string) *Document {
	return &Document{
		root:       root,
		transition: signal.NewSource("fs-transitionend"),
		subtree:    signal.NewSource("fs-subtree-modified"),
	}
}

// Root returns the document's root directory.
func (d *Document) Root() string { return d.root }

// TransitionEnd returns the transition-completion signal. The filesystem
// produces none; it exists for callers layering their own animations.
func (d *Document) TransitionEnd() *signal.Source { return d.transition }

// SubtreeModified returns the legacy modification signal, fed by the
// poller when mutation watching is unsupported.
func (d *Document) SubtreeModified() *signal.Source { return d.subtree }

// poller periodically fingerprints the tree and fires the subtree signal
// when the fingerprint changes.
type poller struct {
	doc      *Document
	interval time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

func newPoller(doc *Document, interval time.Duration) *poller {
	p := &poller{
		doc:      doc,
		interval: interval,
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *poller) stop() {
	p.stopOnce.Do(func() { close(p.done) })
}

func (p *poller) run() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	last := fingerprint(p.doc.root)
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			current := fingerprint(p.doc.root)
			if current != last {
				last = current
				p.doc.subtree.Emit(signal.Event{})
			}
		}
	}
}

// treePrint summarizes a tree scan for change detection.
type treePrint struct {
	entries int
	size    int64
	latest  int64
}

func fingerprint(root string) treePrint {
	var print treePrint
	filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		print.entries++
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		if !entry.IsDir() {
			print.size += info.Size()
		}
		if mod := info.ModTime().UnixNano(); mod > print.latest {
			print.latest = mod
		}
		return nil
	})
	return print
}
