package fsenv

import (
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/go-drift/reflow/pkg/errors"
	"github.com/go-drift/reflow/pkg/signal"
)

// Watcher is the fsnotify-backed signal.MutationWatcher. Observe attaches
// it to a Document's tree; every relevant filesystem event invokes the
// callback supplied at creation.
type Watcher struct {
	fn func()

	mu       sync.Mutex
	notifier *fsnotify.Watcher
	opts     signal.MutationOptions
	done     chan struct{}
}

// Observe starts watching doc's directory tree. Options map onto event
// kinds: ChildList covers create/remove/rename, CharacterData covers
// writes, Attributes covers permission changes. Subtree extends the watch
// to nested directories, including ones created while observing.
func (w *Watcher) Observe(doc signal.Document, opts signal.MutationOptions) {
	fsDoc, ok := doc.(*Document)
	if !ok {
		return
	}

	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		errors.Report(&errors.ReflowError{
			Op:   "fsenv.Watcher.Observe",
			Kind: errors.KindWatch,
			Err:  err,
		})
		return
	}

	w.mu.Lock()
	if w.done != nil {
		// Re-observe replaces the previous attachment.
		close(w.done)
		w.notifier.Close()
	}
	w.notifier = notifier
	w.opts = opts
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	addTree(notifier, fsDoc.root, opts.Subtree)
	go w.loop(notifier, done, opts)
}

// Disconnect stops the watcher and releases its fsnotify resources. Safe to
// call without a prior Observe and safe to call twice.
func (w *Watcher) Disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done == nil {
		return
	}
	close(w.done)
	w.done = nil
	w.notifier.Close()
	w.notifier = nil
}

func (w *Watcher) loop(notifier *fsnotify.Watcher, done chan struct{}, opts signal.MutationOptions) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-notifier.Events:
			if !ok {
				return
			}
			if !relevant(event, opts) {
				continue
			}
			// New directories join the watch before the callback runs so
			// follow-up changes under them are not missed.
			if opts.Subtree && event.Has(fsnotify.Create) {
				addTree(notifier, event.Name, true)
			}
			if w.fn != nil {
				w.fn()
			}
		case err, ok := <-notifier.Errors:
			if !ok {
				return
			}
			errors.Report(&errors.ReflowError{
				Op:     "fsenv.Watcher",
				Kind:   errors.KindWatch,
				Source: "fsnotify",
				Err:    err,
			})
		}
	}
}

// relevant maps filesystem event kinds onto the mutation option set.
func relevant(event fsnotify.Event, opts signal.MutationOptions) bool {
	if opts.ChildList && (event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
		return true
	}
	if opts.CharacterData && event.Has(fsnotify.Write) {
		return true
	}
	if opts.Attributes && event.Has(fsnotify.Chmod) {
		return true
	}
	return false
}

// addTree registers path and, when recursive, every directory below it.
// Individual add failures are reported and skipped; a partially watched
// tree still delivers the signals it can.
func addTree(notifier *fsnotify.Watcher, path string, recursive bool) {
	add := func(dir string) {
		if err := notifier.Add(dir); err != nil {
			errors.Report(&errors.ReflowError{
				Op:     "fsenv.addTree",
				Kind:   errors.KindWatch,
				Source: dir,
				Err:    err,
			})
		}
	}

	if !recursive {
		add(path)
		return
	}
	filepath.WalkDir(path, func(dir string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			add(dir)
		}
		return nil
	})
}
