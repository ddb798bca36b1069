package fsenv

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/go-drift/reflow/pkg/signal"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestEnvironmentResolvesRootView(t *testing.T) {
	env := New(t.TempDir())
	defer env.Close()

	if !env.Capable() {
		t.Error("expected a filesystem environment to be capable")
	}
	if env.ViewOf("anything") != signal.View(env.View()) {
		t.Error("expected every target to resolve to the root view")
	}
}

func TestWatcherReportsFileCreation(t *testing.T) {
	root := t.TempDir()
	env := New(root)
	defer env.Close()

	if !env.SupportsMutationWatch() {
		t.Skip("mutation watching unavailable on this platform")
	}

	notified := make(chan struct{}, 16)
	w := env.NewMutationWatcher(func() {
		select {
		case notified <- struct{}{}:
		default:
		}
	})
	w.Observe(env.View().Doc(), signal.MutationOptions{
		ChildList:     true,
		CharacterData: true,
		Subtree:       true,
	})
	defer w.Disconnect()

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-notified:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a mutation notification for file creation")
	}
}

func TestWatcherDisconnectStopsNotifications(t *testing.T) {
	root := t.TempDir()
	env := New(root)
	defer env.Close()

	if !env.SupportsMutationWatch() {
		t.Skip("mutation watching unavailable on this platform")
	}

	notified := make(chan struct{}, 16)
	w := env.NewMutationWatcher(func() {
		select {
		case notified <- struct{}{}:
		default:
		}
	})
	w.Observe(env.View().Doc(), signal.MutationOptions{ChildList: true, Subtree: true})
	w.Disconnect()
	w.Disconnect() // must be safe

	if err := os.WriteFile(filepath.Join(root, "b.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-notified:
		t.Error("expected no notification after disconnect")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestRelevantEventMapping(t *testing.T) {
	tests := []struct {
		name string
		op   fsnotify.Op
		opts signal.MutationOptions
		want bool
	}{
		{"create matches child list", fsnotify.Create, signal.MutationOptions{ChildList: true}, true},
		{"remove matches child list", fsnotify.Remove, signal.MutationOptions{ChildList: true}, true},
		{"rename matches child list", fsnotify.Rename, signal.MutationOptions{ChildList: true}, true},
		{"write matches character data", fsnotify.Write, signal.MutationOptions{CharacterData: true}, true},
		{"chmod matches attributes", fsnotify.Chmod, signal.MutationOptions{Attributes: true}, true},
		{"write without character data", fsnotify.Write, signal.MutationOptions{ChildList: true}, false},
		{"chmod without attributes", fsnotify.Chmod, signal.MutationOptions{ChildList: true, CharacterData: true}, false},
		{"nothing selected", fsnotify.Create, signal.MutationOptions{}, false},
	}
	for _, tt := range tests {
		event := fsnotify.Event{Name: "f", Op: tt.op}
		if got := relevant(event, tt.opts); got != tt.want {
			t.Errorf("%s: relevant = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFingerprintChangesOnWrite(t *testing.T) {
	root := t.TempDir()
	before := fingerprint(root)

	if err := os.WriteFile(filepath.Join(root, "c.txt"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	after := fingerprint(root)

	if before == after {
		t.Error("expected the fingerprint to change after a write")
	}
}

func TestPollerFeedsLegacySignal(t *testing.T) {
	root := t.TempDir()
	doc := newDocument(root)

	var count atomic.Int32
	doc.SubtreeModified().Listen(func(signal.Event) { count.Add(1) })

	p := newPoller(doc, 20*time.Millisecond)
	defer p.stop()

	// Give the poller a beat to take its baseline before mutating.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(root, "d.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return count.Load() > 0 }, "expected the poller to fire the legacy signal")
}
