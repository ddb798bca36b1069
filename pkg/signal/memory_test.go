package signal

import "testing"

func TestMemoryEnvironmentResolvesRootByDefault(t *testing.T) {
	env := NewMemoryEnvironment()

	if got := env.ViewOf("unbound"); got != View(env.RootView()) {
		t.Error("expected unbound target to resolve to the root view")
	}
}

func TestMemoryEnvironmentBindTarget(t *testing.T) {
	env := NewMemoryEnvironment()
	other := NewMemoryView()
	env.BindTarget("el", other)

	if got := env.ViewOf("el"); got != View(other) {
		t.Error("expected bound target to resolve to its view")
	}
	if got := env.ViewOf("otherTarget"); got != View(env.RootView()) {
		t.Error("expected other targets to still resolve to root")
	}
}

func TestMemoryWatcherReceivesMutations(t *testing.T) {
	env := NewMemoryEnvironment()
	doc := env.RootView().Doc()

	count := 0
	w := env.NewMutationWatcher(func() { count++ })
	if w == nil {
		t.Fatal("expected a watcher")
	}
	w.Observe(doc, MutationOptions{
		Attributes:    true,
		ChildList:     true,
		CharacterData: true,
		Subtree:       true,
	})

	doc.Mutate()
	doc.Mutate()
	if count != 2 {
		t.Errorf("expected 2 notifications, got %d", count)
	}

	w.Disconnect()
	doc.Mutate()
	if count != 2 {
		t.Errorf("expected no notifications after disconnect, got %d", count)
	}
	if doc.WatcherCount() != 0 {
		t.Errorf("expected 0 live watchers, got %d", doc.WatcherCount())
	}
}

func TestMemoryEnvironmentMutationWatchToggle(t *testing.T) {
	env := NewMemoryEnvironment()
	if !env.SupportsMutationWatch() {
		t.Fatal("expected mutation watch on by default")
	}

	env.SetMutationWatchSupported(false)
	if env.SupportsMutationWatch() {
		t.Error("expected mutation watch to be disabled")
	}
	if env.NewMutationWatcher(func() {}) != nil {
		t.Error("expected no watcher while disabled")
	}
}

func TestMutateFiresLegacySignal(t *testing.T) {
	doc := NewMemoryDocument()

	count := 0
	doc.SubtreeModified().Listen(func(Event) { count++ })

	doc.Mutate()
	if count != 1 {
		t.Errorf("expected legacy signal to fire, got %d deliveries", count)
	}
}

func TestEmitTransitionEndCarriesProperty(t *testing.T) {
	doc := NewMemoryDocument()

	var got Event
	doc.TransitionEnd().Listen(func(ev Event) { got = ev })

	doc.EmitTransitionEnd("height")
	if got.Property != "height" {
		t.Errorf("property = %q, want %q", got.Property, "height")
	}
}
