package reflow

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/go-drift/reflow/pkg/signal"
)

// DefaultRefreshDelay is the throttle window for refresh invocations. Bursts
// of native signals inside one window collapse into a single pass.
const DefaultRefreshDelay = 20 * time.Millisecond

// Config tunes a Controller. Zero values select production defaults, so
// NewController(Config{}) behaves like the singleton.
type Config struct {
	// Environment supplies native change signals. Nil uses signal.Default().
	Environment signal.Environment
	// Scheduler hosts the throttle timer. Nil uses SystemScheduler.
	Scheduler Scheduler
	// Clock timestamps pass traces. Nil uses system time.
	Clock Clock
	// RefreshDelay is the throttle window. Zero uses DefaultRefreshDelay.
	RefreshDelay time.Duration
	// TransitionKeywords overrides the geometry keyword set used by the
	// transition filter. Nil uses DefaultTransitionKeywords.
	TransitionKeywords []string
}

// viewSubs holds the shared per-view signal subscriptions. They are
// installed at most once per view regardless of how many observers resolve
// to it.
type viewSubs struct {
	resize     *signal.Subscription
	transition *signal.Subscription
}

// Controller coordinates refresh scheduling for a set of observers sharing
// one set of native signal subscriptions.
//
// All operations are total: registering twice, removing an unknown observer,
// and running without a capable environment are silent no-ops.
type Controller struct {
	env      signal.Environment
	sched    Scheduler
	clock    Clock
	delay    time.Duration
	keywords []string

	refresh *throttle
	onEnd   signal.Handler

	mu               sync.Mutex
	observers        []Observer
	subscribed       map[Observer]bool
	legacySubscribed map[Observer]bool
	ids              map[Observer]string
	views            map[signal.View]*viewSubs
	watcher          signal.MutationWatcher
	legacySub        *signal.Subscription

	// passMu serializes passes so gather and broadcast phases of distinct
	// throttle firings never interleave.
	passMu       sync.Mutex
	passCount    atomic.Uint64
	activeCount  atomic.Uint64
	traceFuncVal atomic.Value // stores func(PassTrace)
}

// NewController creates an isolated controller. Most production code should
// use [GetController] instead; isolated instances exist for hermetic tests
// and embedded hosts that manage their own lifecycle.
func NewController(cfg Config) *Controller {
	c := &Controller{
		env:              cfg.Environment,
		sched:            cfg.Scheduler,
		clock:            cfg.Clock,
		delay:            cfg.RefreshDelay,
		keywords:         cfg.TransitionKeywords,
		subscribed:       make(map[Observer]bool),
		legacySubscribed: make(map[Observer]bool),
		ids:              make(map[Observer]string),
		views:            make(map[signal.View]*viewSubs),
	}
	if c.env == nil {
		c.env = signal.Default()
	}
	if c.sched == nil {
		c.sched = SystemScheduler{}
	}
	if c.clock == nil {
		c.clock = systemClock{}
	}
	if c.delay == 0 {
		c.delay = DefaultRefreshDelay
	}
	if c.keywords == nil {
		c.keywords = DefaultTransitionKeywords()
	}
	// Bound once: every signal subscription shares the same throttled entry
	// point and the same transition handler.
	c.refresh = newThrottle(c.sched, c.delay, c.refreshNow)
	c.onEnd = c.onTransitionEnd
	return c
}

// AddObserver registers observer and installs native signal subscriptions
// keyed off target's hosting view. Idempotent: re-adding a registered
// observer is a no-op. Always succeeds.
func (c *Controller) AddObserver(observer Observer, target signal.Target) {
	if observer == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.registeredLocked(observer) {
		c.observers = append(c.observers, observer)
		c.ids[observer] = uuid.NewString()
	}
	if !c.subscribed[observer] {
		c.connectLocked(observer, target)
	}
}

// RemoveObserver unregisters observer and removes the native signal
// subscriptions attached on its behalf. Removing an unknown observer is a
// silent no-op. Always succeeds.
//
// Teardown is per-call: removing any connected observer tears down the
// shared structural watcher and the view subscriptions even while other
// observers remain connected; those regain coverage on the next connect.
// This mirrors how shared listener registrations behave on the platforms
// this library models and is a known limitation, not a policy.
func (c *Controller) RemoveObserver(observer Observer, target signal.Target) {
	if observer == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.observers {
		if existing == observer {
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			delete(c.ids, observer)
			break
		}
	}
	if c.subscribed[observer] {
		c.disconnectLocked(observer, target)
	}
}

// Refresh is the throttled entry point of the refresh loop. Invocations
// within one refresh delay window collapse into a single trailing pass.
func (c *Controller) Refresh() {
	c.refresh.Invoke()
}

// refreshNow runs one pass and re-enters the throttle while observers keep
// reporting pending changes, since a delivered change can trigger further
// layout changes. The chain self-terminates on the first quiescent pass; an
// observer that never goes quiet keeps it alive, which is the caller's
// responsibility to avoid.
func (c *Controller) refreshNow() {
	c.passMu.Lock()
	changed := c.updateObservers()
	c.passMu.Unlock()

	if changed {
		c.Refresh()
	}
}

// updateObservers runs a single gather-then-broadcast pass over every
// registered observer and reports whether any observer had pending changes.
func (c *Controller) updateObservers() bool {
	start := c.clock.Now()

	// Snapshot the registry so a broadcast callback mutating it cannot skip
	// entries mid-pass.
	c.mu.Lock()
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	// Every observer gathers before any observer broadcasts: a broadcast
	// callback may mutate the document and would otherwise corrupt another
	// observer's in-flight measurement.
	var active []Observer
	for _, observer := range observers {
		observer.GatherActive()
		if observer.HasActive() {
			active = append(active, observer)
		}
	}
	for _, observer := range active {
		observer.BroadcastActive()
	}

	seq := c.passCount.Add(1)
	if len(active) > 0 {
		c.activeCount.Add(1)
	}
	if fn := c.traceFunc(); fn != nil {
		fn(PassTrace{
			Seq:       seq,
			Timestamp: start.UnixMilli(),
			PassMs:    float64(c.clock.Now().Sub(start).Microseconds()) / 1000,
			Observers: len(observers),
			Active:    len(active),
		})
	}
	return len(active) > 0
}

// connectLocked installs native signal subscriptions for observer. No-op
// when the environment is not signal-capable. Callers hold c.mu and have
// already checked that observer is not connected.
func (c *Controller) connectLocked(observer Observer, target signal.Target) {
	if !c.env.Capable() {
		return
	}
	view := c.env.ViewOf(target)
	if view == nil {
		return
	}

	// Shared per-view subscriptions, installed at most once no matter how
	// many observers resolve to the same view.
	if _, ok := c.views[view]; !ok {
		c.views[view] = &viewSubs{
			resize:     view.Resize().Listen(func(signal.Event) { c.Refresh() }),
			transition: view.Document().TransitionEnd().Listen(c.onEnd),
		}
	}

	if c.env.SupportsMutationWatch() {
		// One structural watcher for the whole process, recreated on every
		// connect. The previous one is released first so real watchers do
		// not leak their platform resources.
		if c.watcher != nil {
			c.watcher.Disconnect()
		}
		watcher := c.env.NewMutationWatcher(c.Refresh)
		if watcher != nil {
			watcher.Observe(view.Document(), signal.MutationOptions{
				Attributes:    true,
				ChildList:     true,
				CharacterData: true,
				Subtree:       true,
			})
			c.watcher = watcher
		}
	} else {
		if c.legacySub == nil {
			c.legacySub = view.Document().SubtreeModified().Listen(func(signal.Event) { c.Refresh() })
		}
		c.legacySubscribed[observer] = true
	}

	c.subscribed[observer] = true
}

// disconnectLocked removes the native signal subscriptions attached via
// target's view. No-op when the environment is not signal-capable. Callers
// hold c.mu and have already checked that observer is connected.
func (c *Controller) disconnectLocked(observer Observer, target signal.Target) {
	if !c.env.Capable() {
		return
	}
	view := c.env.ViewOf(target)
	if view != nil {
		if subs, ok := c.views[view]; ok {
			subs.transition.Cancel()
			subs.resize.Cancel()
			delete(c.views, view)
		}
	}

	if c.watcher != nil {
		c.watcher.Disconnect()
		c.watcher = nil
	}
	if c.legacySubscribed[observer] && c.legacySub != nil {
		c.legacySub.Cancel()
		c.legacySub = nil
	}

	delete(c.legacySubscribed, observer)
	delete(c.subscribed, observer)
}

func (c *Controller) registeredLocked(observer Observer) bool {
	for _, existing := range c.observers {
		if existing == observer {
			return true
		}
	}
	return false
}
