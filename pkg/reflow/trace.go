package reflow

// PassTrace is a sample describing one refresh pass. The inspection server
// streams these to connected clients.
type PassTrace struct {
	// Seq is the pass sequence number, monotonically increasing from 1.
	Seq uint64 `json:"seq"`
	// Timestamp is the pass start time in Unix milliseconds.
	Timestamp int64 `json:"ts"`
	// PassMs is the pass duration in milliseconds.
	PassMs float64 `json:"passMs"`
	// Observers is the number of registered observers at pass start.
	Observers int `json:"observers"`
	// Active is the number of observers that had pending changes.
	Active int `json:"active"`
}

// ObserverInfo describes one registry entry for inspection.
type ObserverInfo struct {
	ID             string `json:"id"`
	Connected      bool   `json:"connected"`
	LegacyFallback bool   `json:"legacyFallback"`
}

// Snapshot is a point-in-time view of the controller for inspection.
type Snapshot struct {
	Observers      []ObserverInfo `json:"observers"`
	WatcherActive  bool           `json:"watcherActive"`
	Passes         uint64         `json:"passes"`
	ActivePasses   uint64         `json:"activePasses"`
	RefreshDelayMs float64        `json:"refreshDelayMs"`
}

// SetTraceFunc installs a callback invoked after every pass with its trace
// sample. Pass nil to disable tracing. The callback runs on the pass path
// and should return quickly.
func (c *Controller) SetTraceFunc(fn func(PassTrace)) {
	c.traceFuncVal.Store(fn)
}

func (c *Controller) traceFunc() func(PassTrace) {
	if fn, ok := c.traceFuncVal.Load().(func(PassTrace)); ok {
		return fn
	}
	return nil
}

// TakeSnapshot captures the registry and counters for inspection.
func (c *Controller) TakeSnapshot() Snapshot {
	c.mu.Lock()
	observers := make([]ObserverInfo, 0, len(c.observers))
	for _, observer := range c.observers {
		observers = append(observers, ObserverInfo{
			ID:             c.ids[observer],
			Connected:      c.subscribed[observer],
			LegacyFallback: c.legacySubscribed[observer],
		})
	}
	watcherActive := c.watcher != nil
	c.mu.Unlock()

	return Snapshot{
		Observers:      observers,
		WatcherActive:  watcherActive,
		Passes:         c.passCount.Load(),
		ActivePasses:   c.activeCount.Load(),
		RefreshDelayMs: float64(c.delay.Microseconds()) / 1000,
	}
}
