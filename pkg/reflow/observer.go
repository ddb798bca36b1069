package reflow

// Observer is the capability contract the controller requires of each
// observer collaborator. All three operations are safe to call on every
// pass; implementations own their measurement and delivery semantics.
type Observer interface {
	// GatherActive recomputes and stages the observer's pending change
	// state. It is called for every registered observer on every pass,
	// before any observer broadcasts.
	GatherActive()

	// HasActive reports whether the last gather staged any changes.
	HasActive() bool

	// BroadcastActive delivers the staged changes to the observer's
	// callback. Only called when HasActive reported true this pass.
	BroadcastActive()
}
