package reflow

import "sync"

var (
	instanceMu sync.Mutex
	instance   *Controller
)

// GetController returns the process-wide controller, constructing it lazily
// on first call against the default environment. The instance lives for the
// process duration; there is no teardown.
func GetController() *Controller {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance == nil {
		instance = NewController(Config{})
	}
	return instance
}
