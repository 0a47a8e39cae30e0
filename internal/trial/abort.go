package trial

import (
	"context"
	"sync"
	"time"
)

// AbortController carries the cooperative cancellation signal for one
// trial run. Arm resets it at the start of a run; Abort may be called
// from any goroutine (typically a UI interaction) while the scheduler
// polls Aborted between suspension points. The signal is advisory: a
// completion-service call already in flight is allowed to finish and
// its result is discarded.
//
// Abort itself appends the single terminal "aborted" transcript entry,
// so the scheduler stays silent on the cancellation path.
type AbortController struct {
	mu      sync.Mutex
	armed   bool
	aborted bool
	sink    EventFunc
}

// NewAbortController returns an unarmed controller. Abort before Arm
// is a no-op.
func NewAbortController() *AbortController {
	return &AbortController{}
}

// Arm clears the signal and binds the transcript sink for a new run.
func (a *AbortController) Arm(sink EventFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.armed = true
	a.aborted = false
	a.sink = sink
}

// Disarm detaches the sink at the end of a run. A late Abort after
// Disarm still sets the flag but emits nothing.
func (a *AbortController) Disarm() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.armed = false
	a.sink = nil
}

// Abort sets the signal and emits the terminal aborted entry. Only the
// first call per armed run emits; repeats are no-ops.
func (a *AbortController) Abort() {
	a.mu.Lock()
	if !a.armed || a.aborted {
		a.mu.Unlock()
		return
	}
	a.aborted = true
	sink := a.sink
	a.mu.Unlock()

	if sink != nil {
		sink(Event{Kind: EventAborted, Turn: -1, Text: "Trial aborted."})
	}
}

// Aborted reports whether the current run has been cancelled.
func (a *AbortController) Aborted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.aborted
}

// Sleep waits for d, polling the signal every tick so the wait is
// interruptible. Returns false if the run was aborted or the context
// cancelled during (or before) the wait.
func (a *AbortController) Sleep(ctx context.Context, d, tick time.Duration) bool {
	if a.Aborted() || ctx.Err() != nil {
		return false
	}
	deadline := time.Now().Add(d)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if a.Aborted() {
				return false
			}
		}
	}
	return !a.Aborted()
}
