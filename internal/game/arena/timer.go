package arena

import (
	"sync"
	"time"
)

// TurnTimer runs at most one pending callback at a time. Resetting with a new
// callback replaces the pending one. It is safe for concurrent use.
type TurnTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// NewTurnTimer returns an idle timer.
func NewTurnTimer() *TurnTimer {
	return &TurnTimer{}
}

// Reset arranges for onFire to run in its own goroutine after d, cancelling
// any callback that is still pending. A stopped timer ignores Reset.
//
// Precondition: d >= 0; onFire must not be nil.
// Postcondition: onFire runs exactly once unless Reset or Stop is called first.
func (t *TurnTimer) Reset(d time.Duration, onFire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		live := !t.stopped && t.gen == gen
		t.mu.Unlock()
		if live {
			onFire()
		}
	})
}

// Stop cancels any pending callback and disables the timer. Safe to call
// multiple times.
//
// Postcondition: no callback starts after Stop returns.
func (t *TurnTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
}
