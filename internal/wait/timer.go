// Package wait implements the polling primitive behind relaxed locating.
// All waits started while a Timer is held share its single deadline, so a
// chain of nested waits is bounded by the outermost timeout.
package wait

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Timer is the deadline shared by one chain of nested waits.
type Timer struct {
	mu       sync.Mutex
	deadline time.Time
	locked   bool
	chain    string
	now      func() time.Time
}

func NewTimer() *Timer {
	return &Timer{now: time.Now}
}

// Acquire installs now+timeout as the deadline unless an outer wait already
// holds the timer. Only the owner's release clears it; nested callers get a
// no-op release.
func (t *Timer) Acquire(timeout time.Duration) (release func(), owner bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.locked {
		return func() {}, false
	}
	if timeout < 0 {
		timeout = 0
	}
	t.deadline = t.now().Add(timeout)
	t.locked = true
	t.chain = uuid.NewString()

	var once sync.Once
	return func() {
		once.Do(t.reset)
	}, true
}

func (t *Timer) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deadline = time.Time{}
	t.locked = false
	t.chain = ""
}

func (t *Timer) Locked() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.locked
}

// Remaining is zero once the deadline passed or when no wait holds the timer.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.locked {
		return 0
	}
	if d := t.deadline.Sub(t.now()); d > 0 {
		return d
	}
	return 0
}

func (t *Timer) Expired() bool {
	return t.Remaining() == 0
}

// Chain identifies the current wait chain in logs.
func (t *Timer) Chain() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.chain
}
