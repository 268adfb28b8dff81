// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feedback implements the transient "copied" indicator.
//
// The indicator has a single slot: copying a new target replaces the old one
// immediately and cancels its pending expiry, so at most one target ever
// shows as copied.
package feedback

import (
	"sync"
	"time"
)

// DefaultDelay is how long a target stays marked as copied.
const DefaultDelay = 2000 * time.Millisecond

// Timer tracks the most recently copied target. Expiry runs on a timer
// goroutine, so state is guarded by a mutex.
type Timer struct {
	delay    time.Duration
	onChange func(target string)

	mu      sync.Mutex
	target  string
	gen     uint64
	pending *time.Timer
}

// Option configures a Timer.
type Option func(*Timer)

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.delay = d
		}
	}
}

// WithOnChange registers a callback invoked after every state change with
// the current target ("" once expired). It runs outside the lock and, for
// expiry, on the timer goroutine.
func WithOnChange(fn func(target string)) Option {
	return func(t *Timer) { t.onChange = fn }
}

// New returns an idle Timer.
func New(opts ...Option) *Timer {
	t := &Timer{delay: DefaultDelay}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Copied marks target as just copied and schedules its expiry, replacing any
// previous target and cancelling its pending expiry.
func (t *Timer) Copied(target string) {
	t.mu.Lock()
	if t.pending != nil {
		t.pending.Stop()
	}
	t.gen++
	gen := t.gen
	t.target = target
	t.pending = time.AfterFunc(t.delay, func() { t.expire(gen) })
	t.mu.Unlock()

	t.notify(target)
}

// expire clears the slot unless a newer Copied superseded generation gen.
func (t *Timer) expire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.target = ""
	t.pending = nil
	t.mu.Unlock()

	t.notify("")
}

// Current returns the target currently marked as copied, or "".
func (t *Timer) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.target
}

// IsCopied reports whether target is the one currently marked.
func (t *Timer) IsCopied(target string) bool {
	return target != "" && t.Current() == target
}

// Stop cancels any pending expiry and clears the slot without notifying.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.gen++
	t.target = ""
}

func (t *Timer) notify(target string) {
	if t.onChange != nil {
		t.onChange(target)
	}
}
