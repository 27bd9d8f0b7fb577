// Package testutil provides shared test helpers.
package testutil

import (
	"sync"
	"time"
)

// Clock is a deterministic wall clock for tests. Each call to Now
// returns the current instant and advances it by a fixed step, so
// successive timestamps are strictly increasing and reproducible.
//
// Thread-safe: Now may be called from the engine's async confirmation
// goroutines.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewClock creates a clock starting at start, advancing by step per
// call. A non-positive step defaults to one second.
func NewClock(start time.Time, step time.Duration) *Clock {
	if step <= 0 {
		step = time.Second
	}
	return &Clock{now: start, step: step}
}

// Now returns the current instant and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the instant the next Now call will report, without
// advancing.
func (c *Clock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}
