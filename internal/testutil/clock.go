package testutil

import (
	"sync"
	"time"
)

// ManualClock is a wall clock in milliseconds that only moves when told to.
//
// Pass clock.Now as an engine.Clock so tests control every timestamp and
// expiry decision.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu    sync.Mutex
	start int64
	now   int64
}

// NewManualClock creates a clock reading start milliseconds.
func NewManualClock(start int64) *ManualClock {
	return &ManualClock{start: start, now: start}
}

// Now returns the current reading.
func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by ms and returns the new reading.
// Negative values move it backwards, which tests use to simulate skew.
func (c *ManualClock) Advance(ms int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += ms
	return c.now
}

// AdvanceDuration is Advance for a time.Duration, truncated to milliseconds.
func (c *ManualClock) AdvanceDuration(d time.Duration) int64 {
	return c.Advance(d.Milliseconds())
}

// Set jumps the clock to t.
func (c *ManualClock) Set(t int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Reset returns the clock to its starting reading.
func (c *ManualClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
