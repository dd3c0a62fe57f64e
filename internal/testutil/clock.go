package testutil

import "sync"

// ManualTime is a wall clock that only moves when a test moves it.
//
// It satisfies engine.TimeSource, so proposal deadlines can be crossed
// deterministically.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualTime struct {
	mu  sync.Mutex
	now int64
}

// NewManualTime creates a clock reading start (Unix seconds).
func NewManualTime(start int64) *ManualTime {
	return &ManualTime{now: start}
}

// Now returns the current reading.
func (c *ManualTime) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t. Moving backwards is allowed.
func (c *ManualTime) Set(t int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d seconds and returns the new reading.
func (c *ManualTime) Advance(d int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
	return c.now
}
