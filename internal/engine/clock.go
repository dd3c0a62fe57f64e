package engine

import (
	"sync/atomic"
	"time"
)

// Clock is the monotonic logical clock that orders audit-log entries.
//
// Every invocation and completion is stamped with a strictly increasing seq
// from this clock. Seq is never compared against deadlines; proposal
// windows use a TimeSource.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used to resume after the highest seq already in the store.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// TimeSource supplies the wall-clock time of a call, in Unix seconds.
// The engine reads it once per call.
type TimeSource interface {
	Now() int64
}

// SystemTime reads the host clock.
type SystemTime struct{}

// Now returns the current Unix time in seconds.
func (SystemTime) Now() int64 {
	return time.Now().Unix()
}
