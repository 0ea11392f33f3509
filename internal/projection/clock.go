package projection

import (
	"sync/atomic"
	"time"
)

// Clock stamps frames with monotonically increasing sequences.
//
// Next returns the current wall-clock millisecond unless that would not
// advance past the previous stamp, in which case it returns previous+1.
// Observe raises the floor to a sequence seen elsewhere.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	last atomic.Int64
	now  func() time.Time
}

// NewClock creates a clock backed by the system wall clock.
func NewClock() *Clock {
	return NewClockWith(time.Now)
}

// NewClockWith creates a clock backed by now. Used by tests to freeze or
// rewind time.
func NewClockWith(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Next returns the next sequence. Calls are linearizable - each call
// returns a unique, increasing value.
func (c *Clock) Next() int64 {
	for {
		last := c.last.Load()
		next := c.now().UnixMilli()
		if next <= last {
			next = last + 1
		}
		if c.last.CompareAndSwap(last, next) {
			return next
		}
	}
}

// Observe records a sequence stamped by another producer so later calls to
// Next exceed it.
func (c *Clock) Observe(seq int64) {
	for {
		last := c.last.Load()
		if seq <= last || c.last.CompareAndSwap(last, seq) {
			return
		}
	}
}

// Current returns the last issued or observed sequence.
func (c *Clock) Current() int64 {
	return c.last.Load()
}
