package testutil

import (
	"sync"
	"time"
)

// DefaultEpoch is the first instant a DeterministicClock reports.
var DefaultEpoch = time.UnixMilli(1_700_000_000_000).UTC()

// DeterministicClock is a wall clock for tests that advances a fixed step on
// every reading.
//
// Two clocks built with the same epoch and step yield identical timestamp
// sequences, so sequence stamps and CreatedAt values are reproducible.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	epoch time.Time
	step  time.Duration
	now   time.Time
}

// NewDeterministicClock creates a clock at DefaultEpoch stepping one
// millisecond per call.
//
// The first call to Now() returns DefaultEpoch.
func NewDeterministicClock() *DeterministicClock {
	return NewDeterministicClockAt(DefaultEpoch, time.Millisecond)
}

// NewDeterministicClockAt creates a clock starting at epoch and advancing
// step per reading. A zero step freezes the clock.
func NewDeterministicClockAt(epoch time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{epoch: epoch, step: step, now: epoch}
}

// Now returns the current instant and advances the clock by one step.
//
// Monotonic: never decreases for a non-negative step.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the instant the next Now() will report, without advancing.
func (c *DeterministicClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t. Moving backwards is allowed and is how tests
// simulate a wall clock stepping back.
func (c *DeterministicClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Reset returns the clock to its epoch.
//
// Used for test reuse. After Reset(), the next call to Now() returns the epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.epoch
}
