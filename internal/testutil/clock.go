// Package testutil holds deterministic helpers shared by tests and the
// scenario harness.
package testutil

import "sync/atomic"

// DeterministicClock is a logical clock that starts at zero. It satisfies
// store.Clock, so a store and the trace reading it agree on seq values.
//
// Safe for concurrent use.
type DeterministicClock struct {
	seq atomic.Int64
}

// NewDeterministicClock returns a clock whose first Next() is 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next advances the clock and returns the new value.
func (c *DeterministicClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out, or 0.
func (c *DeterministicClock) Current() int64 {
	return c.seq.Load()
}

// Reset rewinds the clock so the next Next() returns 1 again.
func (c *DeterministicClock) Reset() {
	c.seq.Store(0)
}
