package testutil

import (
	"sync"
	"time"
)

// DefaultBase is the first instant a DeterministicClock returns.
var DefaultBase = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock hands out strictly increasing instants for tests.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	base time.Time
	step time.Duration
	seq  int64
}

// NewDeterministicClock creates a clock starting at base and advancing by
// step. A zero base means DefaultBase; a non-positive step means one second.
//
// The first call to Next() returns base.
func NewDeterministicClock(base time.Time, step time.Duration) *DeterministicClock {
	if base.IsZero() {
		base = DefaultBase
	}
	if step <= 0 {
		step = time.Second
	}
	return &DeterministicClock{base: base.UTC(), step: step}
}

// Next returns the next instant and advances the clock.
func (c *DeterministicClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.base.Add(time.Duration(c.seq) * c.step)
	c.seq++
	return t
}

// Count returns how many instants have been handed out.
func (c *DeterministicClock) Count() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock. After Reset(), Next() returns base again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
