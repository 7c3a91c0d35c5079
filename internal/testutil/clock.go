// Package testutil holds deterministic clocks and id generators for tests.
package testutil

import (
	"sync"
	"time"
)

var defaultStartTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// Clock implements clock.Clock. The first call to Now returns Start and each
// subsequent call advances by unit.
type Clock struct {
	Start time.Time
	unit  time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewClock returns a clock starting at a fixed date and advancing by unit.
func NewClock(unit time.Duration) *Clock {
	return &Clock{
		Start: defaultStartTime,
		unit:  unit,
	}
}

// Now implements clock.Clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last.IsZero() {
		c.last = c.Start
	} else {
		c.last = c.last.Add(c.unit)
	}
	return c.last
}

// Last returns the last time that was handed out.
func (c *Clock) Last() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last.IsZero() {
		c.last = c.Start
	}
	return c.last
}
