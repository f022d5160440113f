package testutil

import (
	"sync"
	"time"

	"github.com/statehouse/rollcall/internal/model"
)

// FixedClock is a settable wall-clock date for tests.
//
// The panel builder's maturity gate compares against "today"; injecting a
// FixedClock makes maturity decisions reproducible so the same test
// produces the same rows on any day it runs.
//
// Thread-safety: all methods are safe for concurrent use.
type FixedClock struct {
	mu    sync.Mutex
	today model.Date
}

// NewFixedClock creates a clock pinned to the given date.
func NewFixedClock(year int, month time.Month, day int) *FixedClock {
	return &FixedClock{today: model.DateOf(year, month, day)}
}

// Today returns the pinned date. Implements panel.Clock.
func (c *FixedClock) Today() model.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.today
}

// Advance moves the pinned date forward by n days.
// Used by maturity-gate tests to simulate the passage of real time.
func (c *FixedClock) Advance(days int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = c.today.AddDays(days)
}
