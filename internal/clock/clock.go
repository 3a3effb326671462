// Package clock provides the simulator's single source of "now", expressed
// as a millisecond epoch rather than time.Time so that timers throughout
// odmrp and scheduler can be stored as plain integers and compared with a
// simple subtraction, matching the rest of the core's "timers as polled
// scalars" approach rather than timer goroutines.
package clock

import (
	"sync"
	"time"
)

// Clock yields a monotonically non-decreasing millisecond epoch. The zero
// value is not usable; construct one with New or NewFixed.
type Clock struct {
	mu      sync.Mutex
	nowFn   func() int64 // overridable for testing
	advance func(delta int64)
}

// New returns a Clock backed by the real wall clock.
func New() *Clock {
	return &Clock{
		nowFn: func() int64 {
			return time.Now().UnixMilli()
		},
	}
}

// NewFixed returns a Clock whose NowMillis() starts at start and only moves
// when Advance is called. Intended for deterministic tests of timer-driven
// behavior (route refresh, forwarding-group expiry) without sleeping.
func NewFixed(start int64) *Clock {
	c := &Clock{}
	cur := start
	c.nowFn = func() int64 { return cur }
	c.advance = func(delta int64) { cur += delta }
	return c
}

// NowMillis returns the current millisecond epoch.
func (c *Clock) NowMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowFn()
}

// Advance moves a fixed clock forward by deltaMillis. It panics if called on
// a Clock created with New, since the real wall clock can't be fast-forwarded.
func (c *Clock) Advance(deltaMillis int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.advance == nil {
		panic("clock: Advance called on a non-fixed Clock")
	}
	c.advance(deltaMillis)
}
