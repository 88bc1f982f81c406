package trace

import "sync/atomic"

// Clock stamps trace records with increasing sequence numbers. Engines that
// share a recorder share a Clock, so their records interleave in one order.
// Safe for concurrent use.
type Clock struct {
	last atomic.Int64
}

// NewClock returns a clock whose first stamp is 1
func NewClock() *Clock {
	return NewClockAt(0)
}

// NewClockAt returns a clock whose first stamp is last+1, for continuing
// after records that were already journaled
func NewClockAt(last int64) *Clock {
	c := new(Clock)
	c.last.Store(last)
	return c
}

// Next advances the clock and returns the new stamp
func (c *Clock) Next() int64 {
	return c.last.Add(1)
}

// Current returns the last stamp handed out, 0 before the first
func (c *Clock) Current() int64 {
	return c.last.Load()
}
