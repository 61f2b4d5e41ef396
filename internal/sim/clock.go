package sim

import "sync/atomic"

// Clock stamps events with a strictly increasing sequence number.
//
// A simulation run owns one Clock, so replaying a match with the same inputs
// reproduces the same sequence numbers. Safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
