package engine

import "sync/atomic"

// Clock holds the current virtual frame and the sequence counter used to
// break ties between actions due at the same frame.
//
// The frame is monotonically non-decreasing. The seq is strictly increasing
// so replaying the same schedule yields the same order.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations), though
// the Scheduler that owns it is single-writer.
type Clock struct {
	frame atomic.Int64
	seq   atomic.Int64
}

// NewClock creates a clock at frame 0.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current frame.
func (c *Clock) Now() int64 {
	return c.frame.Load()
}

// Next returns the next sequence number.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last sequence number handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// advance moves the frame forward to frame. It never moves backwards.
func (c *Clock) advance(frame int64) {
	for {
		cur := c.frame.Load()
		if frame <= cur || c.frame.CompareAndSwap(cur, frame) {
			return
		}
	}
}
