package sim

import "sync/atomic"

// Clock is a monotonic logical clock. The coordinator stamps every drained
// event with a strictly increasing seq so the journal reflects processing
// order without depending on wall-clock resolution.
//
// Safe for concurrent use, though in practice only the coordinator goroutine
// calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the latest issued sequence number without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
