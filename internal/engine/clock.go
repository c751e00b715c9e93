package engine

import "sync/atomic"

// Sequencer stamps state changes with increasing seq numbers. Clock is the
// production implementation; tests use testutil.DeterministicClock, which
// can be rewound.
type Sequencer interface {
	Next() int64
	Current() int64
}

// Clock counts state changes. The first change is seq 1.
//
// Seq numbers order changes within one session; they are not timestamps
// and are not persisted as part of the measurement state.
type Clock struct {
	n atomic.Int64
}

// NewClock returns a clock that has stamped nothing yet.
func NewClock() *Clock {
	return &Clock{}
}

func (c *Clock) Next() int64    { return c.n.Add(1) }
func (c *Clock) Current() int64 { return c.n.Load() }

var _ Sequencer = (*Clock)(nil)
