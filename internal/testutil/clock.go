package testutil

import "sync"

// DeterministicClock is a resettable logical clock for tests. It satisfies
// engine.Sequencer, so the same scenario run twice stamps identical seqs.
type DeterministicClock struct {
	mu    sync.Mutex
	start int64
	seq   int64
}

// NewDeterministicClock returns a clock whose first Next() is 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// NewDeterministicClockAt returns a clock whose first Next() is start+1
// and which Reset returns to start.
func NewDeterministicClockAt(start int64) *DeterministicClock {
	return &DeterministicClock{start: start, seq: start}
}

// Next increments and returns the seq.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the last seq handed out.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock to its starting seq.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = c.start
}
