package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicClock_Sequence(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Current())

	assert.Equal(t, int64(1), clock.Next())
	assert.Equal(t, int64(2), clock.Next())
	assert.Equal(t, int64(2), clock.Current())
}

func TestDeterministicClock_ResetReproducesSequence(t *testing.T) {
	clock := NewDeterministicClock()
	first := []int64{clock.Next(), clock.Next(), clock.Next()}

	clock.Reset()
	second := []int64{clock.Next(), clock.Next(), clock.Next()}

	assert.Equal(t, first, second)
}

func TestDeterministicClockAt(t *testing.T) {
	clock := NewDeterministicClockAt(41)
	assert.Equal(t, int64(42), clock.Next())

	clock.Reset()
	assert.Equal(t, int64(41), clock.Current())
}

func TestDeterministicClock_Concurrent(t *testing.T) {
	clock := NewDeterministicClock()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				clock.Next()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), clock.Current())
}
