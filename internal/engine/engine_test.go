package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/takeoff/internal/testutil"
)

// memRecorder collects recorded events.
type memRecorder struct {
	mu     sync.Mutex
	events []Event
	seqs   []int64
}

func (r *memRecorder) Record(_ context.Context, seq int64, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	r.seqs = append(r.seqs, seq)
	return nil
}

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	base := []EngineOption{WithEngineLogger(testutil.DiscardLogger())}
	return New(newTestSession(t), append(base, opts...)...)
}

func runUntilStopped(t *testing.T, e *Engine) {
	t.Helper()
	e.Stop()

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
}

func TestEngine_ProcessesEventsInOrder(t *testing.T) {
	rec := &memRecorder{}
	e := newTestEngine(t, WithRecorder(rec))

	p0, p1 := at(0, 0, 1), at(3, 4, 1)
	require.True(t, e.Enqueue(Event{Type: EventPointerDown, Pointer: &p0}))
	require.True(t, e.Enqueue(Event{Type: EventPointerMove, Pointer: &p1}))
	require.True(t, e.Enqueue(Event{Type: EventPointerUp}))
	require.True(t, e.Enqueue(Event{Type: EventSelectScale, Scale: "100"}))
	assert.Equal(t, 4, e.QueueLen())

	runUntilStopped(t, e)

	s := e.Session()
	assert.Equal(t, []string{"m-1"}, s.Measurements().IDs())
	assert.Equal(t, "0.63 m", s.Rows()[0].Text)

	require.Len(t, rec.events, 4)
	assert.Equal(t, "m-1", rec.events[2].ID, "recorded with the committed id")
	assert.Equal(t, []int64{1, 2, 3, 4}, rec.seqs)
}

func TestEngine_RefusedEventsAreLoggedAndSkipped(t *testing.T) {
	rec := &memRecorder{}
	e := newTestEngine(t, WithRecorder(rec))

	bad := PointerEvent{Zoom: 0, Page: 1}
	e.Enqueue(Event{Type: EventSelectScale, Scale: "nope"})
	e.Enqueue(Event{Type: EventPointerDown, Pointer: &bad})
	e.Enqueue(Event{Type: EventSelectScale, Scale: "50"})

	runUntilStopped(t, e)

	assert.Equal(t, 2, e.Failures())
	require.Len(t, rec.events, 1)
	assert.Equal(t, "50", e.Session().Calibration().ScaleID)
}

func TestEngine_FailuresReadableWhileRunning(t *testing.T) {
	e := newTestEngine(t)
	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	for i := 0; i < 50; i++ {
		e.Enqueue(Event{Type: EventSelectScale, Scale: "nope"})
		_ = e.Failures()
	}
	require.Eventually(t, func() bool { return e.Failures() == 50 }, 2*time.Second, time.Millisecond)

	e.Stop()
	require.NoError(t, <-done)
}

func TestEngine_EnqueueAfterStop(t *testing.T) {
	e := newTestEngine(t)
	e.Stop()
	assert.False(t, e.Enqueue(Event{Type: EventUndo}))
}

func TestEngine_RunStopsOnContext(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop on cancel")
	}
}

func TestEngine_ConcurrentProducers(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				e.Enqueue(Event{Type: EventHover, ID: "h"})
				e.Enqueue(Event{Type: EventHover})
			}
		}(i)
	}
	wg.Wait()
	e.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not drain")
	}
	assert.Equal(t, 0, e.QueueLen())
	assert.Equal(t, 0, e.Failures())
}

func TestEngine_MoveCoalescingKeepsFinalState(t *testing.T) {
	events := []Event{{Type: EventPointerDown, Pointer: &PointerEvent{Zoom: 1, Page: 1}}}
	for x := 1.0; x <= 30; x++ {
		p := at(x, x, 1)
		events = append(events, Event{Type: EventPointerMove, Pointer: &p})
	}
	events = append(events, Event{Type: EventPointerUp})

	plain := newTestEngine(t)
	merged := newTestEngine(t, WithMoveCoalescing())
	for _, ev := range events {
		plain.Enqueue(ev)
		merged.Enqueue(ev)
	}
	runUntilStopped(t, plain)
	runUntilStopped(t, merged)

	assert.Equal(t, 0, plain.Coalesced())
	assert.Equal(t, 29, merged.Coalesced())

	want, err := plain.Session().State().Digest()
	require.NoError(t, err)
	got, err := merged.Session().State().Digest()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Less(t, merged.Session().Seq(), plain.Session().Seq())
}
