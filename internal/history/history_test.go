package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/takeoff/internal/geom"
	"github.com/roach88/takeoff/internal/measure"
)

// fixture drives a store + manager the way the session does.
type fixture struct {
	t     *testing.T
	store *measure.Store
	h     *Manager
	n     int
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	return &fixture{t: t, store: measure.NewStore(), h: New(opts...)}
}

func (f *fixture) commit() {
	f.t.Helper()
	f.n++
	m, err := measure.New(fmt.Sprintf("m-%d", f.n),
		geom.Point{X: 0, Y: 0, Page: 1},
		geom.Point{X: float64(f.n), Y: 0, Page: 1})
	require.NoError(f.t, err)
	f.h.PushUndo(f.store.Append(m))
}

func (f *fixture) undo() bool {
	snap, ok := f.h.Undo(f.store.List())
	if ok {
		f.store.ReplaceAll(snap)
	}
	return ok
}

func (f *fixture) redo() bool {
	snap, ok := f.h.Redo(f.store.List())
	if ok {
		f.store.ReplaceAll(snap)
	}
	return ok
}

func (f *fixture) ids() []string {
	return f.store.List().IDs()
}

func TestUndoRedo_InversePair(t *testing.T) {
	for commits := 1; commits <= 5; commits++ {
		t.Run(fmt.Sprintf("%d commits", commits), func(t *testing.T) {
			f := newFixture(t)
			for i := 0; i < commits-1; i++ {
				f.commit()
			}
			pre := f.store.List()
			f.commit()
			post := f.store.List()

			require.True(t, f.undo())
			assert.True(t, f.store.List().Equal(pre))

			require.True(t, f.redo())
			assert.True(t, f.store.List().Equal(post))
		})
	}
}

func TestUndoRedo_MultiStepLIFO(t *testing.T) {
	f := newFixture(t, WithRedoOrder(RedoLIFO))
	f.commit()
	f.commit()
	f.commit()
	final := f.store.List()

	f.undo()
	f.undo()
	f.undo()
	assert.Empty(t, f.ids())
	assert.Equal(t, 3, f.h.RedoDepth())

	f.redo()
	assert.Equal(t, []string{"m-1"}, f.ids())
	f.redo()
	assert.Equal(t, []string{"m-1", "m-2"}, f.ids())
	f.redo()
	assert.True(t, f.store.List().Equal(final))
	assert.False(t, f.h.CanRedo())
	assert.Equal(t, 3, f.h.UndoDepth())
}

func TestUndoRedo_FIFOByDefault(t *testing.T) {
	f := newFixture(t)
	f.commit()
	f.commit()
	f.commit()
	f.undo()
	f.undo()
	assert.Equal(t, []string{"m-1"}, f.ids())

	f.redo()
	assert.Equal(t, []string{"m-1", "m-2", "m-3"}, f.ids(), "first undo's snapshot comes back first")
	assert.Equal(t, RedoFIFO, f.h.Order())
}

func TestUndoRedo_FIFOOrder(t *testing.T) {
	f := newFixture(t, WithRedoOrder(RedoFIFO))
	f.commit()
	f.commit()

	f.undo() // redo queue: [m-1,m-2]
	f.undo() // redo queue: [m-1,m-2], [m-1]
	assert.Empty(t, f.ids())

	f.redo()
	assert.Equal(t, []string{"m-1", "m-2"}, f.ids(), "oldest queued snapshot first")
	f.redo()
	assert.Equal(t, []string{"m-1"}, f.ids())
	assert.Equal(t, RedoFIFO, f.h.Order())
}

func TestCommitClearsRedo(t *testing.T) {
	f := newFixture(t)
	f.commit()
	f.commit()
	f.undo()
	require.True(t, f.h.CanRedo())

	f.commit()
	assert.False(t, f.h.CanRedo())
	assert.Equal(t, 0, f.h.RedoDepth())
	assert.Equal(t, []string{"m-1", "m-3"}, f.ids())
}

func TestUndoRedo_DoNotClearEachOther(t *testing.T) {
	f := newFixture(t)
	f.commit()
	f.commit()

	f.undo()
	assert.Equal(t, 1, f.h.UndoDepth())
	assert.Equal(t, 1, f.h.RedoDepth())

	f.redo()
	assert.Equal(t, 2, f.h.UndoDepth())
	assert.Equal(t, 0, f.h.RedoDepth())

	f.undo()
	f.undo()
	assert.Equal(t, 0, f.h.UndoDepth())
	assert.Equal(t, 2, f.h.RedoDepth())
}

func TestEmptyStacksAreNoOps(t *testing.T) {
	f := newFixture(t)

	assert.False(t, f.undo())
	assert.False(t, f.redo())
	assert.Empty(t, f.ids())
	assert.False(t, f.h.CanUndo())
	assert.False(t, f.h.CanRedo())
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	f.commit()
	f.commit()
	f.undo()

	f.h.Reset()
	assert.Equal(t, 0, f.h.UndoDepth())
	assert.Equal(t, 0, f.h.RedoDepth())
}

func TestWithLimit_DropsOldest(t *testing.T) {
	f := newFixture(t, WithLimit(2))
	f.commit()
	f.commit()
	f.commit()
	assert.Equal(t, 2, f.h.UndoDepth())

	f.undo()
	f.undo()
	assert.Equal(t, []string{"m-1"}, f.ids(), "the pre-m-1 snapshot was dropped")
	assert.False(t, f.undo())
}

func TestRedoOrderString(t *testing.T) {
	assert.Equal(t, "lifo", RedoLIFO.String())
	assert.Equal(t, "fifo", RedoFIFO.String())
}
