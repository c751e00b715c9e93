package drag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/takeoff/internal/geom"
)

func pt(x, y float64, page int) geom.Point {
	return geom.Point{X: x, Y: y, Page: page}
}

func TestMachine_CommitFlow(t *testing.T) {
	m := NewMachine(RejectZeroLength)
	assert.Equal(t, Idle, m.State())

	assert.False(t, m.Begin(pt(0, 0, 1)))
	assert.Equal(t, Dragging, m.State())

	s := m.Session()
	require.NotNil(t, s.Start)
	assert.Nil(t, s.End, "end is cleared on begin")
	assert.Equal(t, 1, s.Page)
	assert.True(t, s.Active)

	assert.True(t, m.Update(pt(1, 1, 1)))
	assert.True(t, m.Update(pt(3, 4, 1)))

	out := m.End()
	assert.Equal(t, Committed, out.Kind)
	assert.Equal(t, pt(0, 0, 1), out.Start)
	assert.Equal(t, pt(3, 4, 1), out.End)
	assert.Equal(t, 5.0, out.Distance)
	assert.Empty(t, out.Reason)

	assert.Equal(t, Idle, m.State())
	assert.Equal(t, Session{}, m.Session())
}

func TestMachine_ClickWithoutMovementAborts(t *testing.T) {
	m := NewMachine(AllowZeroLength)
	m.Begin(pt(5, 5, 2))

	out := m.End()
	assert.Equal(t, Aborted, out.Kind)
	assert.Equal(t, ReasonNoMovement, out.Reason)
	assert.Equal(t, Idle, m.State())
}

func TestMachine_ZeroLengthPolicy(t *testing.T) {
	t.Run("reject", func(t *testing.T) {
		m := NewMachine(RejectZeroLength)
		m.Begin(pt(5, 5, 1))
		m.Update(pt(5, 5, 1))

		out := m.End()
		assert.Equal(t, Aborted, out.Kind)
		assert.Equal(t, ReasonZeroLength, out.Reason)
	})

	t.Run("allow", func(t *testing.T) {
		m := NewMachine(AllowZeroLength)
		m.Begin(pt(5, 5, 1))
		m.Update(pt(5, 5, 1))

		out := m.End()
		assert.Equal(t, Committed, out.Kind)
		assert.Equal(t, 0.0, out.Distance)
	})

	t.Run("move away and back", func(t *testing.T) {
		m := NewMachine(RejectZeroLength)
		m.Begin(pt(5, 5, 1))
		m.Update(pt(9, 9, 1))
		m.Update(pt(5, 5, 1))

		out := m.End()
		assert.Equal(t, Aborted, out.Kind, "only the final end point counts")
	})
}

func TestMachine_CrossPageUpdatesIgnored(t *testing.T) {
	m := NewMachine(RejectZeroLength)
	m.Begin(pt(0, 0, 1))
	require.True(t, m.Update(pt(6, 8, 1)))

	assert.False(t, m.Update(pt(100, 100, 2)))

	s := m.Session()
	require.NotNil(t, s.End)
	assert.Equal(t, pt(6, 8, 1), *s.End, "end holds last in-page value")
	assert.Equal(t, 1, s.Page)

	out := m.End()
	assert.Equal(t, Committed, out.Kind)
	assert.Equal(t, 1, out.End.Page)
	assert.Equal(t, 10.0, out.Distance)
}

func TestMachine_CrossPageOnlyMovementAborts(t *testing.T) {
	m := NewMachine(RejectZeroLength)
	m.Begin(pt(0, 0, 1))
	m.Update(pt(10, 10, 3))

	out := m.End()
	assert.Equal(t, Aborted, out.Kind)
	assert.Equal(t, ReasonNoMovement, out.Reason)
}

func TestMachine_BeginWhileDraggingSupersedes(t *testing.T) {
	m := NewMachine(RejectZeroLength)
	m.Begin(pt(0, 0, 1))
	m.Update(pt(4, 4, 1))

	assert.True(t, m.Begin(pt(10, 10, 2)))

	s := m.Session()
	require.NotNil(t, s.Start)
	assert.Equal(t, pt(10, 10, 2), *s.Start)
	assert.Nil(t, s.End)
	assert.Equal(t, 2, s.Page)
}

func TestMachine_Abort(t *testing.T) {
	m := NewMachine(RejectZeroLength)
	assert.False(t, m.Abort(), "abort while idle is a no-op")

	m.Begin(pt(0, 0, 1))
	m.Update(pt(3, 4, 1))
	assert.True(t, m.Abort())
	assert.Equal(t, Idle, m.State())

	out := m.End()
	assert.Equal(t, Aborted, out.Kind)
	assert.Equal(t, ReasonNotDragging, out.Reason)
}

func TestMachine_UpdateWhileIdle(t *testing.T) {
	m := NewMachine(RejectZeroLength)
	assert.False(t, m.Update(pt(1, 1, 1)))
	assert.Equal(t, Idle, m.State())
}

func TestSessionIsACopy(t *testing.T) {
	m := NewMachine(RejectZeroLength)
	m.Begin(pt(1, 2, 1))
	m.Update(pt(3, 4, 1))

	s := m.Session()
	s.Start.X = 99
	s.End.Y = 99

	again := m.Session()
	assert.Equal(t, 1.0, again.Start.X)
	assert.Equal(t, 4.0, again.End.Y)
}

func TestStateAndKindStrings(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "dragging", Dragging.String())
	assert.Equal(t, "committed", Committed.String())
	assert.Equal(t, "aborted", Aborted.String())
}
