package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateView_Canonical(t *testing.T) {
	s := newTestSession(t)
	drawLine(t, s, at(0, 0, 1), at(3, 4, 1))

	got, err := s.State().MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t,
		`{"calibration":{"calibrated":false},"drag":{"active":false},`+
			`"measurements":[{"distance":5,"end":{"page":1,"x":3,"y":4},"id":"m-1","page":1,`+
			`"pixel_distance":5,"start":{"page":1,"x":0,"y":0},"text":"5.00"}],`+
			`"redo_depth":0,"undo_depth":1,"version":"1"}`,
		string(got))
}

func TestStateView_CanonicalCalibratedWithDrag(t *testing.T) {
	s := newTestSession(t)
	drawLine(t, s, at(0, 0, 1), at(3, 4, 1))
	require.NoError(t, s.SelectScale("100"))
	require.NoError(t, s.PointerDown(at(1, 1, 2)))
	s.Hover("m-1")

	c := s.State().Canonical()
	assert.Equal(t, map[string]any{
		"calibrated": true, "scale": "100", "factor": 0.125, "unit": "m",
	}, c["calibration"])
	assert.Equal(t, map[string]any{
		"active": true, "page": 2, "start": map[string]any{"x": 1.0, "y": 1.0, "page": 2},
	}, c["drag"])
	assert.Equal(t, "m-1", c["hovered"])
	assert.NotContains(t, c, "document")
}

func TestStateView_DigestTracksState(t *testing.T) {
	a := newTestSession(t)
	b := newTestSession(t)
	drawLine(t, a, at(0, 0, 1), at(3, 4, 1))
	drawLine(t, b, at(0, 0, 1), at(3, 4, 1))

	da, err := a.State().Digest()
	require.NoError(t, err)
	db, err := b.State().Digest()
	require.NoError(t, err)
	assert.Equal(t, da, db)

	require.NoError(t, b.SelectScale("100"))
	db, err = b.State().Digest()
	require.NoError(t, err)
	assert.NotEqual(t, da, db, "calibration is part of the observable state")
}
