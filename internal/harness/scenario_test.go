package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/takeoff/internal/engine"
)

const minimalScenario = `name: minimal
description: one measurement
steps:
  - action: down
  - action: move
    x: 3
    y: 4
  - action: up
assertions:
  - type: measurement_count
    count: 1
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	require.Len(t, s.Steps, 3)
	assert.Equal(t, ActionMove, s.Steps[1].Action)
	assert.Equal(t, 3.0, s.Steps[1].X)
	assert.Nil(t, s.Steps[1].Zoom)
	assert.Equal(t, Policy{}, s.Policy)
}

func TestParseScenario_UnknownFieldRejected(t *testing.T) {
	src := `name: typo
description: misspelt field
steps:
  - action: down
    zom: 2
assertions:
  - type: measurement_count
`
	_, err := ParseScenario([]byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zom")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing name",
			src:  "description: d\nsteps: [{action: undo}]\nassertions: [{type: undo_depth}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			src:  "name: n\nsteps: [{action: undo}]\nassertions: [{type: undo_depth}]\n",
			want: "description is required",
		},
		{
			name: "no steps",
			src:  "name: n\ndescription: d\nassertions: [{type: undo_depth}]\n",
			want: "steps list is required",
		},
		{
			name: "no assertions",
			src:  "name: n\ndescription: d\nsteps: [{action: undo}]\n",
			want: "assertions list is required",
		},
		{
			name: "unknown action",
			src:  "name: n\ndescription: d\nsteps: [{action: jump}]\nassertions: [{type: undo_depth}]\n",
			want: `steps[0]: unknown action "jump"`,
		},
		{
			name: "select_scale without scale",
			src:  "name: n\ndescription: d\nsteps: [{action: select_scale}]\nassertions: [{type: undo_depth}]\n",
			want: "missing scale id",
		},
		{
			name: "unknown assertion",
			src:  "name: n\ndescription: d\nsteps: [{action: undo}]\nassertions: [{type: vibes}]\n",
			want: `unknown assertion type "vibes"`,
		},
		{
			name: "distance without index",
			src:  "name: n\ndescription: d\nsteps: [{action: undo}]\nassertions: [{type: display_distance, value: 1}]\n",
			want: "index (1-based) is required",
		},
		{
			name: "formatted distance without text",
			src:  "name: n\ndescription: d\nsteps: [{action: undo}]\nassertions: [{type: formatted_distance, index: 1}]\n",
			want: "text is required",
		},
		{
			name: "bad redo order",
			src:  "name: n\ndescription: d\npolicy: {redo_order: random}\nsteps: [{action: undo}]\nassertions: [{type: undo_depth}]\n",
			want: "policy.redo_order",
		},
		{
			name: "bad zero length policy",
			src:  "name: n\ndescription: d\npolicy: {zero_length: maybe}\nsteps: [{action: undo}]\nassertions: [{type: undo_depth}]\n",
			want: "policy.zero_length",
		},
		{
			name: "duplicate ids",
			src:  "name: n\ndescription: d\nids: [A, B, A]\nsteps: [{action: undo}]\nassertions: [{type: undo_depth}]\n",
			want: `ids[2]: duplicate id "A"`,
		},
		{
			name: "empty id",
			src:  "name: n\ndescription: d\nids: [A, \"\"]\nsteps: [{action: undo}]\nassertions: [{type: undo_depth}]\n",
			want: "ids[1] is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_ExpectErrorSkipsEventValidation(t *testing.T) {
	src := `name: n
description: d
steps:
  - action: select_scale
    expect_error: INVALID_EVENT
assertions:
  - type: calibration
`
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "INVALID_EVENT", s.Steps[0].ExpectError)
}

func TestStepEvent(t *testing.T) {
	zoom, page := 2.5, 3
	ev, err := Step{Action: ActionDown, X: 10, Y: 20, OriginX: 5, Zoom: &zoom, Page: &page}.Event()
	require.NoError(t, err)
	assert.Equal(t, engine.EventPointerDown, ev.Type)
	assert.Equal(t, &engine.PointerEvent{ScreenX: 10, ScreenY: 20, OriginX: 5, Zoom: 2.5, Page: 3}, ev.Pointer)

	ev, err = Step{Action: ActionMove}.Event()
	require.NoError(t, err)
	assert.Equal(t, 1.0, ev.Pointer.Zoom)
	assert.Equal(t, 1, ev.Pointer.Page)

	ev, err = Step{Action: ActionHover, ID: "a"}.Event()
	require.NoError(t, err)
	assert.Equal(t, engine.Event{Type: engine.EventHover, ID: "a"}, ev)

	ev, err = Step{Action: ActionLoadDocument, Document: "x.pdf"}.Event()
	require.NoError(t, err)
	assert.Equal(t, "x.pdf", ev.Document)

	ev, err = Step{Action: ActionUp, ID: "ignored"}.Event()
	require.NoError(t, err)
	assert.Empty(t, ev.ID)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	second := []byte(minimalScenario)
	first := []byte("name: alpha\ndescription: d\nsteps: [{action: undo}]\nassertions: [{type: undo_depth}]\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), second, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), first, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	scenarios, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "alpha", scenarios[0].Name)
	assert.Equal(t, "minimal", scenarios[1].Name)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.yaml"), []byte("name: broken\n"), 0o644))
	_, err = LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c.yaml")
}

func TestAssertionErrorFormat(t *testing.T) {
	err := &AssertionError{Type: AssertUndoDepth, Expected: "1", Actual: "0"}
	assert.Equal(t, "Assertion failed: undo_depth\n  Expected: 1\n  Actual: 0", err.Error())
}
