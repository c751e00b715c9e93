package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/takeoff/internal/ir"
)

// GoldenSnapshot captures what a golden file pins: the per-step trace and
// the canonical final state. The digest is left out; it follows from the
// state.
func GoldenSnapshot(name string, result *Result) ([]byte, error) {
	trace := make([]any, len(result.Trace))
	for i, e := range result.Trace {
		entry := map[string]any{
			"step":   e.Step,
			"action": e.Action,
			"seq":    e.Seq,
		}
		if e.ID != "" {
			entry["id"] = e.ID
		}
		if e.Error != "" {
			entry["error"] = e.Error
		}
		trace[i] = entry
	}

	return ir.MarshalCanonical(map[string]any{
		"scenario_name": name,
		"trace":         trace,
		"final":         result.Final.Canonical(),
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := GoldenSnapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}
