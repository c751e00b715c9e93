package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/roach88/takeoff/internal/engine"
	"github.com/roach88/takeoff/internal/overlay"
)

// distanceTolerance absorbs float noise in display_distance checks; display
// values are already rounded to hundredths.
const distanceTolerance = 1e-9

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against s and returns the
// failure messages (empty when all hold).
func EvaluateAssertions(s *engine.Session, assertions []Assertion) []string {
	errs := []string{}
	for i, a := range assertions {
		if err := evaluate(s, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(s *engine.Session, a Assertion) error {
	switch a.Type {
	case AssertMeasurementCount:
		return expectCount(a.Type, a.Count, s.Measurements().Len())
	case AssertUndoDepth:
		return expectCount(a.Type, a.Count, s.UndoDepth())
	case AssertRedoDepth:
		return expectCount(a.Type, a.Count, s.RedoDepth())
	case AssertMeasurementIDs:
		return assertMeasurementIDs(s, a)
	case AssertDisplayDistance, AssertFormattedDistance:
		return assertDistance(s, a)
	case AssertCalibration:
		return assertCalibration(s, a)
	case AssertOverlayCount, AssertOverlayLabel:
		return assertOverlay(s, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func expectCount(typ string, want, got int) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%d", want),
		Actual:   fmt.Sprintf("%d", got),
	}
}

func assertMeasurementIDs(s *engine.Session, a Assertion) error {
	got := s.Measurements().IDs()
	want := a.IDs
	if want == nil {
		want = []string{}
	}
	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", got),
	}
}

func assertDistance(s *engine.Session, a Assertion) error {
	rows := s.Rows()
	if a.Index > len(rows) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("measurement #%d", a.Index),
			Actual:   fmt.Sprintf("%d measurements", len(rows)),
		}
	}
	row := rows[a.Index-1]

	if a.Type == AssertDisplayDistance {
		if math.Abs(row.Distance-a.Value) <= distanceTolerance {
			return nil
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("#%d = %g", a.Index, a.Value),
			Actual:   fmt.Sprintf("%g", row.Distance),
		}
	}

	if row.Text == a.Text {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("#%d = %q", a.Index, a.Text),
		Actual:   fmt.Sprintf("%q", row.Text),
	}
}

func assertCalibration(s *engine.Session, a Assertion) error {
	f := s.Calibration()
	got := f.ScaleID
	if !f.Calibrated() {
		got = ""
	}
	if got == a.Scale {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: describeScale(a.Scale),
		Actual:   describeScale(got),
	}
}

func describeScale(id string) string {
	if id == "" {
		return "uncalibrated"
	}
	return "scale " + id
}

func assertOverlay(s *engine.Session, a Assertion) error {
	page, zoom := a.Page, a.Zoom
	if page == 0 {
		page = 1
	}
	if zoom == 0 {
		zoom = 1
	}
	segs, err := s.Overlay(page, zoom)
	if err != nil {
		return err
	}

	if a.Type == AssertOverlayCount {
		return expectCount(a.Type, a.Count, len(segs))
	}

	labels := overlay.Labels(segs)
	switch {
	case a.Text == "" && len(labels) == 0:
		return nil
	case len(labels) == 1 && labels[0].Label.Text == a.Text:
		return nil
	}

	texts := make([]string, len(labels))
	for i, l := range labels {
		texts[i] = l.Label.Text
	}
	expected := "no label"
	if a.Text != "" {
		expected = fmt.Sprintf("label %q", a.Text)
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s on page %d", expected, page),
		Actual:   fmt.Sprintf("%q", texts),
	}
}
