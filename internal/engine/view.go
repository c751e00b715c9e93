package engine

import (
	"github.com/roach88/takeoff/internal/calibration"
	"github.com/roach88/takeoff/internal/drag"
	"github.com/roach88/takeoff/internal/geom"
	"github.com/roach88/takeoff/internal/ir"
	"github.com/roach88/takeoff/internal/measure"
)

// StateView is a point-in-time copy of the observable session state.
type StateView struct {
	Document     string                `json:"document,omitempty"`
	Calibration  calibration.Factor    `json:"calibration"`
	Measurements []measure.Measurement `json:"measurements"`
	Rows         []measure.Row         `json:"rows"`
	Drag         drag.Session          `json:"drag"`
	Hovered      string                `json:"hovered,omitempty"`
	UndoDepth    int                   `json:"undo_depth"`
	RedoDepth    int                   `json:"redo_depth"`
}

// State returns a StateView of the session.
func (s *Session) State() StateView {
	snap := s.store.List()
	return StateView{
		Document:     s.doc,
		Calibration:  s.factor,
		Measurements: snap.Measurements(),
		Rows:         measure.Rows(snap, s.factor),
		Drag:         s.drag.Session(),
		Hovered:      s.hovered,
		UndoDepth:    s.history.UndoDepth(),
		RedoDepth:    s.history.RedoDepth(),
	}
}

// Canonical converts the view into the generic form ir.MarshalCanonical
// accepts. Optional fields are omitted rather than null.
func (v StateView) Canonical() map[string]any {
	ms := make([]any, len(v.Measurements))
	for i, m := range v.Measurements {
		row := v.Rows[i]
		ms[i] = map[string]any{
			"id":             m.ID,
			"page":           m.Page(),
			"start":          canonicalPoint(m.Start),
			"end":            canonicalPoint(m.End),
			"pixel_distance": m.PixelDistance,
			"distance":       row.Distance,
			"text":           row.Text,
		}
	}

	cal := map[string]any{"calibrated": v.Calibration.Calibrated()}
	if v.Calibration.Calibrated() {
		cal["scale"] = v.Calibration.ScaleID
		cal["factor"] = v.Calibration.Value
		cal["unit"] = v.Calibration.Unit
	}

	dr := map[string]any{"active": v.Drag.Active}
	if v.Drag.Active {
		dr["page"] = v.Drag.Page
		if v.Drag.Start != nil {
			dr["start"] = canonicalPoint(*v.Drag.Start)
		}
		if v.Drag.End != nil {
			dr["end"] = canonicalPoint(*v.Drag.End)
		}
	}

	out := map[string]any{
		"version":      ir.StateVersion,
		"calibration":  cal,
		"measurements": ms,
		"drag":         dr,
		"undo_depth":   v.UndoDepth,
		"redo_depth":   v.RedoDepth,
	}
	if v.Document != "" {
		out["document"] = v.Document
	}
	if v.Hovered != "" {
		out["hovered"] = v.Hovered
	}
	return out
}

// MarshalCanonical renders the view as canonical JSON.
func (v StateView) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(v.Canonical())
}

// Digest hashes the canonical view. Two sessions with equal digests are
// observably identical.
func (v StateView) Digest() (string, error) {
	return ir.StateDigest(v.Canonical())
}

func canonicalPoint(p geom.Point) map[string]any {
	return map[string]any{"x": p.X, "y": p.Y, "page": p.Page}
}
