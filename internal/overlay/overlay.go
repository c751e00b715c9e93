// Package overlay derives the drawable geometry for one rendered page.
//
// Project is a pure function of the measurement set, the running gesture,
// the zoom, the calibration and the hovered measurement. The rendering
// collaborator calls it again whenever any of those change.
package overlay

import (
	"github.com/golang/geo/r2"

	"github.com/roach88/takeoff/internal/calibration"
	"github.com/roach88/takeoff/internal/drag"
	"github.com/roach88/takeoff/internal/geom"
	"github.com/roach88/takeoff/internal/measure"
)

// Kind distinguishes committed measurements from the live preview.
type Kind string

const (
	KindMeasurement Kind = "measurement"
	KindPreview     Kind = "preview"
)

// Label is distance text anchored at a segment midpoint.
type Label struct {
	Text string   `json:"text"`
	At   r2.Point `json:"at"`
}

// Segment is one line to draw, in screen pixels relative to the page
// origin at the current zoom. Preview segments are drawn dashed and never
// carry a label.
type Segment struct {
	Kind  Kind     `json:"kind"`
	ID    string   `json:"id,omitempty"`
	From  r2.Point `json:"from"`
	To    r2.Point `json:"to"`
	Label *Label   `json:"label,omitempty"`
}

// Input gathers everything Project reads.
type Input struct {
	Page         int
	Measurements measure.Snapshot
	Drag         drag.Session
	Zoom         float64
	Factor       calibration.Factor
	HoveredID    string // empty: nothing hovered
}

// Project returns the segments for in.Page: one per measurement on that
// page in insertion order, labelled only when hovered, followed by the
// preview segment when a gesture with both endpoints is running on the
// page. The result is never nil. Zoom must be > 0.
func Project(in Input) ([]Segment, error) {
	if err := geom.ValidateZoom(in.Zoom); err != nil {
		return nil, err
	}

	out := []Segment{}
	for _, m := range in.Measurements.OnPage(in.Page) {
		seg := Segment{
			Kind: KindMeasurement,
			ID:   m.ID,
			From: m.Start.Scale(in.Zoom),
			To:   m.End.Scale(in.Zoom),
		}
		if in.HoveredID != "" && m.ID == in.HoveredID {
			seg.Label = &Label{
				Text: measure.FormatDistance(m, in.Factor),
				At:   geom.Midpoint(m.Start, m.End).Mul(in.Zoom),
			}
		}
		out = append(out, seg)
	}

	d := in.Drag
	if d.Active && d.Page == in.Page && d.Start != nil && d.End != nil {
		out = append(out, Segment{
			Kind: KindPreview,
			From: d.Start.Scale(in.Zoom),
			To:   d.End.Scale(in.Zoom),
		})
	}

	return out, nil
}

// Labels returns the labelled segments of segs.
func Labels(segs []Segment) []Segment {
	var out []Segment
	for _, s := range segs {
		if s.Label != nil {
			out = append(out, s)
		}
	}
	return out
}
