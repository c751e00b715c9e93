// Package measure holds committed measurements and derives their display
// distances.
//
// A Measurement's PixelDistance is computed once when it is created and is
// the canonical stored value; it is never recomputed from the points.
// Display distances are derived on demand from the session's calibration,
// so changing calibration reinterprets every measurement without touching
// stored values.
package measure

import (
	"fmt"

	"github.com/roach88/takeoff/internal/geom"
)

// CrossPageError is returned when the two points of a measurement are on
// different pages.
type CrossPageError struct {
	StartPage, EndPage int
}

func (e *CrossPageError) Error() string {
	return fmt.Sprintf("measurement spans pages %d and %d", e.StartPage, e.EndPage)
}

// Measurement is a committed two-point linear measurement.
type Measurement struct {
	ID            string     `json:"id"`
	Start         geom.Point `json:"start"`
	End           geom.Point `json:"end"`
	PixelDistance float64    `json:"pixel_distance"`
}

// New builds a measurement between start and end, computing its pixel
// distance. Both points must be on the same page.
func New(id string, start, end geom.Point) (Measurement, error) {
	if id == "" {
		return Measurement{}, fmt.Errorf("measurement id is required")
	}
	if !start.SamePage(end) {
		return Measurement{}, &CrossPageError{StartPage: start.Page, EndPage: end.Page}
	}
	return Measurement{
		ID:            id,
		Start:         start,
		End:           end,
		PixelDistance: geom.Distance(start, end),
	}, nil
}

// Page returns the page both points sit on.
func (m Measurement) Page() int {
	return m.Start.Page
}
