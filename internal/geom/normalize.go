package geom

import (
	"fmt"
	"math"
)

// InvalidScaleError reports a zoom factor that is not strictly positive.
//
// The zoom control is owned by the page-rendering collaborator, which is
// expected to keep it in a positive range. Receiving one of these means the
// host has a bug; it is never clamped.
type InvalidScaleError struct {
	Zoom float64
}

func (e *InvalidScaleError) Error() string {
	return fmt.Sprintf("invalid zoom scale %g: must be > 0", e.Zoom)
}

// InvalidPageError reports a page number below 1.
type InvalidPageError struct {
	Page int
}

func (e *InvalidPageError) Error() string {
	return fmt.Sprintf("invalid page %d: pages are 1-indexed", e.Page)
}

// ValidateZoom returns an *InvalidScaleError unless zoom is a finite
// positive number.
func ValidateZoom(zoom float64) error {
	if !(zoom > 0) || math.IsInf(zoom, 1) {
		return &InvalidScaleError{Zoom: zoom}
	}
	return nil
}

// Normalize converts a pointer position, given in screen pixels, into a
// page-local Point at zoom 1.0:
//
//	x = (screenX - originX) / zoom
//	y = (screenY - originY) / zoom
//
// originX/originY is the top-left corner of the rendered page's bounding
// box in the same screen space as the pointer. Normalize is pure.
func Normalize(screenX, screenY, originX, originY, zoom float64, page int) (Point, error) {
	if err := ValidateZoom(zoom); err != nil {
		return Point{}, err
	}
	if page < 1 {
		return Point{}, &InvalidPageError{Page: page}
	}
	return Point{
		X:    (screenX - originX) / zoom,
		Y:    (screenY - originY) / zoom,
		Page: page,
	}, nil
}
