package geom

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// Point is a page-local coordinate at zoom 1.0, tagged with its page.
type Point struct {
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
	Page int     `json:"page" yaml:"page"`
}

// Vec returns the point's coordinates as an r2 vector, dropping the page.
func (p Point) Vec() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// Scale projects the point to screen space at the given zoom.
func (p Point) Scale(zoom float64) r2.Point {
	return p.Vec().Mul(zoom)
}

// SamePage reports whether both points sit on the same page.
func (p Point) SamePage(o Point) bool {
	return p.Page == o.Page
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g p%d)", p.X, p.Y, p.Page)
}

// Distance is the Euclidean distance between a and b in page-local units.
// The page tags are ignored; callers are responsible for comparing points
// on the same page.
func Distance(a, b Point) float64 {
	return b.Vec().Sub(a.Vec()).Norm()
}

// Midpoint returns the midpoint of a and b in page-local units.
func Midpoint(a, b Point) r2.Point {
	return a.Vec().Add(b.Vec()).Mul(0.5)
}
