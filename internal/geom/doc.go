// Package geom holds page-local geometry for measurements.
//
// Coordinates are stored at zoom 1.0 relative to the origin of a single
// rendered page. A Point captured at any zoom level is divided by that zoom
// at capture time (see Normalize), so stored geometry stays valid when the
// viewer zooms in or out. Page numbers are 1-indexed.
//
// Vector arithmetic is delegated to github.com/golang/geo/r2.
package geom
