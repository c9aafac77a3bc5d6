package path

import (
	"math"

	"github.com/gogpu/gpucanvas/geom"
)

// shapeTolerance is the maximum allowed error for shape detection.
const shapeTolerance = 1e-3

// AsRect reports whether the path is a single axis-aligned rectangle and
// returns it. The contour may be open or closed and may run in either
// direction.
func (p *Path) AsRect() (geom.Rect, bool) {
	if p == nil || len(p.elements) < 4 {
		return geom.Rect{}, false
	}
	move, ok := p.elements[0].(MoveTo)
	if !ok {
		return geom.Rect{}, false
	}
	pts := []geom.Point{move.Point}
	for i, elem := range p.elements[1:] {
		switch e := elem.(type) {
		case LineTo:
			pts = append(pts, e.Point)
		case Close:
			if i != len(p.elements)-2 {
				return geom.Rect{}, false
			}
		default:
			return geom.Rect{}, false
		}
	}
	if len(pts) == 5 && near(pts[4], pts[0]) {
		pts = pts[:4]
	}
	if len(pts) != 4 {
		return geom.Rect{}, false
	}

	// Edges must alternate between horizontal and vertical.
	horizontalFirst := math.Abs(pts[0].Y-pts[1].Y) < shapeTolerance
	for i := range 4 {
		a, b := pts[i], pts[(i+1)%4]
		horizontal := (i%2 == 0) == horizontalFirst
		if horizontal && math.Abs(a.Y-b.Y) >= shapeTolerance {
			return geom.Rect{}, false
		}
		if !horizontal && math.Abs(a.X-b.X) >= shapeTolerance {
			return geom.Rect{}, false
		}
	}
	r := geom.BoundsOf(pts...)
	if r.IsEmpty() {
		return geom.Rect{}, false
	}
	return r, true
}

// AsRRect reports whether the path is exactly one rounded rectangle or
// oval with non-zero radii. Plain rectangles report false; use AsRect.
func (p *Path) AsRRect() (geom.RRect, bool) {
	if p == nil || p.kind != shapeRRect {
		return geom.RRect{}, false
	}
	return p.rrect, true
}

func near(a, b geom.Point) bool {
	return math.Abs(a.X-b.X) < shapeTolerance && math.Abs(a.Y-b.Y) < shapeTolerance
}
