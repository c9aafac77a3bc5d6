package path

import (
	"math"

	"github.com/gogpu/gpucanvas/geom"
)

// DefaultTolerance is the maximum distance error allowed when flattening
// curves in device space.
const DefaultTolerance = 0.25

// maxSubdivision bounds recursion for degenerate curves.
const maxSubdivision = 16

// Contour is a flattened, implicitly closed polyline.
type Contour []geom.Point

// Flatten converts the path into polylines, one per contour. Contours with
// fewer than two points are dropped.
func (p *Path) Flatten(tolerance float64) []Contour {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	var (
		contours []Contour
		cur      Contour
		current  geom.Point
	)
	flush := func() {
		if len(cur) > 1 && near(cur[len(cur)-1], cur[0]) {
			cur = cur[:len(cur)-1]
		}
		if len(cur) >= 2 {
			contours = append(contours, cur)
		}
		cur = nil
	}
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			flush()
			current = e.Point
			cur = Contour{current}
		case LineTo:
			current = e.Point
			cur = append(cur, current)
		case QuadTo:
			cur = flattenQuad(cur, current, e.Control, e.Point, tolerance, 0)
			current = e.Point
		case CubicTo:
			cur = flattenCubic(cur, current, e.Control1, e.Control2, e.Point, tolerance, 0)
			current = e.Point
		case Close:
			flush()
		}
	}
	flush()
	return contours
}

// flattenQuad appends the points after p0 using de Casteljau subdivision.
func flattenQuad(out Contour, p0, p1, p2 geom.Point, tolerance float64, depth int) Contour {
	if depth >= maxSubdivision || pointToLineDistance(p1, p0, p2) <= tolerance {
		return append(out, p2)
	}
	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	r := q0.Lerp(q1, 0.5)
	out = flattenQuad(out, p0, q0, r, tolerance, depth+1)
	return flattenQuad(out, r, q1, p2, tolerance, depth+1)
}

func flattenCubic(out Contour, p0, p1, p2, p3 geom.Point, tolerance float64, depth int) Contour {
	d := math.Max(pointToLineDistance(p1, p0, p3), pointToLineDistance(p2, p0, p3))
	if depth >= maxSubdivision || d <= tolerance {
		return append(out, p3)
	}
	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	q2 := p2.Lerp(p3, 0.5)
	r0 := q0.Lerp(q1, 0.5)
	r1 := q1.Lerp(q2, 0.5)
	s := r0.Lerp(r1, 0.5)
	out = flattenCubic(out, p0, q0, r0, s, tolerance, depth+1)
	return flattenCubic(out, s, r1, q2, p3, tolerance, depth+1)
}

// pointToLineDistance is the perpendicular distance from p to line a-b.
func pointToLineDistance(p, a, b geom.Point) float64 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq < 1e-20 {
		return p.Sub(a).Length()
	}
	return math.Abs(ab.Cross(p.Sub(a))) / math.Sqrt(lenSq)
}
