package path

import (
	"errors"
	"math"

	"github.com/gogpu/gpucanvas/geom"
)

// maxTriangulatePoints caps the polygon size handled by ear clipping; larger
// outlines fall back to coverage masks.
const maxTriangulatePoints = 4096

var (
	// ErrMultipleContours is returned when the path has more than one contour.
	ErrMultipleContours = errors.New("path: multiple contours")

	// ErrDegenerate is returned when the outline encloses no area.
	ErrDegenerate = errors.New("path: degenerate outline")

	// ErrSelfIntersecting is returned when outline edges cross.
	ErrSelfIntersecting = errors.New("path: self-intersecting outline")

	// ErrTooComplex is returned when the outline has too many points.
	ErrTooComplex = errors.New("path: outline too complex")
)

// Triangulation is the result of Triangulate.
type Triangulation struct {
	// Triangles holds three points per triangle.
	Triangles []geom.Point

	// Outline is the cleaned polygon with positive signed area.
	Outline Contour
}

// Triangulate splits the path into triangles. Only a single simple polygon
// is supported; anything else returns an error and the caller should fall
// back to a coverage mask.
func (p *Path) Triangulate(tolerance float64) (*Triangulation, error) {
	contours := p.Flatten(tolerance)
	if len(contours) == 0 {
		return nil, ErrDegenerate
	}
	if len(contours) > 1 {
		return nil, ErrMultipleContours
	}
	poly := cleanPolygon(contours[0])
	if len(poly) < 3 {
		return nil, ErrDegenerate
	}
	if len(poly) > maxTriangulatePoints {
		return nil, ErrTooComplex
	}
	if selfIntersects(poly) {
		return nil, ErrSelfIntersecting
	}
	area := signedArea(poly)
	if math.Abs(area) < 1e-9 {
		return nil, ErrDegenerate
	}
	if area < 0 {
		for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
	}
	tris, ok := earClip(poly)
	if !ok {
		return nil, ErrSelfIntersecting
	}
	return &Triangulation{Triangles: tris, Outline: poly}, nil
}

// cleanPolygon removes repeated and collinear points.
func cleanPolygon(c Contour) Contour {
	out := make(Contour, 0, len(c))
	for _, pt := range c {
		if len(out) > 0 && near(out[len(out)-1], pt) {
			continue
		}
		out = append(out, pt)
	}
	for len(out) > 1 && near(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	changed := true
	for changed && len(out) >= 3 {
		changed = false
		for i := 0; i < len(out) && len(out) >= 3; i++ {
			a := out[(i+len(out)-1)%len(out)]
			b := out[i]
			c := out[(i+1)%len(out)]
			if math.Abs(b.Sub(a).Cross(c.Sub(b))) < 1e-9 {
				out = append(out[:i], out[i+1:]...)
				changed = true
				i--
			}
		}
	}
	return out
}

func signedArea(poly Contour) float64 {
	var a float64
	n := len(poly)
	for i := range n {
		a += poly[i].Cross(poly[(i+1)%n])
	}
	return a / 2
}

func selfIntersects(poly Contour) bool {
	n := len(poly)
	for i := range n {
		a0, a1 := poly[i], poly[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Adjacent edges share an endpoint.
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			b0, b1 := poly[j], poly[(j+1)%n]
			if segmentsIntersect(a0, a1, b0, b1) {
				return true
			}
		}
	}
	return false
}

func segmentsIntersect(p1, p2, p3, p4 geom.Point) bool {
	d1 := p4.Sub(p3).Cross(p1.Sub(p3))
	d2 := p4.Sub(p3).Cross(p2.Sub(p3))
	d3 := p2.Sub(p1).Cross(p3.Sub(p1))
	d4 := p2.Sub(p1).Cross(p4.Sub(p1))
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	onSegment := func(a, b, c geom.Point) bool {
		return math.Min(a.X, b.X) <= c.X && c.X <= math.Max(a.X, b.X) &&
			math.Min(a.Y, b.Y) <= c.Y && c.Y <= math.Max(a.Y, b.Y)
	}
	return (d1 == 0 && onSegment(p3, p4, p1)) ||
		(d2 == 0 && onSegment(p3, p4, p2)) ||
		(d3 == 0 && onSegment(p1, p2, p3)) ||
		(d4 == 0 && onSegment(p1, p2, p4))
}

// earClip triangulates a simple polygon with positive signed area.
func earClip(poly Contour) ([]geom.Point, bool) {
	idx := make([]int, len(poly))
	for i := range idx {
		idx[i] = i
	}
	tris := make([]geom.Point, 0, (len(poly)-2)*3)
	guard := len(poly) * len(poly)
	for len(idx) > 3 {
		if guard--; guard < 0 {
			return nil, false
		}
		clipped := false
		for i := range idx {
			ia := idx[(i+len(idx)-1)%len(idx)]
			ib := idx[i]
			ic := idx[(i+1)%len(idx)]
			a, b, c := poly[ia], poly[ib], poly[ic]
			if b.Sub(a).Cross(c.Sub(b)) <= 0 {
				continue
			}
			if anyInside(poly, idx, ia, ib, ic) {
				continue
			}
			tris = append(tris, a, b, c)
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return nil, false
		}
	}
	tris = append(tris, poly[idx[0]], poly[idx[1]], poly[idx[2]])
	return tris, true
}

func anyInside(poly Contour, idx []int, ia, ib, ic int) bool {
	a, b, c := poly[ia], poly[ib], poly[ic]
	for _, j := range idx {
		if j == ia || j == ib || j == ic {
			continue
		}
		p := poly[j]
		if b.Sub(a).Cross(p.Sub(a)) >= 0 &&
			c.Sub(b).Cross(p.Sub(b)) >= 0 &&
			a.Sub(c).Cross(p.Sub(c)) >= 0 {
			return true
		}
	}
	return false
}
