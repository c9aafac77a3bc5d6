package path

import "github.com/gogpu/gpucanvas/geom"

// Contains reports whether (x, y) is inside the path under the non-zero
// winding rule. Open contours are treated as closed.
func (p *Path) Contains(x, y float64) bool {
	return Winding(p.Flatten(DefaultTolerance), x, y) != 0
}

// Winding returns the winding number of the contours around (x, y).
func Winding(contours []Contour, x, y float64) int {
	w := 0
	for _, c := range contours {
		n := len(c)
		for i := range n {
			a, b := c[i], c[(i+1)%n]
			if a.Y <= y {
				if b.Y > y && isLeft(a, b, x, y) > 0 {
					w++
				}
			} else if b.Y <= y && isLeft(a, b, x, y) < 0 {
				w--
			}
		}
	}
	return w
}

func isLeft(a, b geom.Point, x, y float64) float64 {
	return (b.X-a.X)*(y-a.Y) - (x-a.X)*(b.Y-a.Y)
}

// ContainsRect reports whether all of r is inside the path under the
// non-zero winding rule: no flattened edge touches r and its center is
// inside.
func (p *Path) ContainsRect(r geom.Rect) bool {
	if r.IsEmpty() {
		return false
	}
	contours := p.Flatten(DefaultTolerance)
	corners := [4]geom.Point{
		geom.Pt(r.Left, r.Top), geom.Pt(r.Right, r.Top),
		geom.Pt(r.Right, r.Bottom), geom.Pt(r.Left, r.Bottom),
	}
	for _, c := range contours {
		n := len(c)
		for i := range n {
			a, b := c[i], c[(i+1)%n]
			if r.ContainsPoint(a) {
				return false
			}
			for j := range corners {
				if segmentsIntersect(a, b, corners[j], corners[(j+1)%4]) {
					return false
				}
			}
		}
	}
	ctr := r.Center()
	return Winding(contours, ctr.X, ctr.Y) != 0
}
