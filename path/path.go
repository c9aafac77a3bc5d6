package path

import (
	"math"

	"github.com/gogpu/gpucanvas/geom"
)

// Element represents a single element in a path.
type Element interface {
	isElement()
}

// MoveTo starts a new contour.
type MoveTo struct {
	Point geom.Point
}

func (MoveTo) isElement() {}

// LineTo draws a line to a point.
type LineTo struct {
	Point geom.Point
}

func (LineTo) isElement() {}

// QuadTo draws a quadratic Bezier curve.
type QuadTo struct {
	Control geom.Point
	Point   geom.Point
}

func (QuadTo) isElement() {}

// CubicTo draws a cubic Bezier curve.
type CubicTo struct {
	Control1 geom.Point
	Control2 geom.Point
	Point    geom.Point
}

func (CubicTo) isElement() {}

// Close closes the current contour.
type Close struct{}

func (Close) isElement() {}

type shapeKind uint8

const (
	shapeNone shapeKind = iota
	shapeRRect
)

// Path represents a vector path.
type Path struct {
	elements []Element
	start    geom.Point
	current  geom.Point

	// Set when the whole path was produced by AddRRect or AddOval.
	kind  shapeKind
	rrect geom.RRect
}

// New creates a new empty path.
func New() *Path {
	return &Path{elements: make([]Element, 0, 16)}
}

func (p *Path) mutated() {
	p.kind = shapeNone
}

// MoveTo starts a new contour at (x, y).
func (p *Path) MoveTo(x, y float64) {
	pt := geom.Pt(x, y)
	p.elements = append(p.elements, MoveTo{Point: pt})
	p.start = pt
	p.current = pt
	p.mutated()
}

// LineTo draws a line to (x, y). Without a current contour it behaves
// like MoveTo at the origin first.
func (p *Path) LineTo(x, y float64) {
	p.ensureContour()
	pt := geom.Pt(x, y)
	p.elements = append(p.elements, LineTo{Point: pt})
	p.current = pt
	p.mutated()
}

// QuadTo draws a quadratic Bezier curve.
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.ensureContour()
	pt := geom.Pt(x, y)
	p.elements = append(p.elements, QuadTo{Control: geom.Pt(cx, cy), Point: pt})
	p.current = pt
	p.mutated()
}

// CubicTo draws a cubic Bezier curve.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.ensureContour()
	pt := geom.Pt(x, y)
	p.elements = append(p.elements, CubicTo{
		Control1: geom.Pt(c1x, c1y),
		Control2: geom.Pt(c2x, c2y),
		Point:    pt,
	})
	p.current = pt
	p.mutated()
}

// Close closes the current contour by returning to its start point.
func (p *Path) Close() {
	if len(p.elements) == 0 {
		return
	}
	if _, ok := p.elements[len(p.elements)-1].(Close); ok {
		return
	}
	p.elements = append(p.elements, Close{})
	p.current = p.start
	p.mutated()
}

func (p *Path) ensureContour() {
	if len(p.elements) == 0 {
		p.elements = append(p.elements, MoveTo{Point: p.current})
		p.start = p.current
		return
	}
	if _, ok := p.elements[len(p.elements)-1].(Close); ok {
		p.elements = append(p.elements, MoveTo{Point: p.start})
	}
}

// Reset removes all elements from the path.
func (p *Path) Reset() {
	p.elements = p.elements[:0]
	p.start = geom.Point{}
	p.current = geom.Point{}
	p.mutated()
}

// Elements returns the path elements. The slice must not be modified.
func (p *Path) Elements() []Element {
	return p.elements
}

// IsEmpty reports whether the path has no drawing segments.
func (p *Path) IsEmpty() bool {
	if p == nil {
		return true
	}
	for _, e := range p.elements {
		switch e.(type) {
		case LineTo, QuadTo, CubicTo:
			return false
		}
	}
	return true
}

// Bounds returns the bounding box of all points, including control points.
func (p *Path) Bounds() geom.Rect {
	var pts []geom.Point
	for _, e := range p.elements {
		switch e := e.(type) {
		case MoveTo:
			pts = append(pts, e.Point)
		case LineTo:
			pts = append(pts, e.Point)
		case QuadTo:
			pts = append(pts, e.Control, e.Point)
		case CubicTo:
			pts = append(pts, e.Control1, e.Control2, e.Point)
		}
	}
	return geom.BoundsOf(pts...)
}

// Transform returns a new path with every point mapped through m.
func (p *Path) Transform(m geom.Matrix) *Path {
	result := New()
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			pt := m.TransformPoint(e.Point)
			result.MoveTo(pt.X, pt.Y)
		case LineTo:
			pt := m.TransformPoint(e.Point)
			result.LineTo(pt.X, pt.Y)
		case QuadTo:
			ctrl := m.TransformPoint(e.Control)
			pt := m.TransformPoint(e.Point)
			result.QuadTo(ctrl.X, ctrl.Y, pt.X, pt.Y)
		case CubicTo:
			c1 := m.TransformPoint(e.Control1)
			c2 := m.TransformPoint(e.Control2)
			pt := m.TransformPoint(e.Point)
			result.CubicTo(c1.X, c1.Y, c2.X, c2.Y, pt.X, pt.Y)
		case Close:
			result.Close()
		}
	}
	if p.kind == shapeRRect && m.IsScaleTranslate() {
		result.kind = shapeRRect
		result.rrect = geom.RRect{
			Rect:    m.MapRect(p.rrect.Rect),
			RadiusX: p.rrect.RadiusX * math.Abs(m.A),
			RadiusY: p.rrect.RadiusY * math.Abs(m.E),
		}
	}
	return result
}

// AddPath appends every element of other.
func (p *Path) AddPath(other *Path) {
	if other == nil {
		return
	}
	for _, elem := range other.elements {
		switch e := elem.(type) {
		case MoveTo:
			p.MoveTo(e.Point.X, e.Point.Y)
		case LineTo:
			p.LineTo(e.Point.X, e.Point.Y)
		case QuadTo:
			p.QuadTo(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case CubicTo:
			p.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case Close:
			p.Close()
		}
	}
}

// AddRect adds a closed clockwise rectangle contour.
func (p *Path) AddRect(r geom.Rect) {
	p.MoveTo(r.Left, r.Top)
	p.LineTo(r.Right, r.Top)
	p.LineTo(r.Right, r.Bottom)
	p.LineTo(r.Left, r.Bottom)
	p.Close()
}

// kappa is the cubic Bezier control point distance for circle approximation.
// Equal to 4/3 * (sqrt(2) - 1).
const kappa = 0.5522847498307936

// AddRRect adds a rounded rectangle contour. A zero radius adds a plain
// rectangle.
func (p *Path) AddRRect(rr geom.RRect) {
	wasEmpty := len(p.elements) == 0
	if rr.IsRect() {
		p.AddRect(rr.Rect)
		return
	}
	r := rr.Rect
	rx, ry := rr.RadiusX, rr.RadiusY
	ox, oy := rx*kappa, ry*kappa

	p.MoveTo(r.Left+rx, r.Top)
	p.LineTo(r.Right-rx, r.Top)
	p.CubicTo(r.Right-rx+ox, r.Top, r.Right, r.Top+ry-oy, r.Right, r.Top+ry)
	p.LineTo(r.Right, r.Bottom-ry)
	p.CubicTo(r.Right, r.Bottom-ry+oy, r.Right-rx+ox, r.Bottom, r.Right-rx, r.Bottom)
	p.LineTo(r.Left+rx, r.Bottom)
	p.CubicTo(r.Left+rx-ox, r.Bottom, r.Left, r.Bottom-ry+oy, r.Left, r.Bottom-ry)
	p.LineTo(r.Left, r.Top+ry)
	p.CubicTo(r.Left, r.Top+ry-oy, r.Left+rx-ox, r.Top, r.Left+rx, r.Top)
	p.Close()

	if wasEmpty {
		p.kind = shapeRRect
		p.rrect = rr
	}
}

// AddOval adds an ellipse inscribed in r.
func (p *Path) AddOval(r geom.Rect) {
	p.AddRRect(geom.NewRRect(r, r.Width()/2, r.Height()/2))
}

// AddCircle adds a circle.
func (p *Path) AddCircle(cx, cy, radius float64) {
	p.AddOval(geom.Rect{Left: cx - radius, Top: cy - radius, Right: cx + radius, Bottom: cy + radius})
}

// Clone creates a deep copy of the path.
func (p *Path) Clone() *Path {
	result := New()
	result.elements = make([]Element, len(p.elements))
	copy(result.elements, p.elements)
	result.start = p.start
	result.current = p.current
	result.kind = p.kind
	result.rrect = p.rrect
	return result
}
