package stroke

import (
	"math"

	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/path"
)

// Cap specifies the shape of open contour endpoints.
type Cap int

const (
	// CapButt ends the stroke exactly at the endpoint.
	CapButt Cap = iota
	// CapRound adds a semicircle with radius = width/2.
	CapRound
	// CapSquare extends the stroke width/2 beyond the endpoint.
	CapSquare
)

// Join specifies the shape of corners between segments.
type Join int

const (
	// JoinMiter produces a sharp corner, limited by the miter limit.
	JoinMiter Join = iota
	// JoinRound produces a circular arc.
	JoinRound
	// JoinBevel cuts the corner with a straight line.
	JoinBevel
)

// Style defines the stroke geometry.
type Style struct {
	Width      float64
	Cap        Cap
	Join       Join
	MiterLimit float64
}

// DefaultStyle returns a one unit wide butt/miter stroke.
func DefaultStyle() Style {
	return Style{Width: 1, Cap: CapButt, Join: JoinMiter, MiterLimit: 4}
}

// Expander converts stroked paths to filled paths.
type Expander struct {
	style Style

	// Curve flattening tolerance.
	tolerance float64

	forward  *builder
	backward *builder
	output   *path.Path

	startPt   geom.Point
	startNorm geom.Point
	startTan  geom.Point
	lastPt    geom.Point
	lastTan   geom.Point
	lastNorm  geom.Point

	// Joins whose turn is below this threshold are skipped.
	joinThresh float64
}

// NewExpander creates an expander for the given style.
func NewExpander(style Style) *Expander {
	if style.MiterLimit <= 0 {
		style.MiterLimit = 4
	}
	return &Expander{style: style, tolerance: path.DefaultTolerance}
}

// SetTolerance sets the curve flattening tolerance. Non-positive values are
// ignored.
func (e *Expander) SetTolerance(tolerance float64) {
	if tolerance > 0 {
		e.tolerance = tolerance
	}
}

// Expand returns the fill outline of p stroked with the expander's style.
// A non-positive width yields an empty path.
func (e *Expander) Expand(p *path.Path) *path.Path {
	e.reset()
	if p == nil || e.style.Width <= 0 {
		return e.output
	}
	for _, el := range p.Elements() {
		switch elem := el.(type) {
		case path.MoveTo:
			e.finish()
			e.startPt = elem.Point
			e.lastPt = elem.Point
		case path.LineTo:
			if elem.Point != e.lastPt {
				e.segment(elem.Point)
			}
		case path.QuadTo:
			for _, pt := range e.flattenQuad(e.lastPt, elem.Control, elem.Point) {
				e.segment(pt)
			}
		case path.CubicTo:
			for _, pt := range e.flattenCubic(e.lastPt, elem.Control1, elem.Control2, elem.Point) {
				e.segment(pt)
			}
		case path.Close:
			if e.lastPt != e.startPt {
				e.segment(e.startPt)
			}
			e.finishClosed()
		}
	}
	e.finish()
	return e.output
}

// Expand strokes p with style using the default tolerance.
func Expand(p *path.Path, style Style) *path.Path {
	return NewExpander(style).Expand(p)
}

func (e *Expander) reset() {
	e.forward = &builder{}
	e.backward = &builder{}
	e.output = path.New()
	e.startPt, e.startNorm, e.startTan = geom.Point{}, geom.Point{}, geom.Point{}
	e.lastPt, e.lastTan, e.lastNorm = geom.Point{}, geom.Point{}, geom.Point{}
	if e.style.Width > 0 {
		e.joinThresh = 2 * e.tolerance / e.style.Width
	}
}

func (e *Expander) segment(to geom.Point) {
	tangent := to.Sub(e.lastPt)
	if tangent.Dot(tangent) <= 1e-10 {
		return
	}
	e.doJoin(tangent)
	e.lastTan = tangent
	e.doLine(tangent, to)
}

func (e *Expander) normal(tan geom.Point) geom.Point {
	return perp(tan).Mul(0.5 * e.style.Width / tan.Length())
}

func (e *Expander) doJoin(tan0 geom.Point) {
	norm := e.normal(tan0)
	p0 := e.lastPt

	if e.forward.isEmpty() {
		e.forward.moveTo(p0.Sub(norm))
		e.backward.moveTo(p0.Add(norm))
		e.startTan = tan0
		e.startNorm = norm
		return
	}

	ab, cd := e.lastTan, tan0
	cross := ab.Cross(cd)
	dot := ab.Dot(cd)
	hypot := math.Hypot(cross, dot)

	// Nearly straight: connect both sides without join geometry.
	if dot > 0 && math.Abs(cross) < hypot*e.joinThresh {
		e.forward.lineTo(p0.Sub(norm))
		e.backward.lineTo(p0.Add(norm))
		return
	}

	switch e.style.Join {
	case JoinBevel:
		e.forward.lineTo(p0.Sub(norm))
		e.backward.lineTo(p0.Add(norm))
	case JoinMiter:
		if 2*hypot < (hypot+dot)*e.style.MiterLimit*e.style.MiterLimit {
			e.miterPoint(p0, norm, ab, cd, cross)
		}
		e.forward.lineTo(p0.Sub(norm))
		e.backward.lineTo(p0.Add(norm))
	case JoinRound:
		lastNorm := e.normal(e.lastTan)
		angle := math.Atan2(cross, dot)
		if angle > 0 {
			e.backward.lineTo(p0.Add(norm))
			e.forward.arc(p0, lastNorm.Mul(-1), angle)
		} else {
			e.forward.lineTo(p0.Sub(norm))
			e.backward.arc(p0, lastNorm, angle)
		}
	}
}

func (e *Expander) miterPoint(p0, norm, ab, cd geom.Point, cross float64) {
	lastNorm := e.normal(ab)
	switch {
	case cross > 0:
		fpLast := p0.Sub(lastNorm)
		fpThis := p0.Sub(norm)
		h := ab.Cross(fpThis.Sub(fpLast)) / cross
		e.forward.lineTo(fpThis.Sub(cd.Mul(h)))
		e.backward.lineTo(p0)
	case cross < 0:
		fpLast := p0.Add(lastNorm)
		fpThis := p0.Add(norm)
		h := ab.Cross(fpThis.Sub(fpLast)) / cross
		e.backward.lineTo(fpThis.Sub(cd.Mul(h)))
		e.forward.lineTo(p0)
	}
}

func (e *Expander) doLine(tangent, p1 geom.Point) {
	norm := e.normal(tangent)
	e.forward.lineTo(p1.Sub(norm))
	e.backward.lineTo(p1.Add(norm))
	e.lastPt = p1
	e.lastNorm = norm
}

// finish completes an open contour with caps.
func (e *Expander) finish() {
	if e.forward.isEmpty() {
		return
	}
	e.forward.appendTo(e.output, true)
	e.applyCap(e.lastPt, e.lastNorm.Mul(-1), false)
	e.backward.appendReversedTo(e.output)
	e.applyCap(e.startPt, e.startNorm, true)

	e.forward = &builder{}
	e.backward = &builder{}
}

// finishClosed completes a closed contour as two opposite outlines.
func (e *Expander) finishClosed() {
	if e.forward.isEmpty() {
		return
	}
	e.doJoin(e.startTan)

	e.forward.appendTo(e.output, true)
	e.output.Close()

	if last, ok := e.backward.last(); ok {
		e.output.MoveTo(last.X, last.Y)
		e.backward.appendReversedTo(e.output)
		e.output.Close()
	}

	e.forward = &builder{}
	e.backward = &builder{}
}

// applyCap draws a cap around center; norm points from the side the
// output pen is on.
func (e *Expander) applyCap(center, norm geom.Point, closePath bool) {
	switch e.style.Cap {
	case CapButt:
		if !closePath {
			pt := center.Sub(norm)
			e.output.LineTo(pt.X, pt.Y)
		}
	case CapRound:
		out := &builder{}
		out.arc(center, norm, math.Pi)
		out.appendTo(e.output, false)
	case CapSquare:
		// Square corners in the frame (norm, perp(norm)) around center.
		frame := func(x, y float64) geom.Point {
			return geom.Pt(
				norm.X*x-norm.Y*y+center.X,
				norm.Y*x+norm.X*y+center.Y,
			)
		}
		p1, p2 := frame(1, 1), frame(-1, 1)
		e.output.LineTo(p1.X, p1.Y)
		e.output.LineTo(p2.X, p2.Y)
		if !closePath {
			p3 := frame(-1, 0)
			e.output.LineTo(p3.X, p3.Y)
		}
	}
	if closePath {
		e.output.Close()
	}
}

func (e *Expander) flattenQuad(p0, p1, p2 geom.Point) []geom.Point {
	q := path.New()
	q.MoveTo(p0.X, p0.Y)
	q.QuadTo(p1.X, p1.Y, p2.X, p2.Y)
	return flattened(q, e.tolerance)
}

func (e *Expander) flattenCubic(p0, p1, p2, p3 geom.Point) []geom.Point {
	c := path.New()
	c.MoveTo(p0.X, p0.Y)
	c.CubicTo(p1.X, p1.Y, p2.X, p2.Y, p3.X, p3.Y)
	return flattened(c, e.tolerance)
}

// flattened returns the flattened points of a single open curve, without
// its start point.
func flattened(p *path.Path, tolerance float64) []geom.Point {
	contours := p.Flatten(tolerance)
	if len(contours) == 0 {
		return nil
	}
	pts := contours[0][1:]
	// Flatten drops a closing point equal to the start; restore it.
	if end := endPoint(p.Elements()[len(p.Elements())-1]); len(pts) == 0 || pts[len(pts)-1] != end {
		pts = append(pts, end)
	}
	return pts
}

func perp(v geom.Point) geom.Point {
	return geom.Pt(-v.Y, v.X)
}

func endPoint(el path.Element) geom.Point {
	switch e := el.(type) {
	case path.MoveTo:
		return e.Point
	case path.LineTo:
		return e.Point
	case path.QuadTo:
		return e.Point
	case path.CubicTo:
		return e.Point
	}
	return geom.Point{}
}

// builder accumulates one side of a stroke.
type builder struct {
	elements []path.Element
}

func (b *builder) isEmpty() bool { return len(b.elements) == 0 }

func (b *builder) moveTo(p geom.Point) {
	b.elements = append(b.elements, path.MoveTo{Point: p})
}

func (b *builder) lineTo(p geom.Point) {
	b.elements = append(b.elements, path.LineTo{Point: p})
}

func (b *builder) cubicTo(c1, c2, p geom.Point) {
	b.elements = append(b.elements, path.CubicTo{Control1: c1, Control2: c2, Point: p})
}

func (b *builder) last() (geom.Point, bool) {
	if len(b.elements) == 0 {
		return geom.Point{}, false
	}
	return endPoint(b.elements[len(b.elements)-1]), true
}

// arc appends cubic segments sweeping angle radians from center+norm.
func (b *builder) arc(center, norm geom.Point, angle float64) {
	n := max(int(math.Ceil(math.Abs(angle)/(math.Pi/2))), 1)
	step := angle / float64(n)
	a := math.Atan2(norm.Y, norm.X)
	r := norm.Length()
	for range n {
		a0, a1 := a, a+step
		alpha := math.Sin(step) * (math.Sqrt(4+3*math.Tan(step/2)*math.Tan(step/2)) - 1) / 3
		sin0, cos0 := math.Sincos(a0)
		sin1, cos1 := math.Sincos(a1)
		p1 := geom.Pt(center.X+r*cos0, center.Y+r*sin0)
		p2 := geom.Pt(center.X+r*cos1, center.Y+r*sin1)
		c1 := geom.Pt(p1.X-alpha*r*sin0, p1.Y+alpha*r*cos0)
		c2 := geom.Pt(p2.X+alpha*r*sin1, p2.Y-alpha*r*cos1)
		b.cubicTo(c1, c2, p2)
		a = a1
	}
}

func (b *builder) appendTo(out *path.Path, withMove bool) {
	for _, el := range b.elements {
		switch e := el.(type) {
		case path.MoveTo:
			if withMove {
				out.MoveTo(e.Point.X, e.Point.Y)
			}
		case path.LineTo:
			out.LineTo(e.Point.X, e.Point.Y)
		case path.CubicTo:
			out.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		}
	}
}

func (b *builder) appendReversedTo(out *path.Path) {
	elems := b.elements
	for i := len(elems) - 1; i >= 1; i-- {
		end := endPoint(elems[i-1])
		switch el := elems[i].(type) {
		case path.LineTo:
			out.LineTo(end.X, end.Y)
		case path.CubicTo:
			out.CubicTo(el.Control2.X, el.Control2.Y, el.Control1.X, el.Control1.Y, end.X, end.Y)
		}
	}
}
