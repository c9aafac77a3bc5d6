package ops

import (
	"math"

	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/processor"
)

// maxQuadVertices keeps indices within uint16.
const maxQuadVertices = math.MaxUint16

// RectEntry is one rectangle of a FillRectOp.
type RectEntry struct {
	// Rect is in its own space.
	Rect geom.Rect
	// ViewMatrix maps Rect to device space.
	ViewMatrix geom.Matrix
	// LocalMatrix maps Rect to the local coordinates seen by processors.
	LocalMatrix geom.Matrix
	// Color is premultiplied.
	Color gpu.Color
}

// FillRectOp draws a list of transformed rectangles.
type FillRectOp struct {
	DrawOp
	rects []RectEntry

	mesh mesh
}

// NewFillRectOp returns an op drawing rect transformed by view. Local
// coordinates equal rect coordinates.
func NewFillRectOp(color gpu.Color, rect geom.Rect, view geom.Matrix, aa AAType) *FillRectOp {
	return NewFillRectOpEntries([]RectEntry{{
		Rect:        rect,
		ViewMatrix:  view,
		LocalMatrix: geom.Identity(),
		Color:       color,
	}}, aa)
}

// NewFillRectOpEntries returns an op drawing every entry. It returns nil
// when entries is empty.
func NewFillRectOpEntries(entries []RectEntry, aa AAType) *FillRectOp {
	if len(entries) == 0 {
		return nil
	}
	var bounds geom.Rect
	for _, e := range entries {
		bounds = bounds.Union(e.ViewMatrix.MapRect(e.Rect))
	}
	if aa == AACoverage {
		bounds = bounds.Outset(0.5, 0.5)
	}
	return &FillRectOp{
		DrawOp: newDrawOp(bounds, aa),
		rects:  append([]RectEntry(nil), entries...),
	}
}

func (*FillRectOp) ClassID() ClassID { return ClassFillRect }

// Rects returns the rectangles drawn by the op.
func (op *FillRectOp) Rects() []RectEntry { return op.rects }

func (op *FillRectOp) verticesPerRect() int {
	if op.aa == AACoverage {
		return 8
	}
	return 4
}

func (op *FillRectOp) combine(next Op) bool {
	that := next.(*FillRectOp)
	if (len(op.rects)+len(that.rects))*op.verticesPerRect() > maxQuadVertices {
		return false
	}
	op.rects = append(op.rects, that.rects...)
	return true
}

func (op *FillRectOp) geometry() processor.Geometry {
	return processor.NewQuadPerEdgeAA(op.aa == AACoverage)
}

func (op *FillRectOp) prepare(*FlushState) error {
	aa := op.aa == AACoverage
	w := vertexWriter{data: make([]float32, 0, len(op.rects)*op.verticesPerRect()*9)}
	indices := make([]uint16, 0, len(op.rects)*30)
	base := 0
	for _, e := range op.rects {
		inverse, ok := e.ViewMatrix.Invert()
		if !ok {
			continue
		}
		corners := [4]geom.Point{
			e.ViewMatrix.TransformPoint(geom.Pt(e.Rect.Left, e.Rect.Top)),
			e.ViewMatrix.TransformPoint(geom.Pt(e.Rect.Right, e.Rect.Top)),
			e.ViewMatrix.TransformPoint(geom.Pt(e.Rect.Right, e.Rect.Bottom)),
			e.ViewMatrix.TransformPoint(geom.Pt(e.Rect.Left, e.Rect.Bottom)),
		}
		local := func(device geom.Point) geom.Point {
			return e.LocalMatrix.TransformPoint(inverse.TransformPoint(device))
		}
		if !aa {
			for _, c := range corners {
				w.point(c)
				w.point(local(c))
				w.color(e.Color)
			}
			b := uint16(base)
			indices = append(indices, b, b+1, b+2, b, b+2, b+3)
			base += 4
			continue
		}
		outer, inner, innerCoverage := aaQuad(corners)
		for _, c := range outer {
			w.point(c)
			w.point(local(c))
			w.color(e.Color)
			w.float(0)
		}
		for _, c := range inner {
			w.point(c)
			w.point(local(c))
			w.color(e.Color)
			w.float(innerCoverage)
		}
		b := uint16(base)
		for j := uint16(0); j < 4; j++ {
			k := (j + 1) % 4
			indices = append(indices, b+j, b+k, b+4+k, b+j, b+4+k, b+4+j)
		}
		indices = append(indices, b+4, b+5, b+6, b+4, b+6, b+7)
		base += 8
	}
	op.mesh = mesh{vertices: w.data, indices: indices}
	return nil
}

// aaQuad returns the quad outset and inset by half a pixel along the edge
// normals. Quads thinner than a pixel collapse the inner ring to the
// center and scale its coverage by the covered fraction.
func aaQuad(c [4]geom.Point) (outer, inner [4]geom.Point, innerCoverage float64) {
	area := 0.0
	for i := 0; i < 4; i++ {
		area += c[i].Cross(c[(i+1)%4])
	}
	sign := 1.0
	if area < 0 {
		sign = -1
	}
	var normals [4]geom.Point
	for i := 0; i < 4; i++ {
		d := c[(i+1)%4].Sub(c[i]).Normalize()
		normals[i] = geom.Pt(d.Y, -d.X).Mul(sign)
	}
	w := c[1].Sub(c[0]).Length()
	h := c[3].Sub(c[0]).Length()
	thin := w < 1 || h < 1
	center := c[0].Add(c[2]).Mul(0.5)
	for i := 0; i < 4; i++ {
		np, nn := normals[(i+3)%4], normals[i]
		denom := 1 + np.Dot(nn)
		var v geom.Point
		if denom > 1e-6 {
			v = np.Add(nn).Mul(1 / denom)
		}
		outer[i] = c[i].Add(v.Mul(0.5))
		if thin {
			inner[i] = center
		} else {
			inner[i] = c[i].Sub(v.Mul(0.5))
		}
	}
	innerCoverage = 1
	if thin {
		innerCoverage = math.Min(w, 1) * math.Min(h, 1)
	}
	return outer, inner, innerCoverage
}

func (op *FillRectOp) execute(_ *FlushState, ps *passState) error {
	return op.draw(ps, op.geometry(), op.mesh)
}
