package ops

import (
	"math"

	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/processor"
)

// RRectEntry is one rounded rectangle of an RRectOp.
type RRectEntry struct {
	RRect      geom.RRect
	ViewMatrix geom.Matrix
	Color      gpu.Color
}

// RRectOp draws rounded rectangles and ovals with analytic edge coverage.
// View matrices must be scale/translate.
type RRectOp struct {
	DrawOp
	rrects []RRectEntry
	mesh   mesh
}

// NewRRectOp returns an op drawing rr transformed by view, or nil when
// view rotates or skews, or rr has no rounded corner.
func NewRRectOp(color gpu.Color, rr geom.RRect, view geom.Matrix, aa AAType) *RRectOp {
	if !view.IsScaleTranslate() || view.A == 0 || view.E == 0 || rr.IsRect() {
		return nil
	}
	bounds := view.MapRect(rr.Rect).Outset(0.5, 0.5)
	return &RRectOp{
		DrawOp: newDrawOp(bounds, aa),
		rrects: []RRectEntry{{RRect: rr, ViewMatrix: view, Color: color}},
	}
}

func (*RRectOp) ClassID() ClassID { return ClassRRect }

// RRects returns the rounded rectangles drawn by the op.
func (op *RRectOp) RRects() []RRectEntry { return op.rrects }

func (op *RRectOp) combine(next Op) bool {
	that := next.(*RRectOp)
	if (len(op.rrects)+len(that.rrects))*16 > maxQuadVertices {
		return false
	}
	op.rrects = append(op.rrects, that.rrects...)
	return true
}

// prepare emits a 4x4 vertex grid per rounded rectangle. The outer grid
// lines sit half a pixel outside the edge and the inner ones at the
// corner ellipse centers, so the interpolated offset is the distance
// from the nearest corner center.
func (op *RRectOp) prepare(*FlushState) error {
	w := vertexWriter{data: make([]float32, 0, len(op.rrects)*16*12)}
	indices := make([]uint16, 0, len(op.rrects)*54)
	base := 0
	for _, e := range op.rrects {
		inverse, ok := e.ViewMatrix.Invert()
		if !ok {
			continue
		}
		r := e.ViewMatrix.MapRect(e.RRect.Rect)
		rx := e.RRect.RadiusX * math.Abs(e.ViewMatrix.A)
		ry := e.RRect.RadiusY * math.Abs(e.ViewMatrix.E)
		xs := [4]float64{r.Left - 0.5, r.Left + rx, r.Right - rx, r.Right + 0.5}
		ys := [4]float64{r.Top - 0.5, r.Top + ry, r.Bottom - ry, r.Bottom + 0.5}
		ox := [4]float64{-(rx + 0.5), 0, 0, rx + 0.5}
		oy := [4]float64{-(ry + 0.5), 0, 0, ry + 0.5}
		for j := 0; j < 4; j++ {
			for i := 0; i < 4; i++ {
				p := geom.Pt(xs[i], ys[j])
				w.point(p)
				w.point(localOf(inverse, true, p))
				w.color(e.Color)
				w.float(ox[i])
				w.float(oy[j])
				w.float(1 / rx)
				w.float(1 / ry)
			}
		}
		b := uint16(base)
		for j := uint16(0); j < 3; j++ {
			for i := uint16(0); i < 3; i++ {
				v := b + j*4 + i
				indices = append(indices, v, v+1, v+5, v, v+5, v+4)
			}
		}
		base += 16
	}
	op.mesh = mesh{vertices: w.data, indices: indices}
	return nil
}

func (op *RRectOp) execute(_ *FlushState, ps *passState) error {
	return op.draw(ps, processor.NewEllipse(), op.mesh)
}
