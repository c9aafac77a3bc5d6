package ops

import (
	"fmt"

	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/path"
	"github.com/gogpu/gpucanvas/processor"
)

// fringeWidth is how far the coverage ramp extends past the outline.
const fringeWidth = 0.5

// TriangulatingPathOp fills a simple polygon triangulated in device space.
// With coverage AA, a fringe outside the outline ramps coverage from 0.5
// at the edge to 0 half a pixel out.
type TriangulatingPathOp struct {
	DrawOp
	color         gpu.Color
	triangulation *path.Triangulation
	inverse       geom.Matrix
	hasInverse    bool
	mesh          mesh
}

// NewTriangulatingPathOp triangulates devicePath, which is already in
// device space. view maps local coordinates to device space and is used
// to recover local coordinates per vertex. The error reports why the path
// cannot be triangulated; callers fall back to a coverage mask.
func NewTriangulatingPathOp(color gpu.Color, devicePath *path.Path, view geom.Matrix, aa AAType) (*TriangulatingPathOp, error) {
	tri, err := devicePath.Triangulate(path.DefaultTolerance)
	if err != nil {
		return nil, fmt.Errorf("ops: triangulate: %w", err)
	}
	bounds := geom.BoundsOf(tri.Outline...)
	if aa == AACoverage {
		bounds = bounds.Outset(fringeWidth, fringeWidth)
	}
	inverse, ok := view.Invert()
	return &TriangulatingPathOp{
		DrawOp:        newDrawOp(bounds, aa),
		color:         color,
		triangulation: tri,
		inverse:       inverse,
		hasInverse:    ok,
	}, nil
}

func (*TriangulatingPathOp) ClassID() ClassID { return ClassTriangulatingPath }

// Triangles returns the interior triangles in device space.
func (op *TriangulatingPathOp) Triangles() []geom.Point { return op.triangulation.Triangles }

// Triangulated paths are never merged; their vertex data is per draw.
func (op *TriangulatingPathOp) combine(Op) bool { return false }

func (op *TriangulatingPathOp) prepare(*FlushState) error {
	aa := op.aa == AACoverage
	w := vertexWriter{}
	count := 0
	emit := func(p geom.Point, coverage float64) {
		w.point(p)
		w.point(localOf(op.inverse, op.hasInverse, p))
		w.color(op.color)
		if aa {
			w.float(coverage)
		}
		count++
	}
	for _, p := range op.triangulation.Triangles {
		emit(p, 1)
	}
	if aa {
		outline := op.triangulation.Outline
		n := len(outline)
		normals := make([]geom.Point, n)
		for i := range outline {
			d := outline[(i+1)%n].Sub(outline[i]).Normalize()
			normals[i] = geom.Pt(d.Y, -d.X)
		}
		for i := range outline {
			a, b := outline[i], outline[(i+1)%n]
			off := normals[i].Mul(fringeWidth)
			emit(a, 0.5)
			emit(b, 0.5)
			emit(b.Add(off), 0)
			emit(a, 0.5)
			emit(b.Add(off), 0)
			emit(a.Add(off), 0)

			// Fill the wedge between this edge's fringe and the next one
			// at convex corners.
			c := outline[(i+2)%n]
			if b.Sub(a).Cross(c.Sub(b)) > 0 {
				emit(b, 0.5)
				emit(b.Add(off), 0)
				emit(b.Add(normals[(i+1)%n].Mul(fringeWidth)), 0)
			}
		}
	}
	op.mesh = mesh{vertices: w.data, count: count}
	return nil
}

func (op *TriangulatingPathOp) execute(_ *FlushState, ps *passState) error {
	return op.draw(ps, processor.NewDefaultGeometry(op.aa == AACoverage), op.mesh)
}
