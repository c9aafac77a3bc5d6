package ops

import (
	"slices"

	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/processor"
)

// MeshOp draws a caller-supplied triangle mesh with per-vertex colors.
type MeshOp struct {
	DrawOp
	positions []geom.Point
	locals    []geom.Point
	colors    []gpu.Color
	indices   []uint16
	mesh      mesh
}

// NewMeshOp returns an op drawing triangles through view. locals gives
// per-vertex local coordinates and defaults to positions; colors are
// premultiplied and default to color. indices may be nil for a plain
// triangle list. The op keeps copies, so the caller may reuse its slices.
// It returns nil for an empty mesh or mismatched slices.
func NewMeshOp(positions, locals []geom.Point, colors []gpu.Color, indices []uint16,
	color gpu.Color, view geom.Matrix, aa AAType) *MeshOp {
	if len(positions) < 3 || (locals != nil && len(locals) != len(positions)) ||
		(colors != nil && len(colors) != len(positions)) {
		return nil
	}
	for _, i := range indices {
		if int(i) >= len(positions) {
			return nil
		}
	}
	if colors == nil {
		colors = make([]gpu.Color, len(positions))
		for i := range colors {
			colors[i] = color
		}
	} else {
		colors = slices.Clone(colors)
	}
	if locals == nil {
		locals = positions
	}
	locals = slices.Clone(locals)
	device := make([]geom.Point, len(positions))
	for i, p := range positions {
		device[i] = view.TransformPoint(p)
	}
	return &MeshOp{
		DrawOp:    newDrawOp(geom.BoundsOf(device...), aa),
		positions: device,
		locals:    locals,
		colors:    colors,
		indices:   slices.Clone(indices),
	}
}

func (*MeshOp) ClassID() ClassID { return ClassMesh }

func (op *MeshOp) combine(Op) bool { return false }

func (op *MeshOp) prepare(*FlushState) error {
	w := vertexWriter{data: make([]float32, 0, len(op.positions)*8)}
	for i, p := range op.positions {
		w.point(p)
		w.point(op.locals[i])
		w.color(op.colors[i])
	}
	op.mesh = mesh{vertices: w.data, indices: op.indices}
	if op.indices == nil {
		op.mesh.count = len(op.positions) / 3 * 3
	}
	return nil
}

func (op *MeshOp) execute(_ *FlushState, ps *passState) error {
	return op.draw(ps, processor.NewDefaultGeometry(false), op.mesh)
}
