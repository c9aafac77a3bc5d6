package ops

import (
	"image"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/pipeline"
	"github.com/gogpu/gpucanvas/processor"
)

// ClassID identifies the concrete kind of an op.
type ClassID uint8

const (
	ClassClear ClassID = iota + 1
	ClassFillRect
	ClassRRect
	ClassTriangulatingPath
	ClassMesh
)

func (c ClassID) String() string {
	switch c {
	case ClassClear:
		return "ClearOp"
	case ClassFillRect:
		return "FillRectOp"
	case ClassRRect:
		return "RRectOp"
	case ClassTriangulatingPath:
		return "TriangulatingPathOp"
	case ClassMesh:
		return "MeshOp"
	}
	return "Unknown"
}

// AAType selects how edges are antialiased.
type AAType uint8

const (
	AANone AAType = iota
	AAMSAA
	AACoverage
)

func (a AAType) String() string {
	switch a {
	case AAMSAA:
		return "MSAA"
	case AACoverage:
		return "Coverage"
	}
	return "None"
}

// Op is a unit of deferred work.
type Op interface {
	ClassID() ClassID

	// Bounds returns the device-space area the op may touch.
	Bounds() geom.Rect

	// combine merges next into the receiver when the kinds allow it.
	// The shared DrawOp state has already been compared.
	combine(next Op) bool
	prepare(fs *FlushState) error
	execute(fs *FlushState, pass *passState) error
}

// DrawOp is the state shared by every op that runs fragment processors.
// Concrete ops embed it.
type DrawOp struct {
	bounds    geom.Rect
	scissor   image.Rectangle
	aa        AAType
	colors    []processor.Fragment
	masks     []processor.Fragment
	blendMode blend.Mode

	dst *pipeline.DstTexture
}

func newDrawOp(bounds geom.Rect, aa AAType) DrawOp {
	return DrawOp{bounds: bounds, aa: aa, blendMode: blend.SrcOver}
}

// Bounds returns the device-space bounds.
func (d *DrawOp) Bounds() geom.Rect { return d.bounds }

// AA returns the antialiasing type.
func (d *DrawOp) AA() AAType { return d.aa }

// Scissor returns the scissor rectangle in target storage coordinates.
// An empty rectangle disables scissoring.
func (d *DrawOp) Scissor() image.Rectangle { return d.scissor }

// SetScissor restricts the op to r.
func (d *DrawOp) SetScissor(r image.Rectangle) { d.scissor = r }

// BlendMode returns the blend mode.
func (d *DrawOp) BlendMode() blend.Mode { return d.blendMode }

// SetBlendMode sets the blend mode.
func (d *DrawOp) SetBlendMode(m blend.Mode) { d.blendMode = m }

// Colors returns the color processors.
func (d *DrawOp) Colors() []processor.Fragment { return d.colors }

// Masks returns the coverage processors.
func (d *DrawOp) Masks() []processor.Fragment { return d.masks }

// AddColor appends a color processor. Nil is ignored.
func (d *DrawOp) AddColor(fp processor.Fragment) {
	if fp != nil {
		d.colors = append(d.colors, fp)
	}
}

// AddMask appends a coverage processor. Nil is ignored.
func (d *DrawOp) AddMask(fp processor.Fragment) {
	if fp != nil {
		d.masks = append(d.masks, fp)
	}
}

func (d *DrawOp) drawOp() *DrawOp { return d }

// drawer is implemented by ops that embed DrawOp.
type drawer interface {
	drawOp() *DrawOp
}

// needsDstTexture reports whether the op's blend reads the destination
// through a copy.
func (d *DrawOp) needsDstTexture(fs *FlushState) bool {
	if _, custom := blend.Resolve(d.blendMode).(blend.CustomEquation); !custom {
		return false
	}
	return !fs.Device.Caps().FramebufferFetch
}

// compatible compares everything a combined draw must share.
func (d *DrawOp) compatible(o *DrawOp) bool {
	return d.aa == o.aa &&
		d.scissor == o.scissor &&
		d.blendMode == o.blendMode &&
		processor.EqualLists(d.colors, o.colors) &&
		processor.EqualLists(d.masks, o.masks)
}

// CombineIfPossible merges next into prev and reports whether it did.
// Both ops must be of the same kind, share antialiasing, scissor, blend
// mode and destination-read requirement, and carry pairwise equal
// processors; the kind then decides. On success prev's bounds grow to
// cover next.
func CombineIfPossible(prev, next Op) bool {
	if prev == nil || next == nil || prev.ClassID() != next.ClassID() {
		return false
	}
	pd, pok := prev.(drawer)
	nd, nok := next.(drawer)
	if pok != nok {
		return false
	}
	if pok {
		a, b := pd.drawOp(), nd.drawOp()
		if !a.compatible(b) {
			return false
		}
		// A custom blend reads the destination, so a later draw must see
		// the earlier one's output.
		if _, custom := blend.Resolve(a.blendMode).(blend.CustomEquation); custom {
			if _, overlap := a.bounds.Intersect(b.bounds); overlap {
				return false
			}
		}
		if !prev.combine(next) {
			return false
		}
		a.bounds = a.bounds.Union(b.bounds)
		return true
	}
	return prev.combine(next)
}
