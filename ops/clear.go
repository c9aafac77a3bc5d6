package ops

import (
	"image"

	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
)

// ClearOp fills a scissor rectangle with a color, ignoring blending.
// The scissor is in target storage coordinates; an empty scissor clears
// the whole target.
type ClearOp struct {
	scissor image.Rectangle
	color   gpu.Color
}

// NewClearOp returns a clear of scissor, or of the whole target when
// scissor is empty. color is premultiplied.
func NewClearOp(color gpu.Color, scissor image.Rectangle) *ClearOp {
	return &ClearOp{scissor: scissor.Canon(), color: color}
}

func (*ClearOp) ClassID() ClassID { return ClassClear }

// Bounds returns the scissor as a rectangle; it is empty for a
// full-target clear.
func (op *ClearOp) Bounds() geom.Rect { return geom.FromImageRect(op.scissor) }

// Color returns the clear color.
func (op *ClearOp) Color() gpu.Color { return op.color }

// Scissor returns the cleared rectangle.
func (op *ClearOp) Scissor() image.Rectangle { return op.scissor }

// IsFullTarget reports whether the op clears all of rt.
func (op *ClearOp) IsFullTarget(rt gpu.RenderTarget) bool {
	return op.scissor.Empty() || (rt != nil && gpu.Bounds(rt).In(op.scissor))
}

// combine merges a following clear. A later clear covering this one
// replaces it; a later clear of the same color inside this one is
// absorbed.
func (op *ClearOp) combine(next Op) bool {
	that := next.(*ClearOp)
	if scissorContains(that.scissor, op.scissor) {
		op.scissor = that.scissor
		op.color = that.color
		return true
	}
	if op.color == that.color && scissorContains(op.scissor, that.scissor) {
		return true
	}
	return false
}

// scissorContains reports whether a covers b. Empty means everything.
func scissorContains(a, b image.Rectangle) bool {
	if a.Empty() {
		return true
	}
	if b.Empty() {
		return false
	}
	return b.In(a)
}

func (op *ClearOp) prepare(*FlushState) error { return nil }

func (op *ClearOp) execute(_ *FlushState, ps *passState) error {
	if err := ps.pass.Clear(op.scissor, op.color); err != nil {
		return err
	}
	ps.check("Clear")
	return nil
}
