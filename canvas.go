package gpucanvas

import (
	"image"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/ops"
	"github.com/gogpu/gpucanvas/path"
	"github.com/gogpu/gpucanvas/processor"
)

// canvasState is the part of the canvas saved by Save.
type canvasState struct {
	matrix    geom.Matrix
	alpha     float64
	blendMode blend.Mode
	clip      Clip
}

// Canvas records drawing commands into its surface. Every draw is
// transformed by the current matrix, modulated by the current alpha,
// blended with the current blend mode and restricted to the current clip.
type Canvas struct {
	surface *Surface
	state   canvasState
	stack   []canvasState
	mask    clipMask
}

func newCanvas(s *Surface) *Canvas {
	return &Canvas{
		surface: s,
		state: canvasState{
			matrix:    geom.Identity(),
			alpha:     1,
			blendMode: blend.SrcOver,
			clip:      wideOpenClip(s.bounds()),
		},
	}
}

// Surface returns the surface the canvas draws into.
func (c *Canvas) Surface() *Surface { return c.surface }

// Save pushes a copy of the matrix, alpha, blend mode and clip.
func (c *Canvas) Save() {
	c.stack = append(c.stack, c.state)
}

// Restore pops the state pushed by the matching Save. Restore without a
// pending Save does nothing.
func (c *Canvas) Restore() {
	n := len(c.stack)
	if n == 0 {
		return
	}
	c.state = c.stack[n-1]
	c.stack = c.stack[:n-1]
}

// SaveCount returns the number of pending Saves.
func (c *Canvas) SaveCount() int { return len(c.stack) }

// RestoreToCount pops states until SaveCount equals count.
func (c *Canvas) RestoreToCount(count int) {
	for len(c.stack) > max(count, 0) {
		c.Restore()
	}
}

// SetMatrix replaces the current matrix.
func (c *Canvas) SetMatrix(m geom.Matrix) { c.state.matrix = m }

// Concat pre-multiplies the current matrix by m: m applies to geometry
// before the existing transform.
func (c *Canvas) Concat(m geom.Matrix) { c.state.matrix = c.state.matrix.Multiply(m) }

// Translate is Concat(geom.Translate(dx, dy)).
func (c *Canvas) Translate(dx, dy float64) { c.Concat(geom.Translate(dx, dy)) }

// Scale is Concat(geom.Scale(sx, sy)).
func (c *Canvas) Scale(sx, sy float64) { c.Concat(geom.Scale(sx, sy)) }

// Rotate is Concat(geom.Rotate(angle)) with angle in radians.
func (c *Canvas) Rotate(angle float64) { c.Concat(geom.Rotate(angle)) }

// ResetMatrix sets the identity matrix.
func (c *Canvas) ResetMatrix() { c.state.matrix = geom.Identity() }

// Matrix returns the current matrix.
func (c *Canvas) Matrix() geom.Matrix { return c.state.matrix }

// SetAlpha sets the global alpha, clamped to [0, 1].
func (c *Canvas) SetAlpha(a float64) {
	c.state.alpha = max(0, min(a, 1))
}

// Alpha returns the global alpha.
func (c *Canvas) Alpha() float64 { return c.state.alpha }

// SetBlendMode sets the blend mode of subsequent draws.
func (c *Canvas) SetBlendMode(m blend.Mode) { c.state.blendMode = m }

// BlendMode returns the current blend mode.
func (c *Canvas) BlendMode() blend.Mode { return c.state.blendMode }

// ClipPath intersects the clip with p transformed by the current matrix.
func (c *Canvas) ClipPath(p *path.Path) {
	if p == nil {
		return
	}
	c.state.clip = c.state.clip.intersect(p.Transform(c.state.matrix))
}

// ClipRect intersects the clip with r transformed by the current matrix.
func (c *Canvas) ClipRect(r geom.Rect) {
	p := path.New()
	p.AddRect(r)
	c.ClipPath(p)
}

// ClipBounds returns the device-space bounds of the clip within the
// surface.
func (c *Canvas) ClipBounds() geom.Rect {
	b, _ := c.state.clip.Bounds().Intersect(c.surface.bounds())
	return b
}

// ClipID returns the id of the current clip.
func (c *Canvas) ClipID() uint32 { return c.state.clip.id }

// Clip returns the current clip.
func (c *Canvas) Clip() Clip { return c.state.clip }

// Clear fills the clip with color, replacing what is there.
func (c *Canvas) Clear(color gpu.Color) {
	c.clearDevice(c.surface.bounds(), color)
}

// ClearRect fills r, transformed by the current matrix and clipped,
// with color, replacing what is there.
func (c *Canvas) ClearRect(r geom.Rect, color gpu.Color) {
	m := c.state.matrix
	if !m.RectStaysRect() {
		c.Save()
		c.SetBlendMode(blend.Src)
		c.SetAlpha(1)
		c.DrawRect(r, NewPaint(color))
		c.Restore()
		return
	}
	c.clearDevice(m.MapRect(r), color)
}

// clearDevice clears a device rectangle honouring the clip. Clips a
// scissor can express become a ClearOp; others are drawn with Src.
func (c *Canvas) clearDevice(r geom.Rect, color gpu.Color) {
	clip := c.state.clip
	r, ok := r.Intersect(clip.Bounds())
	if !ok {
		return
	}
	if r, ok = r.Intersect(c.surface.bounds()); !ok {
		return
	}
	if clip.IsRect() && r.IsPixelAligned() {
		c.surface.addOp(ops.NewClearOp(color.Premultiply(), c.scissorFor(r.Round())))
		return
	}
	op := ops.NewFillRectOp(color.Premultiply(), r, geom.Identity(), ops.AACoverage)
	op.SetBlendMode(blend.Src)
	if c.applyClip(op) {
		c.surface.addOp(op)
	}
}

// scissorFor converts a pixel-aligned logical rectangle to the storage
// scissor. The full target maps to the empty rectangle.
func (c *Canvas) scissorFor(r geom.Rect) image.Rectangle {
	target := c.surface.bounds()
	if r == target {
		return image.Rectangle{}
	}
	if c.surface.Origin() == gpu.OriginBottomLeft {
		r = r.FlipY(target.Height())
	}
	return r.ImageRect()
}

// Flush executes the pending work of the surface.
func (c *Canvas) Flush() bool { return c.surface.Flush() }

// drawOp is the part of the ops.DrawOp API the canvas uses.
type drawOp interface {
	ops.Op
	AddColor(fp processor.Fragment)
	AddMask(fp processor.Fragment)
	SetScissor(r image.Rectangle)
	SetBlendMode(m blend.Mode)
}
