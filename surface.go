package gpucanvas

import (
	"fmt"
	"image"

	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/ops"
)

// Surface is a render target together with its deferred command list.
// Draws recorded through the surface's Canvas reach the device on Flush.
type Surface struct {
	ctx    *Context
	rt     gpu.RenderTarget
	owned  bool
	task   *ops.OpsTask
	canvas *Canvas

	// transient textures are sampled by recorded ops and released after
	// the next flush.
	transient []gpu.Texture

	released bool
}

func newSurface(ctx *Context, rt gpu.RenderTarget, owned bool) *Surface {
	return &Surface{ctx: ctx, rt: rt, owned: owned, task: ops.NewOpsTask(rt)}
}

// Context returns the owning context.
func (s *Surface) Context() *Context { return s.ctx }

// Width returns the width in pixels.
func (s *Surface) Width() int { return s.rt.Width() }

// Height returns the height in pixels.
func (s *Surface) Height() int { return s.rt.Height() }

// Origin returns the row order of the render target storage.
func (s *Surface) Origin() gpu.Origin { return s.rt.Origin() }

// RenderTarget returns the backing render target.
func (s *Surface) RenderTarget() gpu.RenderTarget { return s.rt }

// Canvas returns the canvas drawing into the surface. The same canvas is
// returned on every call.
func (s *Surface) Canvas() *Canvas {
	if s.canvas == nil {
		s.canvas = newCanvas(s)
	}
	return s.canvas
}

func (s *Surface) bounds() geom.Rect {
	return geom.WH(float64(s.rt.Width()), float64(s.rt.Height()))
}

func (s *Surface) addOp(op ops.Op) {
	if s.released {
		return
	}
	s.task.AddOp(op)
}

// retain keeps tex alive until the pending ops have executed.
func (s *Surface) retain(tex gpu.Texture) {
	s.transient = append(s.transient, tex)
}

// Flush executes the pending ops and reports whether any work ran.
// Pending work of surfaces whose textures these ops sample runs first.
func (s *Surface) Flush() bool {
	if s.released {
		return false
	}
	return s.ctx.flushOrdered([]*Surface{s})
}

// execute runs this surface's own pending ops.
func (s *Surface) execute() bool {
	if s.released {
		return false
	}
	task := s.task
	s.task = ops.NewOpsTask(s.rt)
	ran := task.Execute(s.ctx.flushState())
	for _, tex := range s.transient {
		s.ctx.device.ReleaseTexture(tex)
	}
	s.transient = s.transient[:0]
	return ran
}

// ReadPixels flushes and returns the surface contents as premultiplied
// RGBA with rows top-down.
func (s *Surface) ReadPixels() (*image.RGBA, error) {
	if s.released {
		return nil, ErrContextReleased
	}
	s.Flush()
	img := image.NewRGBA(image.Rect(0, 0, s.Width(), s.Height()))
	if err := s.ctx.device.ReadPixels(s.rt, img.Rect, img.Pix, img.Stride); err != nil {
		return nil, fmt.Errorf("gpucanvas: read pixels: %w", err)
	}
	return img, nil
}

// Texture flushes and returns the texture the surface renders into, or
// nil when the target cannot be sampled.
func (s *Surface) Texture() gpu.Texture {
	if s.released {
		return nil
	}
	s.Flush()
	return s.rt.Texture()
}

// MakeImageSnapshot flushes and copies the current contents into a new
// texture-backed image. Later draws do not affect the snapshot. The
// snapshot texture lives as long as the context.
func (s *Surface) MakeImageSnapshot() (*Image, error) {
	if s.released {
		return nil, ErrContextReleased
	}
	s.Flush()
	dev := s.ctx.device
	tex, err := dev.CreateTexture(gpu.TextureDescriptor{
		Label:  "snapshot",
		Width:  s.Width(),
		Height: s.Height(),
		Format: s.rt.Format(),
		Origin: s.rt.Origin(),
	})
	if err != nil {
		return nil, fmt.Errorf("gpucanvas: snapshot texture: %w", err)
	}
	if err := dev.CopyToTexture(tex, s.rt, gpu.Bounds(s.rt)); err != nil {
		dev.ReleaseTexture(tex)
		return nil, fmt.Errorf("gpucanvas: snapshot copy: %w", err)
	}
	s.ctx.owned = append(s.ctx.owned, tex)
	return ImageFromTexture(tex), nil
}

// Release drops pending work and frees the render target when the
// surface allocated it.
func (s *Surface) Release() {
	if s.released {
		return
	}
	dev := s.ctx.device
	for _, tex := range s.transient {
		dev.ReleaseTexture(tex)
	}
	s.transient = nil
	if s.canvas != nil {
		s.canvas.releaseClipMask()
	}
	if s.owned {
		if tex := s.rt.Texture(); tex != nil {
			dev.ReleaseTexture(tex)
		}
	}
	s.released = true
	s.ctx.removeSurface(s)
}
