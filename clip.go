package gpucanvas

import (
	"image"
	"slices"
	"sync/atomic"

	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/path"
	"github.com/gogpu/gpucanvas/processor"
)

var clipIDs atomic.Uint32

// nextClipID returns a process-wide, strictly increasing clip id.
func nextClipID() uint32 {
	return clipIDs.Add(1)
}

// Clip is a device-space clip region: a rectangle intersected with any
// number of paths. Clips only ever shrink; Canvas.Restore brings back an
// earlier one.
type Clip struct {
	rect  geom.Rect
	paths []*path.Path
	id    uint32
}

func wideOpenClip(bounds geom.Rect) Clip {
	return Clip{rect: bounds, id: nextClipID()}
}

// ID identifies this clip state. Every change produces a larger id.
func (c Clip) ID() uint32 { return c.id }

// IsRect reports whether the region is exactly its rectangle.
func (c Clip) IsRect() bool { return len(c.paths) == 0 }

// IsEmpty reports whether nothing can be drawn.
func (c Clip) IsEmpty() bool { return c.Bounds().IsEmpty() }

// Rect returns the rectangle part of the clip.
func (c Clip) Rect() geom.Rect { return c.rect }

// Bounds returns a rectangle containing the whole region.
func (c Clip) Bounds() geom.Rect {
	b := c.rect
	for _, p := range c.paths {
		var ok bool
		if b, ok = b.Intersect(p.Bounds()); !ok {
			return geom.Rect{}
		}
	}
	return b
}

// Contains reports whether the device point (x, y) is inside the clip,
// using non-zero winding for every path.
func (c Clip) Contains(x, y float64) bool {
	if !c.rect.ContainsPoint(geom.Pt(x, y)) {
		return false
	}
	for _, p := range c.paths {
		if !p.Contains(x, y) {
			return false
		}
	}
	return true
}

// containsRect reports whether r lies wholly inside the clip.
func (c Clip) containsRect(r geom.Rect) bool {
	if !c.rect.Contains(r) {
		return false
	}
	for _, p := range c.paths {
		if !p.ContainsRect(r) {
			return false
		}
	}
	return true
}

// intersect returns the clip narrowed by a device-space path.
func (c Clip) intersect(devicePath *path.Path) Clip {
	out := Clip{rect: c.rect, paths: c.paths, id: nextClipID()}
	if r, ok := devicePath.AsRect(); ok {
		if out.rect, ok = c.rect.Intersect(r); !ok {
			out.rect = geom.Rect{}
		}
		return out
	}
	// Saved states share the backing array; force a copy.
	out.paths = append(slices.Clip(c.paths), devicePath)
	return out
}

// rasterize renders the clip coverage into a w x h mask in logical
// device pixels.
func (c Clip) rasterize(w, h int) *image.Alpha {
	full := image.Rect(0, 0, w, h)
	rp := path.New()
	rp.AddRect(c.rect)
	mask := rp.Rasterize(full)
	for _, p := range c.paths {
		m := p.Rasterize(full)
		for i, v := range m.Pix {
			mask.Pix[i] = uint8((uint32(mask.Pix[i])*uint32(v) + 127) / 255)
		}
	}
	return mask
}

type clipMaskKey struct {
	id     uint32
	width  int
	height int
	origin gpu.Origin
}

// clipMask is the canvas-private cache of the last rasterized clip.
type clipMask struct {
	key clipMaskKey
	tex gpu.Texture
}

// clipMaskTexture returns the mask texture of the current clip,
// rasterizing it when the clip or the target changed.
func (c *Canvas) clipMaskTexture() gpu.Texture {
	s := c.surface
	key := clipMaskKey{
		id:     c.state.clip.id,
		width:  s.Width(),
		height: s.Height(),
		origin: s.Origin(),
	}
	if c.mask.tex != nil && c.mask.key == key {
		return c.mask.tex
	}
	if c.mask.tex != nil {
		// Ops recorded earlier may still sample the old mask.
		s.retain(c.mask.tex)
		c.mask.tex = nil
	}
	alpha := c.state.clip.rasterize(key.width, key.height)
	tex, err := s.ctx.uploadPixels("clip-mask", gpu.FormatAlpha8, key.width, key.height, key.origin,
		alpha.Pix, alpha.Stride)
	if err != nil {
		Logger().Warn("clip mask upload failed", "err", err)
		return nil
	}
	Logger().Debug("clip mask rasterized", "clipID", key.id, "paths", len(c.state.clip.paths))
	c.mask = clipMask{key: key, tex: tex}
	return tex
}

func (c *Canvas) releaseClipMask() {
	if c.mask.tex != nil {
		c.surface.ctx.device.ReleaseTexture(c.mask.tex)
		c.mask = clipMask{}
	}
}

// applyClip restricts op to the current clip. It returns false when the
// draw is entirely clipped out.
func (c *Canvas) applyClip(op drawOp) bool {
	clip := c.state.clip
	target := c.surface.bounds()
	bounds := op.Bounds()

	if clip.IsRect() {
		r, ok := clip.rect.Intersect(target)
		if !ok {
			return false
		}
		if r.Contains(bounds) {
			return true
		}
		if _, ok := r.Intersect(bounds); !ok {
			return false
		}
		if c.surface.Origin() == gpu.OriginBottomLeft {
			r = r.FlipY(target.Height())
		}
		if !r.IsPixelAligned() {
			op.AddMask(processor.NewAARectEffect(r))
			return true
		}
		r = r.Round()
		if r == target {
			return true
		}
		op.SetScissor(r.ImageRect())
		return true
	}

	if _, ok := clip.Bounds().Intersect(bounds); !ok {
		return false
	}
	// One pixel of slack keeps the mask's antialiased edge off the draw.
	if r, ok := bounds.Outset(1, 1).Intersect(target); ok && clip.containsRect(r) {
		return true
	}
	mask := c.clipMaskTexture()
	if mask == nil {
		return false
	}
	op.AddMask(processor.MulInputByChildAlpha(
		processor.NewDeviceSpaceTextureEffect(mask, geom.Identity()), false))
	return true
}
