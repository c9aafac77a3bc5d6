package gpucanvas

import (
	"context"
	"fmt"
	"image"
	"slices"

	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/ops"
	"github.com/gogpu/gpucanvas/program"
	"github.com/gogpu/gpucanvas/render"
	"github.com/gogpu/gpucanvas/text"
)

// Context owns the resources shared by every surface drawing through one
// device: the compiled program cache, uploaded images and the glyph
// outline cache.
//
// A Context must be used from one goroutine at a time.
type Context struct {
	device   render.Device
	opts     contextOptions
	programs *program.Cache
	glyphs   *text.GlyphCache

	surfaces []*Surface
	// images maps the pixel buffer of a raster image to its upload.
	images map[any]gpu.Texture
	// owned are textures created for snapshots, released with the
	// context.
	owned []gpu.Texture

	released bool
}

// NewContext returns a context drawing through device.
//
// Example:
//
//	ctx, err := gpucanvas.NewContext(software.NewDevice(),
//	    gpucanvas.WithProgramCacheCapacity(64))
func NewContext(device render.Device, opts ...ContextOption) (*Context, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	o := defaultContextOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &Context{
		device:   device,
		opts:     o,
		programs: program.NewCache(device, o.programCacheCapacity),
		glyphs:   text.NewGlyphCache(o.glyphCacheSize),
		images:   make(map[any]gpu.Texture),
	}
	Logger().Info("context created",
		"programCache", o.programCacheCapacity,
		"framebufferFetch", device.Caps().FramebufferFetch,
		"debugChecks", o.debugChecks)
	return c, nil
}

// Device returns the backend device.
func (c *Context) Device() render.Device { return c.device }

// Caps returns the device capabilities.
func (c *Context) Caps() gpu.Caps { return c.device.Caps() }

// ProgramCache returns the compiled program cache.
func (c *Context) ProgramCache() *program.Cache { return c.programs }

// GlyphCache returns the glyph outline cache used for text drawing.
func (c *Context) GlyphCache() *text.GlyphCache { return c.glyphs }

// NewSurface allocates a render target and returns a surface drawing
// into it.
func (c *Context) NewSurface(width, height int, opts ...SurfaceOption) (*Surface, error) {
	if c.released {
		return nil, ErrContextReleased
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	o := defaultSurfaceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	rt, err := c.device.CreateRenderTarget(gpu.RenderTargetDescriptor{
		TextureDescriptor: gpu.TextureDescriptor{
			Label:     "surface",
			Width:     width,
			Height:    height,
			Format:    o.format,
			Origin:    o.origin,
			Mipmapped: o.mipmapped,
		},
		SampleCount: o.sampleCount,
	})
	if err != nil {
		return nil, fmt.Errorf("gpucanvas: create render target: %w", err)
	}
	return c.addSurface(rt, true), nil
}

// WrapRenderTarget returns a surface drawing into an existing render
// target. The caller keeps ownership of rt.
func (c *Context) WrapRenderTarget(rt gpu.RenderTarget) (*Surface, error) {
	if c.released {
		return nil, ErrContextReleased
	}
	if rt == nil || rt.Width() <= 0 || rt.Height() <= 0 {
		return nil, ErrInvalidSize
	}
	return c.addSurface(rt, false), nil
}

func (c *Context) addSurface(rt gpu.RenderTarget, owned bool) *Surface {
	s := newSurface(c, rt, owned)
	c.surfaces = append(c.surfaces, s)
	return s
}

func (c *Context) removeSurface(s *Surface) {
	c.surfaces = slices.DeleteFunc(c.surfaces, func(o *Surface) bool { return o == s })
}

// Flush executes the pending work of every live surface and reports
// whether any ran. A surface whose texture is sampled by another
// surface's pending ops is flushed before that surface.
func (c *Context) Flush() bool {
	if c.released {
		return false
	}
	return c.flushOrdered(c.surfaces)
}

// flushOrdered flushes every surface in roots after the surfaces it reads
// from. A cycle is broken at the first surface revisited.
func (c *Context) flushOrdered(roots []*Surface) bool {
	producers := make(map[uint64]*Surface, len(c.surfaces))
	for _, s := range c.surfaces {
		if tex := s.rt.Texture(); tex != nil {
			producers[tex.ID()] = s
		}
	}
	visited := make(map[*Surface]bool, len(c.surfaces))
	ran := false
	var visit func(s *Surface)
	visit = func(s *Surface) {
		if visited[s] {
			return
		}
		visited[s] = true
		for _, tex := range s.task.GatherTextures() {
			if p, ok := producers[tex.ID()]; ok && p != s {
				visit(p)
			}
		}
		if s.execute() {
			ran = true
		}
	}
	for _, s := range slices.Clone(roots) {
		visit(s)
	}
	return ran
}

// Submit flushes every surface and marks the end of the submitted work.
// With wait set it blocks until the device has finished or ctx is done.
func (c *Context) Submit(ctx context.Context, wait bool) error {
	if c.released {
		return ErrContextReleased
	}
	c.Flush()
	fence, err := c.device.InsertFence()
	if err != nil {
		return fmt.Errorf("gpucanvas: insert fence: %w", err)
	}
	if !wait {
		return nil
	}
	if err := c.device.WaitFence(ctx, fence); err != nil {
		return fmt.Errorf("gpucanvas: wait fence: %w", err)
	}
	return nil
}

// Release frees every resource owned by the context: surfaces, uploaded
// images and compiled programs. The device itself stays alive.
func (c *Context) Release() {
	if c.released {
		return
	}
	for _, s := range slices.Clone(c.surfaces) {
		s.Release()
	}
	for _, tex := range c.images {
		c.device.ReleaseTexture(tex)
	}
	for _, tex := range c.owned {
		c.device.ReleaseTexture(tex)
	}
	c.images = nil
	c.owned = nil
	programs := c.programs.Len()
	c.programs.ReleaseAll()
	c.glyphs.Clear()
	c.released = true
	Logger().Info("context released", "programs", programs)
}

func (c *Context) flushState() *ops.FlushState {
	return &ops.FlushState{
		Device:      c.device,
		Programs:    c.programs,
		DebugChecks: c.opts.debugChecks,
	}
}

// imageTexture returns the texture of img, uploading raster pixels on
// first use.
func (c *Context) imageTexture(img *Image) (gpu.Texture, error) {
	if img.texture != nil {
		return img.texture, nil
	}
	if c.released {
		return nil, ErrContextReleased
	}
	var (
		key    any
		format gpu.PixelFormat
		rect   image.Rectangle
		pix    []byte
		stride int
	)
	if img.alpha != nil {
		key, format, rect, pix, stride = img.alpha, gpu.FormatAlpha8, img.alpha.Rect, img.alpha.Pix, img.alpha.Stride
	} else {
		key, format, rect, pix, stride = img.rgba, gpu.FormatRGBA8, img.rgba.Rect, img.rgba.Pix, img.rgba.Stride
	}
	if tex, ok := c.images[key]; ok {
		return tex, nil
	}
	tex, err := c.uploadPixels("image", format, rect.Dx(), rect.Dy(), gpu.OriginTopLeft, pix, stride)
	if err != nil {
		return nil, err
	}
	c.images[key] = tex
	return tex, nil
}

// uploadPixels creates a texture and fills it with top-down rows.
func (c *Context) uploadPixels(label string, format gpu.PixelFormat, w, h int, origin gpu.Origin,
	pix []byte, stride int) (gpu.Texture, error) {
	tex, err := c.device.CreateTexture(gpu.TextureDescriptor{
		Label:  label,
		Width:  w,
		Height: h,
		Format: format,
		Origin: origin,
	})
	if err != nil {
		return nil, fmt.Errorf("gpucanvas: create %s texture: %w", label, err)
	}
	if err := c.device.WritePixels(tex, image.Rect(0, 0, w, h), pix, stride); err != nil {
		c.device.ReleaseTexture(tex)
		return nil, fmt.Errorf("gpucanvas: upload %s: %w", label, err)
	}
	Logger().Debug("texture uploaded", "label", label, "width", w, "height", h, "format", format.String())
	return tex, nil
}
