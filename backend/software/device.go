package software

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/internal/logging"
	"github.com/gogpu/gpucanvas/pipeline"
	"github.com/gogpu/gpucanvas/processor"
	"github.com/gogpu/gpucanvas/render"
)

// Errors returned by the software device.
var (
	// ErrInvalidSize is returned for textures with a non-positive or
	// oversized dimension.
	ErrInvalidSize = errors.New("software: invalid texture size")

	// ErrForeignResource is returned for textures, programs and fences
	// created by another device.
	ErrForeignResource = errors.New("software: resource from another device")

	// ErrShortBuffer is returned when a pixel buffer cannot hold the
	// requested rows.
	ErrShortBuffer = errors.New("software: pixel buffer too small")
)

// Stats counts device activity. Textures is the number of live textures.
type Stats struct {
	Textures         int
	Uploads          int
	ProgramsCompiled int
	Passes           int
	Draws            int
	Clears           int
	DstCopies        int
}

// Device is a CPU implementation of render.Device. It rasterizes
// triangles at pixel centers and interprets fragment processors per
// pixel, producing the same images on every platform.
//
// A Device must be used from one goroutine at a time.
type Device struct {
	opts     options
	stats    Stats
	released bool
}

var _ render.Device = (*Device)(nil)

// NewDevice returns a software device.
func NewDevice(opts ...Option) *Device {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logging.Logger().Info("software device created",
		"framebufferFetch", o.framebufferFetch,
		"maxTextureSize", o.maxTextureSize)
	return &Device{opts: o}
}

// Stats returns the activity counters.
func (d *Device) Stats() Stats { return d.stats }

// Caps implements render.Device.
func (d *Device) Caps() gpu.Caps {
	return gpu.Caps{
		FramebufferFetch: d.opts.framebufferFetch,
		MaxTextureSize:   d.opts.maxTextureSize,
		MaxSampleCount:   d.opts.maxSampleCount,
	}
}

func (d *Device) checkDescriptor(desc gpu.TextureDescriptor) error {
	if d.released {
		return render.ErrReleased
	}
	if desc.Width <= 0 || desc.Height <= 0 ||
		desc.Width > d.opts.maxTextureSize || desc.Height > d.opts.maxTextureSize {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, desc.Width, desc.Height)
	}
	switch desc.Format {
	case gpu.FormatRGBA8, gpu.FormatBGRA8, gpu.FormatAlpha8:
		return nil
	}
	return fmt.Errorf("%w: %s", render.ErrUnsupportedFormat, desc.Format)
}

// CreateTexture implements render.Device.
func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	if err := d.checkDescriptor(desc); err != nil {
		return nil, err
	}
	d.stats.Textures++
	return newTexture(desc), nil
}

// CreateRenderTarget implements render.Device. A zero sample count means
// one sample.
func (d *Device) CreateRenderTarget(desc gpu.RenderTargetDescriptor) (gpu.RenderTarget, error) {
	if err := d.checkDescriptor(desc.TextureDescriptor); err != nil {
		return nil, err
	}
	samples := max(desc.SampleCount, 1)
	if samples > d.opts.maxSampleCount {
		return nil, fmt.Errorf("software: %d samples exceed the maximum of %d", samples, d.opts.maxSampleCount)
	}
	d.stats.Textures++
	return &renderTarget{id: gpu.NextID(), tex: newTexture(desc.TextureDescriptor), samples: samples}, nil
}

// lookup returns the device texture behind tex.
func (d *Device) lookup(tex gpu.Texture) (*texture, error) {
	if d.released {
		return nil, render.ErrReleased
	}
	t, ok := tex.(*texture)
	if !ok || t == nil {
		return nil, ErrForeignResource
	}
	if t.released {
		return nil, fmt.Errorf("software: texture %q used after release", t.label)
	}
	return t, nil
}

func (d *Device) lookupTarget(rt gpu.RenderTarget) (*renderTarget, error) {
	r, ok := rt.(*renderTarget)
	if !ok || r == nil {
		return nil, ErrForeignResource
	}
	if _, err := d.lookup(r.tex); err != nil {
		return nil, err
	}
	return r, nil
}

// checkRows validates a row transfer of rect through a buffer.
func checkRows(t *texture, rect image.Rectangle, n, rowBytes int) error {
	if rect.Empty() || !rect.In(t.bounds()) {
		return fmt.Errorf("%w: %v in %v", render.ErrInvalidRect, rect, t.bounds())
	}
	need := (rect.Dy()-1)*rowBytes + rect.Dx()*t.format.BytesPerPixel()
	if rowBytes < rect.Dx()*t.format.BytesPerPixel() || n < need {
		return fmt.Errorf("%w: %d bytes, stride %d for %v", ErrShortBuffer, n, rowBytes, rect)
	}
	return nil
}

// WritePixels implements render.Device. Four-channel textures take RGBA8
// rows; alpha-only textures take one byte per pixel.
func (d *Device) WritePixels(tex gpu.Texture, rect image.Rectangle, data []byte, rowBytes int) error {
	t, err := d.lookup(tex)
	if err != nil {
		return err
	}
	if err := checkRows(t, rect, len(data), rowBytes); err != nil {
		return err
	}
	bpp := t.format.BytesPerPixel()
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := data[(y-rect.Min.Y)*rowBytes:]
		sy := t.storageRow(y)
		if bpp == 1 {
			copy(t.levels[0][sy*t.width+rect.Min.X:], row[:rect.Dx()])
			continue
		}
		for x := rect.Min.X; x < rect.Max.X; x++ {
			i := (x - rect.Min.X) * 4
			t.store(0, x, sy, gpu.FromRGBA8(rgba8(row[i:i+4])))
		}
	}
	d.stats.Uploads++
	return nil
}

// ReadPixels implements render.Device.
func (d *Device) ReadPixels(rt gpu.RenderTarget, rect image.Rectangle, dst []byte, rowBytes int) error {
	r, err := d.lookupTarget(rt)
	if err != nil {
		return err
	}
	t := r.tex
	if rect.Empty() || !rect.In(t.bounds()) {
		return fmt.Errorf("%w: %v in %v", render.ErrInvalidRect, rect, t.bounds())
	}
	if rowBytes < rect.Dx()*4 || len(dst) < (rect.Dy()-1)*rowBytes+rect.Dx()*4 {
		return fmt.Errorf("%w: %d bytes, stride %d for %v", ErrShortBuffer, len(dst), rowBytes, rect)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := dst[(y-rect.Min.Y)*rowBytes:]
		sy := t.storageRow(y)
		for x := rect.Min.X; x < rect.Max.X; x++ {
			p := t.texel(0, x, sy).RGBA8()
			i := (x - rect.Min.X) * 4
			row[i], row[i+1], row[i+2], row[i+3] = p.R, p.G, p.B, p.A
		}
	}
	return nil
}

// CopyToTexture implements render.Device.
func (d *Device) CopyToTexture(dst gpu.Texture, src gpu.RenderTarget, srcRect image.Rectangle) error {
	to, err := d.lookup(dst)
	if err != nil {
		return err
	}
	from, err := d.lookupTarget(src)
	if err != nil {
		return err
	}
	if srcRect.Empty() || !srcRect.In(from.tex.bounds()) {
		return fmt.Errorf("%w: %v in %v", render.ErrInvalidRect, srcRect, from.tex.bounds())
	}
	if srcRect.Dx() > to.width || srcRect.Dy() > to.height {
		return fmt.Errorf("%w: %v does not fit %dx%d", render.ErrInvalidRect, srcRect, to.width, to.height)
	}
	for y := 0; y < srcRect.Dy(); y++ {
		for x := 0; x < srcRect.Dx(); x++ {
			to.store(0, x, y, from.tex.texel(0, srcRect.Min.X+x, srcRect.Min.Y+y))
		}
	}
	d.stats.DstCopies++
	return nil
}

// ReleaseTexture implements render.Device. Releasing twice is a no-op.
func (d *Device) ReleaseTexture(tex gpu.Texture) {
	t, ok := tex.(*texture)
	if !ok || t == nil || t.released {
		return
	}
	t.released = true
	t.levels = nil
	d.stats.Textures--
}

// CompileProgram implements render.Device. It checks that every
// processor is one the interpreter knows and that a custom blend can
// read the destination.
func (d *Device) CompileProgram(p *pipeline.Pipeline) (render.Program, error) {
	if d.released {
		return nil, render.ErrReleased
	}
	switch p.Geometry().(type) {
	case *processor.QuadPerEdgeAA, *processor.Ellipse, *processor.DefaultGeometry:
	default:
		return nil, fmt.Errorf("software: unsupported geometry %s", p.Geometry().ClassID())
	}
	it := processor.NewIter(p.Fragments()...)
	for fp := it.Next(); fp != nil; fp = it.Next() {
		if !supported(fp) {
			return nil, fmt.Errorf("software: unsupported processor %s", fp.ClassID())
		}
	}
	if _, custom := p.Blend().(blend.CustomEquation); custom && p.DstTexture() == nil && !d.opts.framebufferFetch {
		return nil, errors.New("software: custom blend without destination read")
	}
	d.stats.ProgramsCompiled++
	return &program{dev: d, key: p.Key()}, nil
}

// BeginRenderPass implements render.Device.
func (d *Device) BeginRenderPass(rt gpu.RenderTarget) (render.RenderPass, error) {
	r, err := d.lookupTarget(rt)
	if err != nil {
		return nil, err
	}
	d.stats.Passes++
	return newPass(d, r), nil
}

type fence struct{ dev *Device }

func (fence) Signaled() bool { return true }

// InsertFence implements render.Device. Work completes synchronously, so
// every fence is signaled on creation.
func (d *Device) InsertFence() (render.Fence, error) {
	if d.released {
		return nil, render.ErrReleased
	}
	return fence{dev: d}, nil
}

// WaitFence implements render.Device.
func (d *Device) WaitFence(ctx context.Context, f render.Fence) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if fc, ok := f.(fence); !ok || fc.dev != d {
		return ErrForeignResource
	}
	return nil
}

// Release implements render.Device.
func (d *Device) Release() {
	if d.released {
		return
	}
	d.released = true
	logging.Logger().Info("software device released", "liveTextures", d.stats.Textures)
}

// program is a validated pipeline key.
type program struct {
	dev      *Device
	key      string
	released bool
}

func (p *program) Release() { p.released = true }

func supported(fp processor.Fragment) bool {
	switch fp.(type) {
	case *processor.ConstColor, *processor.TextureEffect, *processor.DeviceSpaceTextureEffect,
		*processor.AARectEffect, *processor.Xfermode, *processor.Series, *processor.ColorMatrix,
		*processor.Gradient, *processor.Modulate:
		return true
	}
	return false
}

func rgba8(b []byte) color.RGBA {
	return color.RGBA{R: b[0], G: b[1], B: b[2], A: b[3]}
}
