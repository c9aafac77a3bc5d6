package wgpu

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/internal/logging"
	"github.com/gogpu/gpucanvas/render"
)

// Errors returned by the wgpu device.
var (
	// ErrNoDevice is returned when a provider does not expose hal objects.
	ErrNoDevice = errors.New("wgpu: provider has no hal device")

	// ErrForeignResource is returned for resources of another device.
	ErrForeignResource = errors.New("wgpu: resource from another device")

	// ErrInvalidSize is returned for textures with a non-positive or
	// oversized dimension.
	ErrInvalidSize = errors.New("wgpu: invalid texture size")
)

const (
	// copyPitchAlignment is the row alignment of buffer-texture copies.
	copyPitchAlignment = 256

	// waitSlice bounds one blocking fence wait so context cancellation is
	// observed.
	waitSlice = 10 * time.Millisecond

	// submitTimeout bounds internal waits that have no context.
	submitTimeout = 5 * time.Second
)

// submission is work the GPU has not necessarily finished. Its resources
// are destroyed once the fence passes value.
type submission struct {
	value   uint64
	cmd     hal.CommandBuffer
	buffers []hal.Buffer
	groups  []hal.BindGroup
}

// Device implements render.Device on a hal device and queue.
//
// A Device must be used from one goroutine at a time.
type Device struct {
	device  hal.Device
	queue   hal.Queue
	caps    gpu.Caps
	destroy func()

	fence      hal.Fence
	fenceValue uint64
	inflight   []submission

	samplers map[gpu.SamplerState]hal.Sampler
	textures map[*texture]struct{}
	targets  map[*renderTarget]struct{}
	programs map[*program]struct{}

	released bool
}

var _ render.Device = (*Device)(nil)

// newDevice wraps a hal device. destroy, when set, runs after the device
// resources are freed and owns the hal device itself.
func newDevice(device hal.Device, queue hal.Queue, destroy func(), opts ...Option) (*Device, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	fence, err := device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("wgpu: create fence: %w", err)
	}
	d := &Device{
		device:  device,
		queue:   queue,
		destroy: destroy,
		fence:   fence,
		caps: gpu.Caps{
			MaxTextureSize: o.maxTextureSize,
			MaxSampleCount: o.maxSampleCount,
		},
		samplers: make(map[gpu.SamplerState]hal.Sampler),
		textures: make(map[*texture]struct{}),
		targets:  make(map[*renderTarget]struct{}),
		programs: make(map[*program]struct{}),
	}
	logging.Logger().Info("wgpu device created",
		"maxTextureSize", o.maxTextureSize,
		"maxSampleCount", o.maxSampleCount)
	return d, nil
}

// Caps implements render.Device. WGSL has no framebuffer fetch, so custom
// blends always read a destination copy.
func (d *Device) Caps() gpu.Caps { return d.caps }

func (d *Device) checkDescriptor(desc gpu.TextureDescriptor) (gputypes.TextureFormat, error) {
	if d.released {
		return 0, render.ErrReleased
	}
	if desc.Width <= 0 || desc.Height <= 0 ||
		desc.Width > d.caps.MaxTextureSize || desc.Height > d.caps.MaxTextureSize {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidSize, desc.Width, desc.Height)
	}
	format, ok := halFormat(desc.Format)
	if !ok {
		return 0, fmt.Errorf("%w: %s", render.ErrUnsupportedFormat, desc.Format)
	}
	return format, nil
}

// newTexture allocates a texture. resting is the usage the texture returns
// to after copies.
func (d *Device) newTexture(desc gpu.TextureDescriptor, format gputypes.TextureFormat,
	usage, resting gputypes.TextureUsage) (*texture, error) {
	levels := desc.MipLevels()
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1},
		MipLevelCount: uint32(levels),
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", desc.Label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:     desc.Label + "_view",
		Dimension: gputypes.TextureViewDimension2D,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create texture view %q: %w", desc.Label, err)
	}
	return &texture{
		id:     gpu.NextID(),
		label:  desc.Label,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		origin: desc.Origin,
		levels: levels,
		usage:  resting,
		tex:    tex,
		view:   view,
	}, nil
}

// CreateTexture implements render.Device.
func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	format, err := d.checkDescriptor(desc)
	if err != nil {
		return nil, err
	}
	t, err := d.newTexture(desc, format,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst|gputypes.TextureUsageCopySrc,
		gputypes.TextureUsageTextureBinding)
	if err != nil {
		return nil, err
	}
	d.textures[t] = struct{}{}
	return t, nil
}

// CreateRenderTarget implements render.Device.
func (d *Device) CreateRenderTarget(desc gpu.RenderTargetDescriptor) (gpu.RenderTarget, error) {
	format, err := d.checkDescriptor(desc.TextureDescriptor)
	if err != nil {
		return nil, err
	}
	samples := max(desc.SampleCount, 1)
	if samples > d.caps.MaxSampleCount {
		return nil, fmt.Errorf("wgpu: %d samples exceed the maximum of %d", samples, d.caps.MaxSampleCount)
	}
	tex, err := d.newTexture(desc.TextureDescriptor, format,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding|
			gputypes.TextureUsageCopySrc|gputypes.TextureUsageCopyDst,
		gputypes.TextureUsageRenderAttachment)
	if err != nil {
		return nil, err
	}
	rt := &renderTarget{id: gpu.NextID(), tex: tex, samples: samples}
	if samples > 1 {
		rt.msaa, err = d.device.CreateTexture(&hal.TextureDescriptor{
			Label:         desc.Label + "_msaa",
			Size:          hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   uint32(samples),
			Dimension:     gputypes.TextureDimension2D,
			Format:        format,
			Usage:         gputypes.TextureUsageRenderAttachment,
		})
		if err == nil {
			rt.msaaView, err = d.device.CreateTextureView(rt.msaa, &hal.TextureViewDescriptor{
				Label: desc.Label + "_msaa_view",
			})
		}
		if err != nil {
			d.destroyTarget(rt)
			return nil, fmt.Errorf("wgpu: create multisampled target %q: %w", desc.Label, err)
		}
	}
	d.targets[rt] = struct{}{}
	return rt, nil
}

// lookup returns the device texture behind tex. Render target textures
// are accepted.
func (d *Device) lookup(tex gpu.Texture) (*texture, error) {
	if d.released {
		return nil, render.ErrReleased
	}
	t, ok := tex.(*texture)
	if !ok {
		return nil, ErrForeignResource
	}
	if _, own := d.textures[t]; !own {
		if !d.ownsTargetTexture(t) {
			return nil, ErrForeignResource
		}
	}
	if t.released {
		return nil, fmt.Errorf("wgpu: texture %q released", t.label)
	}
	return t, nil
}

func (d *Device) ownsTargetTexture(t *texture) bool {
	for rt := range d.targets {
		if rt.tex == t {
			return true
		}
	}
	return false
}

func (d *Device) lookupTarget(rt gpu.RenderTarget) (*renderTarget, error) {
	if d.released {
		return nil, render.ErrReleased
	}
	r, ok := rt.(*renderTarget)
	if !ok {
		return nil, ErrForeignResource
	}
	if _, own := d.targets[r]; !own {
		return nil, ErrForeignResource
	}
	if r.tex.released {
		return nil, fmt.Errorf("wgpu: render target %q released", r.tex.label)
	}
	return r, nil
}

// storageRect returns the storage rectangle of a logical rectangle.
func storageRect(t *texture, r image.Rectangle) image.Rectangle {
	if t.origin == gpu.OriginBottomLeft {
		return image.Rect(r.Min.X, t.height-r.Max.Y, r.Max.X, t.height-r.Min.Y)
	}
	return r
}

// WritePixels implements render.Device.
func (d *Device) WritePixels(tex gpu.Texture, rect image.Rectangle, data []byte, rowBytes int) error {
	t, err := d.lookup(tex)
	if err != nil {
		return err
	}
	if rect.Empty() || !rect.In(image.Rect(0, 0, t.width, t.height)) {
		return fmt.Errorf("%w: %v", render.ErrInvalidRect, rect)
	}
	bpp := t.format.BytesPerPixel()
	w, h := rect.Dx(), rect.Dy()
	if rowBytes < w*bpp || len(data) < (h-1)*rowBytes+w*bpp {
		return fmt.Errorf("wgpu: %d bytes cannot hold %d rows of %d pixels", len(data), h, w)
	}

	// Repack into storage row order and the texture's channel order.
	packed := make([]byte, w*h*bpp)
	for i := 0; i < h; i++ {
		srcRow := i
		if t.origin == gpu.OriginBottomLeft {
			srcRow = h - 1 - i
		}
		src := data[srcRow*rowBytes : srcRow*rowBytes+w*bpp]
		dst := packed[i*w*bpp : (i+1)*w*bpp]
		copy(dst, src)
		if t.format == gpu.FormatBGRA8 {
			swapRB(dst)
		}
	}

	sr := storageRect(t, rect)
	d.queue.WriteTexture(&hal.ImageCopyTexture{
		Texture:  t.tex,
		MipLevel: 0,
		Origin:   hal.Origin3D{X: uint32(sr.Min.X), Y: uint32(sr.Min.Y), Z: 0},
		Aspect:   gputypes.TextureAspectAll,
	}, packed, &hal.ImageDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(w * bpp),
		RowsPerImage: uint32(h),
	}, &hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})
	return nil
}

// ReadPixels implements render.Device.
func (d *Device) ReadPixels(rt gpu.RenderTarget, rect image.Rectangle, dst []byte, rowBytes int) error {
	r, err := d.lookupTarget(rt)
	if err != nil {
		return err
	}
	t := r.tex
	if rect.Empty() || !rect.In(image.Rect(0, 0, t.width, t.height)) {
		return fmt.Errorf("%w: %v", render.ErrInvalidRect, rect)
	}
	w, h := rect.Dx(), rect.Dy()
	if rowBytes < w*4 || len(dst) < (h-1)*rowBytes+w*4 {
		return fmt.Errorf("wgpu: %d bytes cannot hold %d rows of %d pixels", len(dst), h, w)
	}
	pixels, stride, err := d.readback(t, storageRect(t, rect))
	if err != nil {
		return err
	}
	bpp := t.format.BytesPerPixel()
	for i := 0; i < h; i++ {
		srcRow := i
		if t.origin == gpu.OriginBottomLeft {
			srcRow = h - 1 - i
		}
		src := pixels[srcRow*stride:]
		out := dst[i*rowBytes : i*rowBytes+w*4]
		for x := 0; x < w; x++ {
			p := src[x*bpp : x*bpp+bpp]
			o := out[x*4 : x*4+4]
			switch t.format {
			case gpu.FormatAlpha8:
				o[0], o[1], o[2], o[3] = 0, 0, 0, p[0]
			case gpu.FormatBGRA8:
				o[0], o[1], o[2], o[3] = p[2], p[1], p[0], p[3]
			default:
				copy(o, p)
			}
		}
	}
	return nil
}

// readback copies a storage rectangle of t to the CPU. It returns the
// rows with their padded stride.
func (d *Device) readback(t *texture, sr image.Rectangle) ([]byte, int, error) {
	w, h := uint32(sr.Dx()), uint32(sr.Dy())
	bytesPerRow := w * uint32(t.format.BytesPerPixel())
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gpucanvas_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	enc, err := d.beginEncoder("gpucanvas_readback")
	if err != nil {
		return nil, 0, err
	}
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: t.usage,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	enc.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase: hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(sr.Min.X), Y: uint32(sr.Min.Y)},
			Aspect:   gputypes.TextureAspectAll,
		},
		Size: hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: t.usage,
		},
	}})
	value, err := d.submit(enc, nil, nil)
	if err != nil {
		return nil, 0, err
	}
	if err := d.wait(context.Background(), value); err != nil {
		return nil, 0, err
	}
	out := make([]byte, size)
	if err := d.queue.ReadBuffer(staging, 0, out); err != nil {
		return nil, 0, fmt.Errorf("wgpu: readback: %w", err)
	}
	return out, int(alignedBytesPerRow), nil
}

// CopyToTexture implements render.Device.
func (d *Device) CopyToTexture(dst gpu.Texture, src gpu.RenderTarget, srcRect image.Rectangle) error {
	r, err := d.lookupTarget(src)
	if err != nil {
		return err
	}
	t, err := d.lookup(dst)
	if err != nil {
		return err
	}
	if srcRect.Empty() || !srcRect.In(image.Rect(0, 0, r.tex.width, r.tex.height)) ||
		srcRect.Dx() > t.width || srcRect.Dy() > t.height {
		return fmt.Errorf("%w: %v", render.ErrInvalidRect, srcRect)
	}
	enc, err := d.beginEncoder("gpucanvas_dst_copy")
	if err != nil {
		return err
	}
	enc.CopyTextureToTexture(r.tex.tex, t.tex, []hal.TextureCopy{{
		SrcBase: hal.ImageCopyTexture{
			Texture: r.tex.tex,
			Origin:  hal.Origin3D{X: uint32(srcRect.Min.X), Y: uint32(srcRect.Min.Y)},
			Aspect:  gputypes.TextureAspectAll,
		},
		DstBase: hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		Size:    hal.Extent3D{Width: uint32(srcRect.Dx()), Height: uint32(srcRect.Dy()), DepthOrArrayLayers: 1},
	}})
	_, err = d.submit(enc, nil, nil)
	return err
}

// ReleaseTexture implements render.Device. Releasing twice is a no-op.
func (d *Device) ReleaseTexture(tex gpu.Texture) {
	if d.released {
		return
	}
	if t, ok := tex.(*texture); ok {
		if _, own := d.textures[t]; own {
			delete(d.textures, t)
			d.destroyTexture(t)
			return
		}
		for rt := range d.targets {
			if rt.tex == t {
				delete(d.targets, rt)
				d.destroyTarget(rt)
				return
			}
		}
	}
}

func (d *Device) destroyTexture(t *texture) {
	if t.released {
		return
	}
	t.released = true
	// Pending passes may still sample the texture.
	_ = d.wait(context.Background(), d.fenceValue)
	if t.view != nil {
		d.device.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		d.device.DestroyTexture(t.tex)
	}
}

func (d *Device) destroyTarget(rt *renderTarget) {
	d.destroyTexture(rt.tex)
	if rt.msaaView != nil {
		d.device.DestroyTextureView(rt.msaaView)
	}
	if rt.msaa != nil {
		d.device.DestroyTexture(rt.msaa)
	}
}

// sampler returns the cached hal sampler for a sampler state.
func (d *Device) sampler(s gpu.SamplerState) (hal.Sampler, error) {
	if smp, ok := d.samplers[s]; ok {
		return smp, nil
	}
	smp, err := d.device.CreateSampler(samplerDescriptor(s))
	if err != nil {
		return nil, fmt.Errorf("wgpu: create sampler: %w", err)
	}
	d.samplers[s] = smp
	return smp, nil
}

func (d *Device) beginEncoder(label string) (hal.CommandEncoder, error) {
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	return enc, nil
}

// submit ends enc and submits it. buffers and groups are destroyed once
// the submission completes. It returns the fence value of the submission.
func (d *Device) submit(enc hal.CommandEncoder, buffers []hal.Buffer, groups []hal.BindGroup) (uint64, error) {
	cmd, err := enc.EndEncoding()
	if err != nil {
		d.freeTransient(buffers, groups)
		return 0, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	d.fenceValue++
	if err := d.queue.Submit([]hal.CommandBuffer{cmd}, d.fence, d.fenceValue); err != nil {
		d.device.FreeCommandBuffer(cmd)
		d.freeTransient(buffers, groups)
		return 0, fmt.Errorf("wgpu: submit: %w", err)
	}
	d.inflight = append(d.inflight, submission{
		value:   d.fenceValue,
		cmd:     cmd,
		buffers: buffers,
		groups:  groups,
	})
	return d.fenceValue, nil
}

// wait blocks until the fence reaches value, then frees the resources of
// finished submissions.
func (d *Device) wait(ctx context.Context, value uint64) error {
	if value == 0 {
		return nil
	}
	deadline := time.Now().Add(submitTimeout)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := d.device.Wait(d.fence, value, waitSlice)
		if err != nil {
			return fmt.Errorf("wgpu: wait for GPU: %w", err)
		}
		if ok {
			break
		}
		if ctx.Done() == nil && time.Now().After(deadline) {
			return fmt.Errorf("wgpu: wait for GPU: fence %d not reached after %v", value, submitTimeout)
		}
	}
	d.retire(value)
	return nil
}

func (d *Device) retire(value uint64) {
	n := 0
	for _, s := range d.inflight {
		if s.value > value {
			d.inflight[n] = s
			n++
			continue
		}
		d.device.FreeCommandBuffer(s.cmd)
		d.freeTransient(s.buffers, s.groups)
	}
	d.inflight = d.inflight[:n]
}

func (d *Device) freeTransient(buffers []hal.Buffer, groups []hal.BindGroup) {
	for _, g := range groups {
		d.device.DestroyBindGroup(g)
	}
	for _, b := range buffers {
		d.device.DestroyBuffer(b)
	}
}

// fence is a point in the submission stream.
type fence struct {
	dev   *Device
	value uint64
}

// Signaled implements render.Fence.
func (f *fence) Signaled() bool {
	if f.dev.released {
		return true
	}
	ok, err := f.dev.device.Wait(f.dev.fence, f.value, 0)
	return err == nil && ok
}

// InsertFence implements render.Device.
func (d *Device) InsertFence() (render.Fence, error) {
	if d.released {
		return nil, render.ErrReleased
	}
	return &fence{dev: d, value: d.fenceValue}, nil
}

// WaitFence implements render.Device.
func (d *Device) WaitFence(ctx context.Context, f render.Fence) error {
	if d.released {
		return render.ErrReleased
	}
	ff, ok := f.(*fence)
	if !ok || ff.dev != d {
		return ErrForeignResource
	}
	return d.wait(ctx, ff.value)
}

// Release implements render.Device. It waits for submitted work, frees
// every resource and then the hal device when the Device owns it.
func (d *Device) Release() {
	if d.released {
		return
	}
	if err := d.wait(context.Background(), d.fenceValue); err != nil {
		logging.Logger().Warn("wgpu: release before GPU idle", "err", err)
	}
	for p := range d.programs {
		p.destroy()
	}
	for t := range d.textures {
		d.destroyTexture(t)
	}
	for rt := range d.targets {
		d.destroyTarget(rt)
	}
	for _, s := range d.samplers {
		d.device.DestroySampler(s)
	}
	d.device.DestroyFence(d.fence)
	d.released = true
	if d.destroy != nil {
		d.destroy()
	}
	logging.Logger().Info("wgpu device released")
}

func swapRB(p []byte) {
	for i := 0; i+3 < len(p); i += 4 {
		p[i], p[i+2] = p[i+2], p[i]
	}
}
