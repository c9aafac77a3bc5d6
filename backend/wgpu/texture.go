package wgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpucanvas/gpu"
)

// texture is a hal texture with the view used for sampling.
type texture struct {
	id        uint64
	label     string
	width     int
	height    int
	format    gpu.PixelFormat
	origin    gpu.Origin
	levels    int
	usage     gputypes.TextureUsage
	tex       hal.Texture
	view      hal.TextureView
	released  bool
}

func (t *texture) ID() uint64              { return t.id }
func (t *texture) Width() int              { return t.width }
func (t *texture) Height() int             { return t.height }
func (t *texture) Origin() gpu.Origin      { return t.origin }
func (t *texture) Format() gpu.PixelFormat { return t.format }
func (t *texture) Mipmapped() bool         { return t.levels > 1 }

// renderTarget draws into its texture. Multisampled targets render into
// msaa and resolve into tex at the end of every pass.
type renderTarget struct {
	id       uint64
	tex      *texture
	samples  int
	msaa     hal.Texture
	msaaView hal.TextureView
}

func (r *renderTarget) ID() uint64              { return r.id }
func (r *renderTarget) Width() int              { return r.tex.width }
func (r *renderTarget) Height() int             { return r.tex.height }
func (r *renderTarget) Origin() gpu.Origin      { return r.tex.origin }
func (r *renderTarget) Format() gpu.PixelFormat { return r.tex.format }
func (r *renderTarget) SampleCount() int        { return r.samples }
func (r *renderTarget) Texture() gpu.Texture    { return r.tex }

// halFormat returns the hal texture format of f.
func halFormat(f gpu.PixelFormat) (gputypes.TextureFormat, bool) {
	switch f {
	case gpu.FormatRGBA8:
		return gputypes.TextureFormatRGBA8Unorm, true
	case gpu.FormatBGRA8:
		return gputypes.TextureFormatBGRA8Unorm, true
	case gpu.FormatAlpha8:
		return gputypes.TextureFormatR8Unorm, true
	}
	return 0, false
}

func addressMode(w gpu.WrapMode) gputypes.AddressMode {
	switch w {
	case gpu.WrapRepeat:
		return gputypes.AddressModeRepeat
	case gpu.WrapMirrorRepeat:
		return gputypes.AddressModeMirrorRepeat
	}
	// Border addressing is resolved in the generated shader.
	return gputypes.AddressModeClampToEdge
}

func filterMode(f gpu.FilterMode) gputypes.FilterMode {
	if f == gpu.FilterLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

// samplerDescriptor returns the hal sampler for a sampler state.
func samplerDescriptor(s gpu.SamplerState) *hal.SamplerDescriptor {
	mip := gputypes.FilterModeNearest
	if s.Mipmap == gpu.MipmapLinear {
		mip = gputypes.FilterModeLinear
	}
	return &hal.SamplerDescriptor{
		Label:        "gpucanvas_sampler",
		AddressModeU: addressMode(s.WrapX),
		AddressModeV: addressMode(s.WrapY),
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filterMode(s.Filter),
		MinFilter:    filterMode(s.Filter),
		MipmapFilter: mip,
	}
}
