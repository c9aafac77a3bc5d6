package gpu

import (
	"image"
	"sync/atomic"
)

var nextID atomic.Uint64

// NextID returns a process-wide unique, strictly increasing resource id.
func NextID() uint64 {
	return nextID.Add(1)
}

// Texture is a sampled GPU image owned by a backend.
type Texture interface {
	// ID is unique among live textures of the process.
	ID() uint64
	Width() int
	Height() int
	Origin() Origin
	Format() PixelFormat
	Mipmapped() bool
}

// RenderTarget is a drawable backend surface.
type RenderTarget interface {
	ID() uint64
	Width() int
	Height() int
	Origin() Origin
	Format() PixelFormat
	SampleCount() int
	// Texture returns the texture the target resolves into, or nil when
	// the target cannot be sampled.
	Texture() Texture
}

// Bounds returns the full pixel bounds of a render target.
func Bounds(rt RenderTarget) image.Rectangle {
	return image.Rect(0, 0, rt.Width(), rt.Height())
}

// TextureDescriptor describes a texture to create.
type TextureDescriptor struct {
	Label     string
	Width     int
	Height    int
	Format    PixelFormat
	Origin    Origin
	Mipmapped bool
}

// MipLevels returns the number of mip levels the descriptor implies.
func (d TextureDescriptor) MipLevels() int {
	if !d.Mipmapped {
		return 1
	}
	return MipLevelCount(d.Width, d.Height)
}

// MipLevelCount returns the full chain length for a w x h image.
func MipLevelCount(w, h int) int {
	n := 1
	for w > 1 || h > 1 {
		w, h = max(w/2, 1), max(h/2, 1)
		n++
	}
	return n
}

// RenderTargetDescriptor describes a render target to create.
type RenderTargetDescriptor struct {
	TextureDescriptor
	SampleCount int
}

// FilterMode selects texel filtering.
type FilterMode uint8

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// MipmapMode selects filtering between mip levels.
type MipmapMode uint8

const (
	MipmapNone MipmapMode = iota
	MipmapNearest
	MipmapLinear
)

// WrapMode selects addressing outside [0, 1].
type WrapMode uint8

const (
	WrapClamp WrapMode = iota
	WrapRepeat
	WrapMirrorRepeat
	WrapClampToBorder
)

// SamplerState describes how a texture is sampled.
type SamplerState struct {
	WrapX  WrapMode
	WrapY  WrapMode
	Filter FilterMode
	Mipmap MipmapMode
}

// DefaultSampler is linear filtering with clamped edges.
var DefaultSampler = SamplerState{Filter: FilterLinear}

// Key packs the sampler state into 8 bits.
func (s SamplerState) Key() uint8 {
	return uint8(s.WrapX) | uint8(s.WrapY)<<2 | uint8(s.Filter)<<4 | uint8(s.Mipmap)<<5
}

// Caps describes device capabilities the core adapts to.
type Caps struct {
	// FramebufferFetch reports that shaders can read the destination
	// color, so custom blends need no destination copy.
	FramebufferFetch bool

	MaxTextureSize int
	MaxSampleCount int
}
