// Package render defines the contract between the drawing core and a GPU
// backend.
//
// The core records draws into ops and, on flush, replays them against a
// Device: it compiles one Program per distinct pipeline key, opens a
// RenderPass on the target and issues state changes and draws. Every call
// is synchronous from the calling goroutine; a Device is used by a single
// context at a time. The only blocking point is WaitFence.
package render

import (
	"context"
	"errors"
	"image"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/pipeline"
)

// Errors shared by backends.
var (
	// ErrReleased is returned by a device after Release.
	ErrReleased = errors.New("render: device released")

	// ErrUnsupportedFormat is returned for pixel formats a device cannot
	// allocate.
	ErrUnsupportedFormat = errors.New("render: unsupported pixel format")

	// ErrInvalidRect is returned when a pixel rectangle lies outside the
	// texture.
	ErrInvalidRect = errors.New("render: rectangle outside texture")
)

// Program is a compiled pipeline. It is owned by the program cache, which
// calls Release on eviction.
type Program interface {
	Release()
}

// Fence marks a point in the device's command stream.
type Fence interface {
	// Signaled reports whether the GPU has passed the fence.
	Signaled() bool
}

// Device is a GPU backend.
//
// Resource lifecycle:
//   - Textures and render targets are created via Create* methods and
//     released with ReleaseTexture.
//   - Programs are released through Program.Release.
//   - After Release every method fails with ErrReleased.
type Device interface {
	// === Capabilities ===

	// Caps returns the device capabilities.
	Caps() gpu.Caps

	// === Textures ===

	// CreateTexture allocates a sampleable texture.
	CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error)

	// CreateRenderTarget allocates a texture that can be drawn into.
	CreateRenderTarget(desc gpu.RenderTargetDescriptor) (gpu.RenderTarget, error)

	// WritePixels uploads tightly or loosely packed rows into rect of
	// tex. data holds rect's rows top-down in logical orientation;
	// rowBytes is the stride between rows.
	WritePixels(tex gpu.Texture, rect image.Rectangle, data []byte, rowBytes int) error

	// ReadPixels copies rect of rt into dst as RGBA8 rows, top-down in
	// logical orientation.
	ReadPixels(rt gpu.RenderTarget, rect image.Rectangle, dst []byte, rowBytes int) error

	// CopyToTexture copies srcRect of src, in storage coordinates, to the
	// origin of dst. It snapshots the destination for custom blends.
	CopyToTexture(dst gpu.Texture, src gpu.RenderTarget, srcRect image.Rectangle) error

	// RegenerateMipmaps rebuilds levels 1..n of tex from level 0.
	RegenerateMipmaps(tex gpu.Texture) error

	// ReleaseTexture frees a texture or a render target's texture.
	ReleaseTexture(tex gpu.Texture)

	// === Programs ===

	// CompileProgram builds the program for p. Two pipelines with equal
	// keys must be able to share the result.
	CompileProgram(p *pipeline.Pipeline) (Program, error)

	// === Rendering ===

	// BeginRenderPass opens a pass that loads the current contents of rt.
	BeginRenderPass(rt gpu.RenderTarget) (RenderPass, error)

	// === Synchronization ===

	// InsertFence marks the end of the submitted work.
	InsertFence() (Fence, error)

	// WaitFence blocks until f signals or ctx is done.
	WaitFence(ctx context.Context, f Fence) error

	// Release frees every device resource.
	Release()
}

// RenderPass records draws into one render target.
//
// Coordinates: vertex positions are logical device pixels (y down). The
// scissor and clear rectangles are in storage coordinates of the target,
// which differ from logical ones for bottom-left origin targets. An empty
// rectangle means the whole target.
type RenderPass interface {
	// BindProgram selects the program and uploads the uniform data of p.
	BindProgram(prog Program, p *pipeline.Pipeline) error

	// BindTexture binds tex to a texture unit. Units follow the order of
	// Pipeline.Samplers.
	BindTexture(unit int, tex gpu.Texture, state gpu.SamplerState)

	SetScissor(r image.Rectangle)
	SetBlend(desc blend.Description)
	SetViewport(width, height int)

	// Draw draws non-indexed triangles from interleaved float32 vertices
	// laid out by the bound pipeline's geometry.
	Draw(vertices []float32, vertexCount int) error

	// DrawIndexed draws indexed triangles.
	DrawIndexed(vertices []float32, indices []uint16) error

	// Clear fills rect with color, ignoring blend state.
	Clear(rect image.Rectangle, color gpu.Color) error

	// End submits the pass. The pass must not be used afterwards.
	End() error

	// Err returns the first error recorded by a state change.
	Err() error
}
