package gpucanvas

import "errors"

var (
	// ErrInvalidSize is returned when a surface is requested with a zero
	// or negative dimension.
	ErrInvalidSize = errors.New("gpucanvas: invalid surface size")

	// ErrNilDevice is returned by NewContext without a device.
	ErrNilDevice = errors.New("gpucanvas: nil device")

	// ErrContextReleased is returned by operations on a released context.
	ErrContextReleased = errors.New("gpucanvas: context released")

	// ErrNotSampleable is returned when a surface snapshot is requested
	// from a render target without a texture.
	ErrNotSampleable = errors.New("gpucanvas: render target cannot be sampled")

	// ErrForeignSurface is returned when a render target or image belongs
	// to another context.
	ErrForeignSurface = errors.New("gpucanvas: resource belongs to another context")
)
