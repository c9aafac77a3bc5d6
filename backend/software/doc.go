// Package software implements render.Device on the CPU.
//
// The device is the reference backend: it rasterizes triangles with a
// top-left fill rule at pixel centers (four samples for multisampled
// targets), interpolates vertex attributes linearly and evaluates the
// fragment processor graph of the bound pipeline for every covered pixel.
// Results are written as 8-bit premultiplied pixels, so tests can compare
// exact values.
//
//	dev := software.NewDevice(software.WithFramebufferFetch(true))
//	ctx, err := gpucanvas.NewContext(dev)
//
// Textures keep their rows in storage order. Bottom-left textures store
// the logical bottom row first; WritePixels and ReadPixels flip rows so
// callers always see top-down data.
package software
