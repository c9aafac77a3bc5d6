// Package wgpu implements render.Device on gogpu/wgpu hal devices.
//
// Every pipeline key compiles to one generated WGSL module, translated to
// SPIR-V with naga. Render pipelines for a program are created lazily for
// each target format and sample count.
//
// # Devices
//
// A Device either wraps the hal device of a host application:
//
//	dev, err := wgpu.NewDeviceFromProvider(provider)
//
// or opens a standalone Vulkan device:
//
//	dev, err := wgpu.NewStandaloneDevice()
//
// Builds tagged nogpu leave out the Vulkan backend and NewStandaloneDevice
// always fails.
//
// # Shader model
//
// Uniform data lives in one array of vec4 slots. Slot 0 maps pixels to
// clip space for the bound target and slot 1 locates the destination copy.
// Each fragment processor takes its slots in pre-order, and each sampler
// binds a texture and a sampler at consecutive binding indices.
//
// WGSL has no framebuffer fetch. Custom blend modes read a destination
// copy bound as the last texture unit and write the blended result with a
// replace blend state.
//
// Mipmaps are box-filtered on the CPU after a readback of level 0.
package wgpu
