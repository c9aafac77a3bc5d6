// Package backend selects a render.Device implementation.
//
// Backends register a Factory under a name from init functions. Importing
// this package registers both built-in backends:
//
//   - "wgpu": a standalone Vulkan device on gogpu/wgpu
//   - "software": the CPU reference device (always available)
//
// # Backend Selection
//
// Use Default to open the best available device, or Get to request a
// specific backend by name:
//
//	dev := backend.Default()
//
//	dev, err := backend.Get(backend.BackendSoftware)
//
// A host that already owns a GPU device shares it with UseDeviceProvider
// before the first selection:
//
//	backend.UseDeviceProvider(app)
//	dev, err := backend.InitDefault()
package backend
