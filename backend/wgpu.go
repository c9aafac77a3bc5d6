package backend

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/gpucanvas/backend/wgpu"
	"github.com/gogpu/gpucanvas/render"
)

// init registers a standalone wgpu device. Builds tagged nogpu keep the
// registration, which then always fails over to the next backend.
func init() {
	Register(BackendWGPU, func() (render.Device, error) {
		return wgpu.NewStandaloneDevice()
	})
}

// UseDeviceProvider replaces the wgpu backend with one sharing the device
// of a host application, such as a gogpu window.
func UseDeviceProvider(provider gpucontext.DeviceProvider) {
	Register(BackendWGPU, func() (render.Device, error) {
		return wgpu.NewDeviceFromProvider(provider)
	})
}
