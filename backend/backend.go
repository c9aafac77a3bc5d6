package backend

import (
	"errors"

	"github.com/gogpu/gpucanvas/render"
)

// Backend name constants.
const (
	// BackendWGPU is the name of the GPU backend on gogpu/wgpu.
	BackendWGPU = "wgpu"
	// BackendSoftware is the name of the CPU reference backend.
	BackendSoftware = "software"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or none of the registered backends could open a device.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Factory opens a device. Factories may fail, for instance when no GPU
// adapter is present; the registry then moves on to the next backend.
type Factory func() (render.Device, error)
