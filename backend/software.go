package backend

import (
	"github.com/gogpu/gpucanvas/backend/software"
	"github.com/gogpu/gpucanvas/render"
)

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() (render.Device, error) {
		return software.NewDevice(), nil
	})
}
