//go:build nogpu

package wgpu

import "fmt"

// NewStandaloneDevice is unavailable in nogpu builds.
func NewStandaloneDevice(opts ...Option) (*Device, error) {
	return nil, fmt.Errorf("%w: built with nogpu", ErrNoDevice)
}
