package wgpu

// Option configures a Device.
type Option func(*options)

type options struct {
	maxTextureSize int
	maxSampleCount int
}

func defaultOptions() options {
	return options{
		maxTextureSize: 8192,
		maxSampleCount: 4,
	}
}

// WithMaxTextureSize limits the texture dimension the device reports.
func WithMaxTextureSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxTextureSize = n
		}
	}
}

// WithMaxSampleCount limits the render target sample count.
func WithMaxSampleCount(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSampleCount = n
		}
	}
}
