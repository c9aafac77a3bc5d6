package software

// Option configures a Device.
type Option func(*options)

type options struct {
	framebufferFetch bool
	maxTextureSize   int
	maxSampleCount   int
}

func defaultOptions() options {
	return options{
		maxTextureSize: 8192,
		maxSampleCount: 4,
	}
}

// WithFramebufferFetch makes the device report framebuffer fetch, so
// custom blends read the target directly instead of a destination copy.
func WithFramebufferFetch(enabled bool) Option {
	return func(o *options) {
		o.framebufferFetch = enabled
	}
}

// WithMaxTextureSize sets the largest texture dimension. Values below 1
// are ignored.
func WithMaxTextureSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.maxTextureSize = size
		}
	}
}

// WithMaxSampleCount sets the largest render target sample count. Values
// below 1 are ignored.
func WithMaxSampleCount(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSampleCount = n
		}
	}
}
