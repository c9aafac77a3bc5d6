package gpu

import "strings"

// Origin is the row order of a texture or render target.
type Origin uint8

const (
	// OriginTopLeft stores row 0 at the top.
	OriginTopLeft Origin = iota
	// OriginBottomLeft stores row 0 at the bottom.
	OriginBottomLeft
)

func (o Origin) String() string {
	if o == OriginBottomLeft {
		return "BottomLeft"
	}
	return "TopLeft"
}

// PixelFormat is the storage format of a texture.
type PixelFormat uint8

const (
	// FormatRGBA8 is 8-bit premultiplied RGBA.
	FormatRGBA8 PixelFormat = iota
	// FormatBGRA8 is 8-bit premultiplied BGRA.
	FormatBGRA8
	// FormatAlpha8 is a single 8-bit coverage/alpha channel.
	FormatAlpha8
)

// BytesPerPixel returns the storage size of one pixel.
func (f PixelFormat) BytesPerPixel() int {
	if f == FormatAlpha8 {
		return 1
	}
	return 4
}

// IsAlphaOnly reports whether the format stores only alpha.
func (f PixelFormat) IsAlphaOnly() bool {
	return f == FormatAlpha8
}

func (f PixelFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatBGRA8:
		return "BGRA8"
	case FormatAlpha8:
		return "Alpha8"
	}
	return "Unknown"
}

// Swizzle maps the four output channels to source channels. Each entry is
// one of 'r', 'g', 'b', 'a', '0' or '1'.
type Swizzle [4]byte

var (
	// SwizzleRGBA is the identity swizzle.
	SwizzleRGBA = Swizzle{'r', 'g', 'b', 'a'}
	// SwizzleAAAA replicates alpha into every channel.
	SwizzleAAAA = Swizzle{'a', 'a', 'a', 'a'}
	// SwizzleRRRR replicates the single channel of an alpha-only texture,
	// so sampling yields premultiplied coverage.
	SwizzleRRRR = Swizzle{'r', 'r', 'r', 'r'}
)

// ReadSwizzle returns the swizzle applied when sampling a texture of the
// given format.
func ReadSwizzle(f PixelFormat) Swizzle {
	if f == FormatAlpha8 {
		return SwizzleRRRR
	}
	return SwizzleRGBA
}

// OutputSwizzle returns the swizzle applied to shader output when writing
// to a target of the given format.
func OutputSwizzle(f PixelFormat) Swizzle {
	if f == FormatAlpha8 {
		return SwizzleAAAA
	}
	return SwizzleRGBA
}

// IsIdentity reports whether the swizzle is rgba.
func (s Swizzle) IsIdentity() bool {
	return s == SwizzleRGBA
}

func (s Swizzle) String() string {
	return string(s[:])
}

// Key packs the swizzle into 16 bits, 4 bits per channel.
func (s Swizzle) Key() uint16 {
	var key uint16
	for i, c := range s {
		key |= uint16(strings.IndexByte("rgba01", c)&0xf) << (4 * i)
	}
	return key
}

// Apply returns c with channels rearranged.
func (s Swizzle) Apply(c Color) Color {
	src := [4]float32{c.R, c.G, c.B, c.A}
	var out [4]float32
	for i, ch := range s {
		switch ch {
		case 'r':
			out[i] = src[0]
		case 'g':
			out[i] = src[1]
		case 'b':
			out[i] = src[2]
		case 'a':
			out[i] = src[3]
		case '1':
			out[i] = 1
		}
	}
	return Color{R: out[0], G: out[1], B: out[2], A: out[3]}
}
