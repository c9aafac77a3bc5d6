package software

import (
	"image"
	"math"

	"github.com/gogpu/gpucanvas/gpu"
)

// texture keeps every mip level as packed storage rows: row 0 is the top
// row for top-left textures and the bottom row for bottom-left ones.
type texture struct {
	id        uint64
	label     string
	width     int
	height    int
	format    gpu.PixelFormat
	origin    gpu.Origin
	mipmapped bool
	levels    [][]byte
	released  bool
}

func newTexture(desc gpu.TextureDescriptor) *texture {
	t := &texture{
		id:        gpu.NextID(),
		label:     desc.Label,
		width:     desc.Width,
		height:    desc.Height,
		format:    desc.Format,
		origin:    desc.Origin,
		mipmapped: desc.Mipmapped,
	}
	bpp := desc.Format.BytesPerPixel()
	n := desc.MipLevels()
	t.levels = make([][]byte, n)
	for i := range t.levels {
		w, h := t.levelSize(i)
		t.levels[i] = make([]byte, w*h*bpp)
	}
	return t
}

func (t *texture) ID() uint64              { return t.id }
func (t *texture) Width() int              { return t.width }
func (t *texture) Height() int             { return t.height }
func (t *texture) Origin() gpu.Origin      { return t.origin }
func (t *texture) Format() gpu.PixelFormat { return t.format }
func (t *texture) Mipmapped() bool         { return t.mipmapped }

// levelSize returns the dimensions of mip level i.
func (t *texture) levelSize(i int) (w, h int) {
	w, h = t.width, t.height
	for ; i > 0; i-- {
		w, h = max(w/2, 1), max(h/2, 1)
	}
	return w, h
}

func (t *texture) bounds() image.Rectangle {
	return image.Rect(0, 0, t.width, t.height)
}

// storageRow maps a logical row of level 0 to its storage row.
func (t *texture) storageRow(y int) int {
	if t.origin == gpu.OriginBottomLeft {
		return t.height - 1 - y
	}
	return y
}

// texel returns the premultiplied pixel at storage (x, y) of a level.
// Alpha-only textures report (0, 0, 0, a).
func (t *texture) texel(level, x, y int) gpu.Color {
	w, _ := t.levelSize(level)
	data := t.levels[level]
	switch t.format {
	case gpu.FormatAlpha8:
		return gpu.Color{A: float32(data[y*w+x]) / 255}
	case gpu.FormatBGRA8:
		i := (y*w + x) * 4
		return gpu.Color{
			R: float32(data[i+2]) / 255,
			G: float32(data[i+1]) / 255,
			B: float32(data[i]) / 255,
			A: float32(data[i+3]) / 255,
		}
	default:
		i := (y*w + x) * 4
		return gpu.Color{
			R: float32(data[i]) / 255,
			G: float32(data[i+1]) / 255,
			B: float32(data[i+2]) / 255,
			A: float32(data[i+3]) / 255,
		}
	}
}

// store writes c at storage (x, y) of a level, rounding to 8 bits.
func (t *texture) store(level, x, y int, c gpu.Color) {
	w, _ := t.levelSize(level)
	data := t.levels[level]
	p := c.RGBA8()
	switch t.format {
	case gpu.FormatAlpha8:
		data[y*w+x] = p.A
	case gpu.FormatBGRA8:
		i := (y*w + x) * 4
		data[i], data[i+1], data[i+2], data[i+3] = p.B, p.G, p.R, p.A
	default:
		i := (y*w + x) * 4
		data[i], data[i+1], data[i+2], data[i+3] = p.R, p.G, p.B, p.A
	}
}

// fetch returns the swizzled sample value of a texel, addressing outside
// the level with the wrap modes of state.
func (t *texture) fetch(level, x, y int, state gpu.SamplerState) gpu.Color {
	w, h := t.levelSize(level)
	var ok bool
	if x, ok = wrap(x, w, state.WrapX); !ok {
		return gpu.Transparent
	}
	if y, ok = wrap(y, h, state.WrapY); !ok {
		return gpu.Transparent
	}
	c := t.texel(level, x, y)
	if t.format.IsAlphaOnly() {
		// A single-channel texture reads its value in the red channel.
		c = gpu.Color{R: c.A, A: 1}
	}
	return gpu.ReadSwizzle(t.format).Apply(c)
}

// wrap maps i into [0, n) and reports false for border addressing
// outside the texture.
func wrap(i, n int, mode gpu.WrapMode) (int, bool) {
	if i >= 0 && i < n {
		return i, true
	}
	switch mode {
	case gpu.WrapRepeat:
		i %= n
		if i < 0 {
			i += n
		}
	case gpu.WrapMirrorRepeat:
		period := 2 * n
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - 1 - i
		}
	case gpu.WrapClampToBorder:
		return 0, false
	default:
		i = max(0, min(i, n-1))
	}
	return i, true
}

// sample filters t at normalized storage coordinates uv. lod is the base-2
// log of texels per pixel.
func (t *texture) sample(uv [2]float64, state gpu.SamplerState, lod float64) gpu.Color {
	if !t.mipmapped || state.Mipmap == gpu.MipmapNone || lod <= 0 || math.IsNaN(lod) {
		return t.sampleLevel(0, uv, state)
	}
	top := float64(len(t.levels) - 1)
	lod = min(lod, top)
	if state.Mipmap == gpu.MipmapNearest {
		return t.sampleLevel(int(math.Round(lod)), uv, state)
	}
	lo := math.Floor(lod)
	f := float32(lod - lo)
	a := t.sampleLevel(int(lo), uv, state)
	if f == 0 {
		return a
	}
	b := t.sampleLevel(int(lo)+1, uv, state)
	return lerp(a, b, f)
}

func (t *texture) sampleLevel(level int, uv [2]float64, state gpu.SamplerState) gpu.Color {
	w, h := t.levelSize(level)
	u, v := uv[0]*float64(w), uv[1]*float64(h)
	if state.Filter == gpu.FilterNearest {
		return t.fetch(level, int(math.Floor(u)), int(math.Floor(v)), state)
	}
	u, v = u-0.5, v-0.5
	x0, y0 := math.Floor(u), math.Floor(v)
	fx, fy := float32(u-x0), float32(v-y0)
	x, y := int(x0), int(y0)
	top := lerp(t.fetch(level, x, y, state), t.fetch(level, x+1, y, state), fx)
	bottom := lerp(t.fetch(level, x, y+1, state), t.fetch(level, x+1, y+1, state), fx)
	return lerp(top, bottom, fy)
}

func lerp(a, b gpu.Color, t float32) gpu.Color {
	return gpu.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}

// renderTarget draws into a texture. Multisampled targets resolve every
// draw immediately, so the texture always holds the resolved image.
type renderTarget struct {
	id      uint64
	tex     *texture
	samples int
}

func (r *renderTarget) ID() uint64              { return r.id }
func (r *renderTarget) Width() int              { return r.tex.width }
func (r *renderTarget) Height() int             { return r.tex.height }
func (r *renderTarget) Origin() gpu.Origin      { return r.tex.origin }
func (r *renderTarget) Format() gpu.PixelFormat { return r.tex.format }
func (r *renderTarget) SampleCount() int        { return r.samples }
func (r *renderTarget) Texture() gpu.Texture    { return r.tex }
