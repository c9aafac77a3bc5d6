package processor

import (
	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
)

// TextureEffect samples a texture at transformed local coordinates and
// multiplies the sample by the input color.
type TextureEffect struct {
	node
	rgbaaa bool
}

// NewTextureEffect returns a texture effect. localToTexture maps local
// coordinates to texture pixels. It returns nil for a nil texture.
func NewTextureEffect(tex gpu.Texture, state gpu.SamplerState, localToTexture geom.Matrix) Fragment {
	if tex == nil {
		return nil
	}
	return &TextureEffect{
		node: node{
			samplers:   []Sampler{{Texture: tex, State: state}},
			transforms: []CoordTransform{{Matrix: localToTexture, Texture: tex}},
		},
	}
}

// NewRGBAAATextureEffect returns a texture effect for an image that stores
// its color and its alpha in two planes of the same texture. alphaStart is
// the pixel offset of the alpha plane.
func NewRGBAAATextureEffect(tex gpu.Texture, state gpu.SamplerState, localToTexture geom.Matrix,
	alphaStart geom.Point) Fragment {
	if tex == nil {
		return nil
	}
	if alphaStart == (geom.Point{}) {
		return NewTextureEffect(tex, state, localToTexture)
	}
	return &TextureEffect{
		node: node{
			samplers: []Sampler{{Texture: tex, State: state}},
			transforms: []CoordTransform{{
				Matrix:     localToTexture,
				Texture:    tex,
				AlphaStart: alphaStart,
			}},
		},
		rgbaaa: true,
	}
}

func (*TextureEffect) ClassID() ClassID { return ClassTextureEffect }

// Texture returns the sampled texture.
func (t *TextureEffect) Texture() gpu.Texture { return t.samplers[0].Texture }

// RGBAAA reports whether alpha is read from a separate plane.
func (t *TextureEffect) RGBAAA() bool { return t.rgbaaa }

func (t *TextureEffect) writeKey(kb *KeyBuilder) {
	kb.WriteBool(t.rgbaaa)
}

func (t *TextureEffect) equalData(o Fragment) bool {
	return t.rgbaaa == o.(*TextureEffect).rgbaaa
}

// DeviceSpaceTextureEffect samples a texture at the fragment position.
// It is used for clip masks, whose texture matches the render target's
// size and origin.
type DeviceSpaceTextureEffect struct {
	node
	matrix geom.Matrix
}

// NewDeviceSpaceTextureEffect returns an effect sampling tex at the
// fragment position. deviceToTexture maps target pixels to texture pixels,
// both in storage orientation.
func NewDeviceSpaceTextureEffect(tex gpu.Texture, deviceToTexture geom.Matrix) Fragment {
	if tex == nil {
		return nil
	}
	return &DeviceSpaceTextureEffect{
		node: node{
			samplers: []Sampler{{Texture: tex, State: gpu.SamplerState{}}},
		},
		matrix: deviceToTexture,
	}
}

func (*DeviceSpaceTextureEffect) ClassID() ClassID { return ClassDeviceSpaceTextureEffect }

// Texture returns the sampled texture.
func (d *DeviceSpaceTextureEffect) Texture() gpu.Texture { return d.samplers[0].Texture }

// DeviceMatrix maps storage fragment coordinates to normalized texture
// coordinates.
func (d *DeviceSpaceTextureEffect) DeviceMatrix() geom.Matrix {
	t := d.samplers[0].Texture
	return geom.Scale(1/float64(t.Width()), 1/float64(t.Height())).Multiply(d.matrix)
}

func (d *DeviceSpaceTextureEffect) writeKey(*KeyBuilder) {}

func (d *DeviceSpaceTextureEffect) equalData(o Fragment) bool {
	return d.matrix == o.(*DeviceSpaceTextureEffect).matrix
}
