package gpucanvas

import (
	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/processor"
)

// fpArgs carries what shaders need to build processors.
type fpArgs struct {
	ctx *Context
}

// Shader computes a color for every point in local coordinates.
// Shaders are immutable.
type Shader interface {
	// asFragment returns the color processor, or nil when the shader
	// cannot be realized.
	asFragment(a fpArgs) processor.Fragment
	isOpaque() bool
}

// ColorShader paints one color everywhere.
type ColorShader struct {
	color gpu.Color
}

// NewColorShader returns a shader of the unpremultiplied color c.
func NewColorShader(c gpu.Color) *ColorShader {
	return &ColorShader{color: c}
}

func (s *ColorShader) asFragment(fpArgs) processor.Fragment {
	return processor.NewConstColor(s.color.Premultiply(), processor.InputIgnore)
}

func (s *ColorShader) isOpaque() bool { return s.color.IsOpaque() }

type gradientKind uint8

const (
	gradientLinear gradientKind = iota
	gradientRadial
)

// GradientShader interpolates colors along a line or from a center.
type GradientShader struct {
	kind      gradientKind
	start     geom.Point
	end       geom.Point
	radius    float64
	colors    []gpu.Color
	positions []float32
	local     geom.Matrix
}

// NewLinearGradient returns a gradient from start to end. colors are
// unpremultiplied; positions may be nil for evenly spaced stops.
func NewLinearGradient(start, end geom.Point, colors []gpu.Color, positions []float32) *GradientShader {
	return &GradientShader{
		kind:      gradientLinear,
		start:     start,
		end:       end,
		colors:    append([]gpu.Color(nil), colors...),
		positions: append([]float32(nil), positions...),
		local:     geom.Identity(),
	}
}

// NewRadialGradient returns a gradient from center outwards to radius.
func NewRadialGradient(center geom.Point, radius float64, colors []gpu.Color, positions []float32) *GradientShader {
	return &GradientShader{
		kind:      gradientRadial,
		start:     center,
		radius:    radius,
		colors:    append([]gpu.Color(nil), colors...),
		positions: append([]float32(nil), positions...),
		local:     geom.Identity(),
	}
}

// WithLocalMatrix returns a copy whose geometry is transformed by m.
func (s *GradientShader) WithLocalMatrix(m geom.Matrix) *GradientShader {
	c := *s
	c.local = m
	return &c
}

func (s *GradientShader) asFragment(fpArgs) processor.Fragment {
	if s.kind == gradientRadial {
		return processor.NewRadialGradient(s.start, s.radius, s.colors, s.positions, s.local)
	}
	return processor.NewLinearGradient(s.start, s.end, s.colors, s.positions, s.local)
}

func (s *GradientShader) isOpaque() bool {
	for _, c := range s.colors {
		if !c.IsOpaque() {
			return false
		}
	}
	return len(s.colors) > 0
}

// ImageShader samples an image in local coordinates. Pixel (0, 0) of the
// image maps to the local origin.
type ImageShader struct {
	image   *Image
	sampler gpu.SamplerState
	local   geom.Matrix
}

// NewImageShader returns a shader sampling img.
func NewImageShader(img *Image, sampler gpu.SamplerState) *ImageShader {
	return &ImageShader{image: img, sampler: sampler, local: geom.Identity()}
}

// WithLocalMatrix returns a copy placing the image through m.
func (s *ImageShader) WithLocalMatrix(m geom.Matrix) *ImageShader {
	c := *s
	c.local = m
	return &c
}

func (s *ImageShader) asFragment(a fpArgs) processor.Fragment {
	inv, ok := s.local.Invert()
	if !ok || s.image == nil {
		return nil
	}
	return a.ctx.imageFragment(s.image, s.sampler, inv)
}

func (s *ImageShader) isOpaque() bool { return false }

// BlendShader combines two shaders with a blend mode.
type BlendShader struct {
	mode     blend.Mode
	dst, src Shader
}

// NewBlendShader returns a shader computing mode(src, dst).
func NewBlendShader(mode blend.Mode, dst, src Shader) *BlendShader {
	return &BlendShader{mode: mode, dst: dst, src: src}
}

func (s *BlendShader) asFragment(a fpArgs) processor.Fragment {
	src := s.src.asFragment(a)
	dst := s.dst.asFragment(a)
	if src == nil || dst == nil {
		return nil
	}
	return processor.NewXfermodeFromTwo(src, dst, s.mode)
}

func (s *BlendShader) isOpaque() bool {
	return s.mode == blend.Src && s.src.isOpaque()
}
