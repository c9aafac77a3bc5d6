package gpucanvas

import (
	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/processor"
)

// ColorFilter transforms the color produced by the shader stage.
type ColorFilter interface {
	asFragment() processor.Fragment
	// affectsAlpha reports whether a transparent input can become
	// visible.
	affectsAlpha() bool
}

// MatrixColorFilter applies a 4x5 color matrix to unpremultiplied color.
// Rows produce R, G, B and A; the fifth column is a bias in [0, 1] units.
type MatrixColorFilter struct {
	matrix [20]float32
}

// NewMatrixColorFilter returns a color matrix filter.
func NewMatrixColorFilter(m [20]float32) *MatrixColorFilter {
	return &MatrixColorFilter{matrix: m}
}

// NewGrayscaleFilter returns a filter converting color to luminance.
func NewGrayscaleFilter() *MatrixColorFilter {
	const r, g, b = 0.2126, 0.7152, 0.0722
	return NewMatrixColorFilter([20]float32{
		r, g, b, 0, 0,
		r, g, b, 0, 0,
		r, g, b, 0, 0,
		0, 0, 0, 1, 0,
	})
}

func (f *MatrixColorFilter) asFragment() processor.Fragment {
	return processor.NewColorMatrix(f.matrix)
}

func (f *MatrixColorFilter) affectsAlpha() bool {
	return processor.NewColorMatrix(f.matrix).AffectsAlpha()
}

// ModeColorFilter blends a constant color over the shaded color.
type ModeColorFilter struct {
	color gpu.Color
	mode  blend.Mode
}

// NewModeColorFilter returns a filter computing mode(color, input) with
// color as the source.
func NewModeColorFilter(c gpu.Color, mode blend.Mode) *ModeColorFilter {
	return &ModeColorFilter{color: c, mode: mode}
}

func (f *ModeColorFilter) asFragment() processor.Fragment {
	src := processor.NewConstColor(f.color.Premultiply(), processor.InputIgnore)
	return processor.NewXfermodeFromSrc(src, f.mode)
}

func (f *ModeColorFilter) affectsAlpha() bool {
	switch f.mode {
	case blend.Dst, blend.SrcATop, blend.DstIn, blend.SrcIn, blend.Modulate:
		// Zero input alpha stays zero.
		return false
	}
	return f.color.A > 0
}

// MaskFilter scales the coverage of a draw.
type MaskFilter interface {
	asFragment(a fpArgs) processor.Fragment
}

// ShaderMaskFilter uses the alpha of a shader as coverage.
type ShaderMaskFilter struct {
	shader   Shader
	inverted bool
}

// NewShaderMaskFilter returns a mask filter taking coverage from the
// alpha of s. With inverted set, coverage is one minus that alpha.
func NewShaderMaskFilter(s Shader, inverted bool) *ShaderMaskFilter {
	return &ShaderMaskFilter{shader: s, inverted: inverted}
}

func (f *ShaderMaskFilter) asFragment(a fpArgs) processor.Fragment {
	fp := f.shader.asFragment(a)
	if fp == nil {
		return nil
	}
	return processor.MulInputByChildAlpha(fp, f.inverted)
}
