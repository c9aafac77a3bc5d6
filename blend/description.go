package blend

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gpucanvas/gpu"
)

// Description is the resolved form of a Mode: a CoefficientPair or a
// CustomEquation.
type Description interface {
	// Key identifies the description inside a pipeline key.
	Key() uint32
	isDescription()
}

// CoefficientPair is a fixed-function blend:
//
//	result = src*Src + dst*Dst
//
// with addition as the equation.
type CoefficientPair struct {
	Src gputypes.BlendFactor
	Dst gputypes.BlendFactor
}

func (CoefficientPair) isDescription() {}

// Key packs both factors with the high bit clear.
func (c CoefficientPair) Key() uint32 {
	return uint32(c.Src)&0xff | (uint32(c.Dst)&0xff)<<8
}

// BlendState returns the hal blend state for the pair.
func (c CoefficientPair) BlendState() gputypes.BlendState {
	comp := gputypes.BlendComponent{
		SrcFactor: c.Src,
		DstFactor: c.Dst,
		Operation: gputypes.BlendOperationAdd,
	}
	return gputypes.BlendState{Color: comp, Alpha: comp}
}

// Apply evaluates the pair on premultiplied colors.
func (c CoefficientPair) Apply(src, dst gpu.Color) gpu.Color {
	sf := factor(c.Src, src, dst)
	df := factor(c.Dst, src, dst)
	return src.Mul(sf).Add(dst.Mul(df)).Clamp()
}

// CustomEquation is a mode evaluated in the fragment shader. It needs the
// destination color, read through framebuffer fetch or a copy of the
// destination.
type CustomEquation struct {
	Mode Mode
}

func (CustomEquation) isDescription() {}

// Key sets the high bit and stores the mode.
func (c CustomEquation) Key() uint32 {
	return 1<<31 | uint32(c.Mode)
}

// Apply evaluates the equation on premultiplied colors.
func (c CustomEquation) Apply(src, dst gpu.Color) gpu.Color {
	return applyCustom(c.Mode, src, dst)
}

var (
	zero        = gputypes.BlendFactorZero
	one         = gputypes.BlendFactorOne
	srcColor    = gputypes.BlendFactorSrc
	invSrcColor = gputypes.BlendFactorOneMinusSrc
	srcAlpha    = gputypes.BlendFactorSrcAlpha
	invSrcAlpha = gputypes.BlendFactorOneMinusSrcAlpha
	dstAlpha    = gputypes.BlendFactorDstAlpha
	invDstAlpha = gputypes.BlendFactorOneMinusDstAlpha
)

var coeffTable = map[Mode]CoefficientPair{
	Clear:    {zero, zero},
	Src:      {one, zero},
	Dst:      {zero, one},
	SrcOver:  {one, invSrcAlpha},
	DstOver:  {invDstAlpha, one},
	SrcIn:    {dstAlpha, zero},
	DstIn:    {zero, srcAlpha},
	SrcOut:   {invDstAlpha, zero},
	DstOut:   {zero, invSrcAlpha},
	SrcATop:  {dstAlpha, invSrcAlpha},
	DstATop:  {invDstAlpha, srcAlpha},
	Xor:      {invDstAlpha, invSrcAlpha},
	Plus:     {one, one},
	Modulate: {zero, srcColor},
	Screen:   {one, invSrcColor},
}

// AsCoeff returns the coefficient pair for m if fixed-function blending
// can express it.
func AsCoeff(m Mode) (CoefficientPair, bool) {
	c, ok := coeffTable[m]
	return c, ok
}

// Resolve returns the description for m. Unknown modes resolve to SrcOver.
func Resolve(m Mode) Description {
	if !m.Valid() {
		m = SrcOver
	}
	if c, ok := coeffTable[m]; ok {
		return c
	}
	return CustomEquation{Mode: m}
}

// Apply blends premultiplied src over dst with mode m.
func Apply(m Mode, src, dst gpu.Color) gpu.Color {
	switch d := Resolve(m).(type) {
	case CoefficientPair:
		return d.Apply(src, dst)
	case CustomEquation:
		return d.Apply(src, dst)
	}
	return src
}

func factor(f gputypes.BlendFactor, src, dst gpu.Color) gpu.Color {
	switch f {
	case gputypes.BlendFactorZero:
		return gpu.Color{}
	case gputypes.BlendFactorOne:
		return gpu.Color{R: 1, G: 1, B: 1, A: 1}
	case gputypes.BlendFactorSrc:
		return src
	case gputypes.BlendFactorOneMinusSrc:
		return gpu.Color{R: 1 - src.R, G: 1 - src.G, B: 1 - src.B, A: 1 - src.A}
	case gputypes.BlendFactorSrcAlpha:
		return splat(src.A)
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return splat(1 - src.A)
	case gputypes.BlendFactorDstAlpha:
		return splat(dst.A)
	case gputypes.BlendFactorOneMinusDstAlpha:
		return splat(1 - dst.A)
	}
	return gpu.Color{}
}

func splat(v float32) gpu.Color {
	return gpu.Color{R: v, G: v, B: v, A: v}
}
