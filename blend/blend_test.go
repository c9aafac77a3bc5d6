package blend

import (
	"math"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gpucanvas/gpu"
)

func TestResolvePartition(t *testing.T) {
	coeffModes := map[Mode]bool{
		Clear: true, Src: true, Dst: true, SrcOver: true, DstOver: true,
		SrcIn: true, DstIn: true, SrcOut: true, DstOut: true, SrcATop: true,
		DstATop: true, Xor: true, Plus: true, Modulate: true, Screen: true,
	}
	for i := range ModeCount {
		m := Mode(i)
		desc := Resolve(m)
		_, isCoeff := desc.(CoefficientPair)
		_, isCustom := desc.(CustomEquation)
		if isCoeff == isCustom {
			t.Fatalf("%v resolved to %T", m, desc)
		}
		if isCoeff != coeffModes[m] {
			t.Errorf("%v: coefficient = %v, want %v", m, isCoeff, coeffModes[m])
		}
		if _, ok := AsCoeff(m); ok != coeffModes[m] {
			t.Errorf("AsCoeff(%v) = %v", m, ok)
		}
	}
}

func TestSrcOverCoefficients(t *testing.T) {
	c, ok := AsCoeff(SrcOver)
	if !ok || c.Src != gputypes.BlendFactorOne || c.Dst != gputypes.BlendFactorOneMinusSrcAlpha {
		t.Errorf("SrcOver = %+v, %v", c, ok)
	}
}

func TestDescriptionKeysDistinct(t *testing.T) {
	seen := map[uint32]Mode{}
	for i := range ModeCount {
		m := Mode(i)
		k := Resolve(m).Key()
		if prev, dup := seen[k]; dup {
			t.Errorf("%v and %v share key %#x", prev, m, k)
		}
		seen[k] = m
	}
}

func TestResolveInvalid(t *testing.T) {
	if got := Resolve(Mode(200)); got != Resolve(SrcOver) {
		t.Errorf("Resolve(invalid) = %+v, want SrcOver", got)
	}
}

func near(a, b gpu.Color) bool {
	const eps = 1e-5
	return math.Abs(float64(a.R-b.R)) < eps && math.Abs(float64(a.G-b.G)) < eps &&
		math.Abs(float64(a.B-b.B)) < eps && math.Abs(float64(a.A-b.A)) < eps
}

func TestApplyPorterDuff(t *testing.T) {
	src := gpu.Color{R: 0.5, A: 0.5}
	dst := gpu.Color{G: 1, A: 1}
	tests := []struct {
		mode Mode
		want gpu.Color
	}{
		{Clear, gpu.Color{}},
		{Src, src},
		{Dst, dst},
		{SrcOver, gpu.Color{R: 0.5, G: 0.5, A: 1}},
		{DstOver, dst},
		{SrcIn, src},
		{DstIn, gpu.Color{G: 0.5, A: 0.5}},
		{SrcOut, gpu.Color{}},
		{DstOut, gpu.Color{G: 0.5, A: 0.5}},
		{SrcATop, gpu.Color{R: 0.5, G: 0.5, A: 1}},
		{Xor, gpu.Color{G: 0.5, A: 0.5}},
		{Plus, gpu.Color{R: 0.5, G: 1, A: 1}},
		{Modulate, gpu.Color{A: 0.5}},
		{Screen, gpu.Color{R: 0.5, G: 1, A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			if got := Apply(tt.mode, src, dst); !near(got, tt.want) {
				t.Errorf("Apply(%v) = %+v, want %+v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestApplyCustomOpaque(t *testing.T) {
	// For opaque colors the separable modes reduce to the textbook
	// per-channel functions.
	s := gpu.Color{R: 0.25, G: 0.75, B: 0.5, A: 1}
	d := gpu.Color{R: 0.5, G: 0.5, B: 0.25, A: 1}
	tests := []struct {
		mode Mode
		want gpu.Color
	}{
		{Multiply, gpu.Color{R: 0.125, G: 0.375, B: 0.125, A: 1}},
		{Darken, gpu.Color{R: 0.25, G: 0.5, B: 0.25, A: 1}},
		{Lighten, gpu.Color{R: 0.5, G: 0.75, B: 0.5, A: 1}},
		{Difference, gpu.Color{R: 0.25, G: 0.25, B: 0.25, A: 1}},
		{Exclusion, gpu.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}},
		{HardLight, gpu.Color{R: 0.25, G: 0.75, B: 0.25, A: 1}},
		{Overlay, gpu.Color{R: 0.25, G: 0.75, B: 0.25, A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			if got := Apply(tt.mode, s, d); !near(got, tt.want) {
				t.Errorf("Apply(%v) = %+v, want %+v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestApplyCustomTransparentSource(t *testing.T) {
	d := gpu.Color{R: 0.2, G: 0.4, B: 0.6, A: 0.8}
	for i := int(Overlay); i < ModeCount; i++ {
		m := Mode(i)
		if got := Apply(m, gpu.Color{}, d); !near(got, d) {
			t.Errorf("%v with transparent source = %+v, want %+v", m, got, d)
		}
	}
}

func TestNonSeparableGray(t *testing.T) {
	// A gray source has no hue or saturation; Luminosity transfers its
	// luminance onto the destination.
	s := gpu.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
	d := gpu.Color{R: 0.2, G: 0.2, B: 0.2, A: 1}
	if got := Apply(Luminosity, s, d); !near(got, s) {
		t.Errorf("Luminosity = %+v, want %+v", got, s)
	}
	if got := Apply(Color, s, d); !near(got, d) {
		t.Errorf("Color = %+v, want %+v", got, d)
	}
	if got := Apply(Saturation, s, d); !near(got, d) {
		t.Errorf("Saturation = %+v, want %+v", got, d)
	}
}

func TestSkipsTransparentSource(t *testing.T) {
	src := gpu.Color{}
	dst := gpu.Color{R: 0.3, G: 0.2, B: 0.1, A: 0.9}
	for i := range ModeCount {
		m := Mode(i)
		if !m.SkipsTransparentSource() {
			continue
		}
		if got := Apply(m, src, dst); !near(got, dst) {
			t.Errorf("%v claims to skip transparent sources but produced %+v", m, got)
		}
	}
}
