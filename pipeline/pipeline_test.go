package pipeline

import (
	"image"
	"testing"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/processor"
)

type testTexture struct{ id uint64 }

func (t testTexture) ID() uint64              { return t.id }
func (t testTexture) Width() int              { return 8 }
func (t testTexture) Height() int             { return 8 }
func (t testTexture) Origin() gpu.Origin      { return gpu.OriginTopLeft }
func (t testTexture) Format() gpu.PixelFormat { return gpu.FormatRGBA8 }
func (t testTexture) Mipmapped() bool         { return false }

func TestKeyDistinguishesStages(t *testing.T) {
	gp := processor.NewQuadPerEdgeAA(false)
	red := processor.NewConstColor(gpu.Red, processor.InputModulateA)
	rect := processor.NewAARectEffect(geom.WH(4, 4))
	srcOver := blend.Resolve(blend.SrcOver)

	base := New(gp, []processor.Fragment{red}, []processor.Fragment{rect}, srcOver, nil, gpu.SwizzleRGBA)
	tests := []struct {
		name string
		p    *Pipeline
		same bool
	}{
		{"identical", New(gp, []processor.Fragment{red}, []processor.Fragment{rect}, srcOver, nil, gpu.SwizzleRGBA), true},
		{"uniform differs", New(gp, []processor.Fragment{processor.NewConstColor(gpu.Blue, processor.InputModulateA)},
			[]processor.Fragment{rect}, srcOver, nil, gpu.SwizzleRGBA), true},
		{"geometry", New(processor.NewQuadPerEdgeAA(true), []processor.Fragment{red}, []processor.Fragment{rect}, srcOver, nil, gpu.SwizzleRGBA), false},
		{"split", New(gp, []processor.Fragment{red, rect}, nil, srcOver, nil, gpu.SwizzleRGBA), false},
		{"blend", New(gp, []processor.Fragment{red}, []processor.Fragment{rect}, blend.Resolve(blend.Plus), nil, gpu.SwizzleRGBA), false},
		{"custom blend", New(gp, []processor.Fragment{red}, []processor.Fragment{rect}, blend.Resolve(blend.Multiply),
			&DstTexture{Texture: testTexture{gpu.NextID()}}, gpu.SwizzleRGBA), false},
		{"swizzle", New(gp, []processor.Fragment{red}, []processor.Fragment{rect}, srcOver, nil, gpu.SwizzleAAAA), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Key() == base.Key(); got != tt.same {
				t.Errorf("keys equal = %v, want %v", got, tt.same)
			}
		})
	}
}

func TestSamplersPutDstLast(t *testing.T) {
	tex := testTexture{gpu.NextID()}
	dst := testTexture{gpu.NextID()}
	fp := processor.NewTextureEffect(tex, gpu.DefaultSampler, geom.Identity())
	p := New(processor.NewQuadPerEdgeAA(false), []processor.Fragment{fp}, nil,
		blend.Resolve(blend.Darken), &DstTexture{Texture: dst, Offset: image.Pt(2, 3)}, gpu.SwizzleRGBA)
	s := p.Samplers()
	if len(s) != 2 || s[0].Texture.ID() != tex.ID() || s[1].Texture.ID() != dst.ID() {
		t.Errorf("samplers = %+v", s)
	}
	if len(p.Colors()) != 1 || len(p.Masks()) != 0 {
		t.Error("color/mask split is wrong")
	}
}

func TestNilBlendDefaultsToSrcOver(t *testing.T) {
	p := New(processor.NewDefaultGeometry(false), nil, nil, nil, nil, gpu.SwizzleRGBA)
	if p.Blend().Key() != blend.Resolve(blend.SrcOver).Key() {
		t.Error("nil blend description did not default to SrcOver")
	}
}
