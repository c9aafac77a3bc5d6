package wgpu

import (
	"image"
	"strings"
	"testing"

	"github.com/gogpu/naga"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/pipeline"
	"github.com/gogpu/gpucanvas/processor"
)

type fakeTexture struct {
	id     uint64
	w, h   int
	format gpu.PixelFormat
	origin gpu.Origin
}

func newFakeTexture(w, h int, format gpu.PixelFormat) *fakeTexture {
	return &fakeTexture{id: gpu.NextID(), w: w, h: h, format: format}
}

func (t *fakeTexture) ID() uint64              { return t.id }
func (t *fakeTexture) Width() int              { return t.w }
func (t *fakeTexture) Height() int             { return t.h }
func (t *fakeTexture) Origin() gpu.Origin      { return t.origin }
func (t *fakeTexture) Format() gpu.PixelFormat { return t.format }
func (t *fakeTexture) Mipmapped() bool         { return false }

func identityColorMatrix() [20]float32 {
	return [20]float32{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// compileOrSkip compiles source with naga and checks the SPIR-V header.
func compileOrSkip(t *testing.T, source string) {
	t.Helper()
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "not yet implemented") || strings.Contains(errStr, "not supported") {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
		t.Fatalf("failed to compile shader: %v\n%s", err, source)
	}
	if len(spirvBytes) < 4 {
		t.Fatal("SPIR-V too short")
	}
	magic := uint32(spirvBytes[0]) |
		uint32(spirvBytes[1])<<8 |
		uint32(spirvBytes[2])<<16 |
		uint32(spirvBytes[3])<<24
	if magic != 0x07230203 {
		t.Errorf("invalid SPIR-V magic: got 0x%08x, want 0x07230203", magic)
	}
}

func testPipelines() map[string]*pipeline.Pipeline {
	rgba := newFakeTexture(32, 32, gpu.FormatRGBA8)
	alpha := newFakeTexture(32, 32, gpu.FormatAlpha8)
	dstCopy := &pipeline.DstTexture{Texture: newFakeTexture(16, 16, gpu.FormatRGBA8), Offset: image.Pt(4, 4)}
	quad := processor.NewQuadPerEdgeAA(true)
	srcOver := blend.Resolve(blend.SrcOver)
	id := gpu.SwizzleRGBA
	border := gpu.SamplerState{WrapX: gpu.WrapClampToBorder, WrapY: gpu.WrapRepeat, Filter: gpu.FilterLinear}
	mipmapped := gpu.SamplerState{Filter: gpu.FilterLinear, Mipmap: gpu.MipmapLinear}
	stops := []gpu.Color{gpu.Red, gpu.Green, gpu.Blue}

	return map[string]*pipeline.Pipeline{
		"const color": pipeline.New(processor.NewQuadPerEdgeAA(false),
			[]processor.Fragment{processor.NewConstColor(gpu.Red, processor.InputIgnore)}, nil, srcOver, nil, id),
		"const modulate alpha": pipeline.New(quad,
			[]processor.Fragment{processor.NewConstColor(gpu.Red, processor.InputModulateA)}, nil, srcOver, nil, id),
		"texture": pipeline.New(quad,
			[]processor.Fragment{processor.NewTextureEffect(rgba, gpu.DefaultSampler, geom.Scale(1.0/32, 1.0/32))},
			nil, srcOver, nil, id),
		"texture border wrap": pipeline.New(quad,
			[]processor.Fragment{processor.NewTextureEffect(rgba, border, geom.Identity())}, nil, srcOver, nil, id),
		"texture mipmapped": pipeline.New(quad,
			[]processor.Fragment{processor.NewTextureEffect(rgba, mipmapped, geom.Identity())}, nil, srcOver, nil, id),
		"rgbaaa texture": pipeline.New(quad,
			[]processor.Fragment{processor.NewRGBAAATextureEffect(rgba, gpu.DefaultSampler, geom.Identity(), geom.Pt(16, 0))},
			nil, srcOver, nil, id),
		"alpha8 mask": pipeline.New(quad, nil,
			[]processor.Fragment{processor.NewDeviceSpaceTextureEffect(alpha, geom.Identity())}, srcOver, nil, id),
		"aa rect mask": pipeline.New(processor.NewQuadPerEdgeAA(false), nil,
			[]processor.Fragment{processor.NewAARectEffect(geom.XYWH(2, 2, 10, 10))}, srcOver, nil, id),
		"xfermode dst child": pipeline.New(quad,
			[]processor.Fragment{processor.NewXfermodeFromDst(processor.NewConstColor(gpu.Blue, processor.InputIgnore), blend.Screen)},
			nil, srcOver, nil, id),
		"xfermode src child": pipeline.New(quad,
			[]processor.Fragment{processor.NewXfermodeFromSrc(processor.NewConstColor(gpu.Blue, processor.InputIgnore), blend.Hue)},
			nil, srcOver, nil, id),
		"xfermode two children": pipeline.New(quad,
			[]processor.Fragment{processor.NewXfermodeFromTwo(
				processor.NewConstColor(gpu.Blue, processor.InputIgnore),
				processor.NewConstColor(gpu.Red, processor.InputIgnore), blend.SoftLight)},
			nil, srcOver, nil, id),
		"series": pipeline.New(quad,
			[]processor.Fragment{processor.RunInSeries(
				processor.NewConstColor(gpu.Red, processor.InputModulateRGBA),
				processor.NewColorMatrix(identityColorMatrix()))},
			nil, srcOver, nil, id),
		"modulate": pipeline.New(quad,
			[]processor.Fragment{processor.NewModulate(processor.NewTextureEffect(rgba, gpu.DefaultSampler, geom.Identity()))},
			nil, srcOver, nil, id),
		"linear gradient": pipeline.New(quad,
			[]processor.Fragment{processor.NewLinearGradient(geom.Pt(0, 0), geom.Pt(100, 0), stops, nil, geom.Identity())},
			nil, srcOver, nil, id),
		"radial gradient": pipeline.New(quad,
			[]processor.Fragment{processor.NewRadialGradient(geom.Pt(50, 50), 40, stops, []float32{0, 0.2, 1}, geom.Identity())},
			nil, srcOver, nil, id),
		"ellipse geometry": pipeline.New(processor.NewEllipse(), nil, nil, srcOver, nil, id),
		"default geometry": pipeline.New(processor.NewDefaultGeometry(false), nil, nil, srcOver, nil, id),
		"default geometry coverage": pipeline.New(processor.NewDefaultGeometry(true), nil, nil,
			blend.Resolve(blend.Plus), nil, id),
		"alpha8 output": pipeline.New(quad, nil, nil, srcOver, nil, gpu.OutputSwizzle(gpu.FormatAlpha8)),
		"custom blend overlay": pipeline.New(quad, nil, nil, blend.Resolve(blend.Overlay), dstCopy, id),
		"custom blend color dodge": pipeline.New(quad, nil, nil, blend.Resolve(blend.ColorDodge), dstCopy, id),
		"custom blend color burn": pipeline.New(quad, nil, nil, blend.Resolve(blend.ColorBurn), dstCopy, id),
		"custom blend luminosity": pipeline.New(quad, nil, nil, blend.Resolve(blend.Luminosity), dstCopy, id),
		"custom blend difference": pipeline.New(quad, nil, nil, blend.Resolve(blend.Difference), dstCopy, id),
	}
}

func TestGenerateWGSLStructure(t *testing.T) {
	for name, p := range testPipelines() {
		t.Run(name, func(t *testing.T) {
			l := newLayout(p)
			src := generateWGSL(p, l)
			for _, want := range []string{"@vertex", "@fragment", "fn vs_main", "fn fs_main", "@group(0) @binding(0)"} {
				if !strings.Contains(src, want) {
					t.Errorf("generated WGSL missing %q", want)
				}
			}
			for unit := 0; unit < l.numUnits; unit++ {
				if !strings.Contains(src, "var tex"+string(rune('0'+unit))) {
					t.Errorf("texture unit %d not declared", unit)
				}
			}
		})
	}
}

func TestGenerateWGSLCompiles(t *testing.T) {
	for name, p := range testPipelines() {
		t.Run(name, func(t *testing.T) {
			compileOrSkip(t, generateWGSL(p, newLayout(p)))
		})
	}
}

func TestGenerateWGSLEveryBlendMode(t *testing.T) {
	quad := processor.NewQuadPerEdgeAA(true)
	dstCopy := &pipeline.DstTexture{Texture: newFakeTexture(8, 8, gpu.FormatRGBA8)}
	for m := blend.Clear; m <= blend.Luminosity; m++ {
		t.Run(m.String(), func(t *testing.T) {
			var dst *pipeline.DstTexture
			if _, ok := blend.Resolve(m).(blend.CustomEquation); ok {
				dst = dstCopy
			}
			fp := processor.NewXfermodeFromDst(processor.NewConstColor(gpu.Blue, processor.InputIgnore), m)
			p := pipeline.New(quad, []processor.Fragment{fp}, nil, blend.Resolve(m), dst, gpu.SwizzleRGBA)
			src := generateWGSL(p, newLayout(p))
			if !strings.Contains(src, "fn "+blendFunc(m)+"(") {
				t.Fatalf("missing helper %s", blendFunc(m))
			}
			compileOrSkip(t, src)
		})
	}
}

func TestGenerateWGSLDeterministic(t *testing.T) {
	tex := newFakeTexture(16, 16, gpu.FormatRGBA8)
	build := func(c gpu.Color, m geom.Matrix) *pipeline.Pipeline {
		return pipeline.New(processor.NewQuadPerEdgeAA(true),
			[]processor.Fragment{
				processor.NewConstColor(c, processor.InputModulateRGBA),
				processor.NewTextureEffect(tex, gpu.DefaultSampler, m),
			}, nil, blend.Resolve(blend.SrcOver), nil, gpu.SwizzleRGBA)
	}
	a := build(gpu.Red, geom.Identity())
	b := build(gpu.Blue, geom.Translate(3, 4))
	if a.Key() != b.Key() {
		t.Fatal("pipelines differing only in uniforms should share a key")
	}
	if generateWGSL(a, newLayout(a)) != generateWGSL(b, newLayout(b)) {
		t.Error("equal keys produced different WGSL")
	}
}

func TestLayout(t *testing.T) {
	tex := newFakeTexture(16, 16, gpu.FormatRGBA8)
	cc := processor.NewConstColor(gpu.Red, processor.InputIgnore)
	te := processor.NewTextureEffect(tex, gpu.DefaultSampler, geom.Identity())
	cm := processor.NewColorMatrix(identityColorMatrix())
	dst := &pipeline.DstTexture{Texture: newFakeTexture(8, 8, gpu.FormatRGBA8)}
	p := pipeline.New(processor.NewQuadPerEdgeAA(true), []processor.Fragment{cc, te}, []processor.Fragment{cm},
		blend.Resolve(blend.Overlay), dst, gpu.SwizzleRGBA)

	l := newLayout(p)
	if got := l.slots[cc]; got != 2 {
		t.Errorf("const color slot = %d, want 2", got)
	}
	if got := l.slots[te]; got != 3 {
		t.Errorf("texture slot = %d, want 3", got)
	}
	if got := l.slots[cm]; got != 5 {
		t.Errorf("color matrix slot = %d, want 5", got)
	}
	if l.numSlots != 10 {
		t.Errorf("numSlots = %d, want 10", l.numSlots)
	}
	if l.units[te] != 0 || l.dstUnit != 1 || l.numUnits != 2 {
		t.Errorf("units: texture %d dst %d total %d, want 0 1 2", l.units[te], l.dstUnit, l.numUnits)
	}
	if textureBinding(1) != 3 || samplerBinding(1) != 4 {
		t.Errorf("unit 1 bindings = %d, %d, want 3, 4", textureBinding(1), samplerBinding(1))
	}
}

func TestPackUniforms(t *testing.T) {
	cc := processor.NewConstColor(gpu.Color{R: 0.25, G: 0.5, B: 0.75, A: 1}, processor.InputIgnore)
	rect := processor.NewAARectEffect(geom.XYWH(10, 20, 30, 40))
	p := pipeline.New(processor.NewQuadPerEdgeAA(false), []processor.Fragment{cc},
		[]processor.Fragment{rect}, blend.Resolve(blend.SrcOver), nil, gpu.SwizzleRGBA)
	l := newLayout(p)

	tests := []struct {
		name   string
		origin gpu.Origin
		vp     [4]float32
	}{
		{"top left", gpu.OriginTopLeft, [4]float32{0.02, -0.04, 1, 0}},
		{"bottom left", gpu.OriginBottomLeft, [4]float32{0.02, 0.04, -1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := packUniforms(p, l, 100, 50, tt.origin)
			if len(data) != 4*l.numSlots {
				t.Fatalf("len = %d, want %d", len(data), 4*l.numSlots)
			}
			for i, want := range tt.vp {
				if diff := data[i] - want; diff > 1e-6 || diff < -1e-6 {
					t.Errorf("viewport[%d] = %v, want %v", i, data[i], want)
				}
			}
			c := data[4*l.slots[cc]:]
			if c[0] != 0.25 || c[1] != 0.5 || c[2] != 0.75 || c[3] != 1 {
				t.Errorf("color slot = %v", c[:4])
			}
			r := data[4*l.slots[rect]:]
			want := [4]float32{9.5, 19.5, 40.5, 60.5}
			for i := range want {
				if r[i] != want[i] {
					t.Errorf("rect slot = %v, want %v", r[:4], want)
					break
				}
			}
		})
	}
}

func TestSwizzleExpr(t *testing.T) {
	tests := []struct {
		s    gpu.Swizzle
		want string
	}{
		{gpu.SwizzleRGBA, "c"},
		{gpu.SwizzleAAAA, "(c).aaaa"},
		{gpu.SwizzleRRRR, "(c).rrrr"},
		{gpu.Swizzle{'r', 'g', 'b', '1'}, "vec4<f32>((c).r, (c).g, (c).b, 1.0)"},
	}
	for _, tt := range tests {
		if got := swizzleExpr("c", tt.s); got != tt.want {
			t.Errorf("swizzleExpr(%s) = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestVertexAttributes(t *testing.T) {
	attrs := vertexAttributes(processor.NewEllipse())
	if len(attrs) != 5 {
		t.Fatalf("ellipse attributes = %d, want 5", len(attrs))
	}
	var offset uint64
	for i, a := range attrs {
		if a.ShaderLocation != uint32(i) {
			t.Errorf("attribute %d location = %d", i, a.ShaderLocation)
		}
		if a.Offset != offset {
			t.Errorf("attribute %d offset = %d, want %d", i, a.Offset, offset)
		}
		offset += uint64(4 * processor.NewEllipse().Attributes()[i].Components)
	}
	if want := uint64(4 * processor.VertexStride(processor.NewEllipse())); offset != want {
		t.Errorf("total size %d, want stride %d", offset, want)
	}
}
