package processor

import (
	"math"
	"testing"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
)

type fakeTexture struct {
	id     uint64
	w, h   int
	origin gpu.Origin
	format gpu.PixelFormat
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

func key(fp Fragment) string {
	var kb KeyBuilder
	ComputeKey(fp, &kb)
	return kb.String()
}

func TestEqualReflexive(t *testing.T) {
	tex := newFakeTexture(16, 16, gpu.FormatRGBA8)
	red := gpu.Red
	tests := []struct {
		name string
		fp   Fragment
	}{
		{"const", NewConstColor(red, InputModulateRGBA)},
		{"texture", NewTextureEffect(tex, gpu.DefaultSampler, geom.Identity())},
		{"rgbaaa", NewRGBAAATextureEffect(tex, gpu.DefaultSampler, geom.Identity(), geom.Pt(8, 0))},
		{"aarect", NewAARectEffect(geom.XYWH(1.5, 1.5, 4, 4))},
		{"xfermode", MulChildByInputAlpha(NewTextureEffect(tex, gpu.DefaultSampler, geom.Identity()))},
		{"series", RunInSeries(NewConstColor(red, InputIgnore), NewColorMatrix(identityColorMatrix()))},
		{"linear", NewLinearGradient(geom.Pt(0, 0), geom.Pt(10, 0), []gpu.Color{gpu.Red, gpu.Blue}, nil, geom.Identity())},
		{"radial", NewRadialGradient(geom.Pt(5, 5), 5, []gpu.Color{gpu.Red, gpu.Blue}, nil, geom.Identity())},
		{"modulate", NewModulate(NewConstColor(red, InputIgnore))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.fp == nil {
				t.Fatal("constructor returned nil")
			}
			if !Equal(tt.fp, tt.fp) {
				t.Error("processor is not equal to itself")
			}
		})
	}
}

func identityColorMatrix() [20]float32 {
	return [20]float32{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

func TestEqualOrderSensitive(t *testing.T) {
	a := NewConstColor(gpu.Red, InputIgnore)
	b := NewConstColor(gpu.Blue, InputIgnore)
	ab := RunInSeries(a, b)
	ba := RunInSeries(b, a)
	if Equal(ab, ba) {
		t.Error("series with swapped children compare equal")
	}
	if !Equal(ab, RunInSeries(NewConstColor(gpu.Red, InputIgnore), NewConstColor(gpu.Blue, InputIgnore))) {
		t.Error("structurally identical series compare unequal")
	}
	if key(ab) != key(ba) {
		t.Error("uniform-only differences changed the program key")
	}
}

func TestEqualDistinguishesData(t *testing.T) {
	t1 := newFakeTexture(16, 16, gpu.FormatRGBA8)
	t2 := newFakeTexture(16, 16, gpu.FormatRGBA8)
	tests := []struct {
		name string
		a, b Fragment
	}{
		{"color", NewConstColor(gpu.Red, InputIgnore), NewConstColor(gpu.Green, InputIgnore)},
		{"mode", NewConstColor(gpu.Red, InputIgnore), NewConstColor(gpu.Red, InputModulateA)},
		{"texture", NewTextureEffect(t1, gpu.DefaultSampler, geom.Identity()), NewTextureEffect(t2, gpu.DefaultSampler, geom.Identity())},
		{"sampler", NewTextureEffect(t1, gpu.DefaultSampler, geom.Identity()), NewTextureEffect(t1, gpu.SamplerState{}, geom.Identity())},
		{"matrix", NewTextureEffect(t1, gpu.DefaultSampler, geom.Identity()), NewTextureEffect(t1, gpu.DefaultSampler, geom.Translate(1, 0))},
		{"rect", NewAARectEffect(geom.XYWH(0, 0, 4, 4)), NewAARectEffect(geom.XYWH(0, 0, 4, 5))},
		{"class", NewConstColor(gpu.Red, InputIgnore), NewAARectEffect(geom.XYWH(0, 0, 4, 4))},
		{"inverted", MulInputByChildAlpha(NewAARectEffect(geom.WH(4, 4)), false), MulInputByChildAlpha(NewAARectEffect(geom.WH(4, 4)), true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Equal(tt.a, tt.b) {
				t.Error("distinct processors compare equal")
			}
		})
	}
}

func TestKeyReflectsStructure(t *testing.T) {
	rgba := newFakeTexture(8, 8, gpu.FormatRGBA8)
	alpha := newFakeTexture(8, 8, gpu.FormatAlpha8)
	k1 := key(NewTextureEffect(rgba, gpu.DefaultSampler, geom.Identity()))
	k2 := key(NewTextureEffect(alpha, gpu.DefaultSampler, geom.Identity()))
	if k1 == k2 {
		t.Error("texture format does not change the key")
	}
	k3 := key(NewTextureEffect(newFakeTexture(32, 32, gpu.FormatRGBA8), gpu.DefaultSampler, geom.Scale(2, 2)))
	if k1 != k3 {
		t.Error("texture size or matrix changed the key")
	}
	if key(MulInputByChildAlpha(NewAARectEffect(geom.WH(1, 1)), false)) ==
		key(MulInputByChildAlpha(NewAARectEffect(geom.WH(1, 1)), true)) {
		t.Error("blend mode of xfermode does not change the key")
	}
}

func TestIterPreOrder(t *testing.T) {
	a := NewConstColor(gpu.Red, InputIgnore)
	b := NewAARectEffect(geom.WH(2, 2))
	c := NewColorMatrix(identityColorMatrix())
	x := NewXfermodeFromTwo(a, b, blend.SrcOver)
	d := NewConstColor(gpu.Blue, InputIgnore)

	var got []Fragment
	it := NewIter(x, d, c)
	for fp := it.Next(); fp != nil; fp = it.Next() {
		got = append(got, fp)
	}
	want := []Fragment{x, a, b, d, c}
	if len(got) != len(want) {
		t.Fatalf("visited %d processors, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %v, want %v", i, got[i].ClassID(), want[i].ClassID())
		}
	}
}

func TestCoordTransformIter(t *testing.T) {
	t1 := newFakeTexture(4, 4, gpu.FormatRGBA8)
	t2 := newFakeTexture(4, 4, gpu.FormatRGBA8)
	e1 := NewTextureEffect(t1, gpu.DefaultSampler, geom.Translate(1, 0))
	e2 := NewTextureEffect(t2, gpu.DefaultSampler, geom.Translate(2, 0))
	root := RunInSeries(NewConstColor(gpu.Red, InputIgnore), MulChildByInputAlpha(e1), e2)

	var got []float64
	it := NewCoordTransformIter(root)
	for ct, ok := it.Next(); ok; ct, ok = it.Next() {
		got = append(got, ct.Matrix.C)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("transforms = %v, want [1 2]", got)
	}
	samplers := Samplers(root)
	if len(samplers) != 2 || samplers[0].Texture != t1 || samplers[1].Texture != t2 {
		t.Error("sampler order does not follow pre-order")
	}
}

func TestTotalMatrixNormalizes(t *testing.T) {
	tests := []struct {
		origin gpu.Origin
		want   geom.Point
	}{
		{gpu.OriginTopLeft, geom.Pt(0.25, 0.125)},
		{gpu.OriginBottomLeft, geom.Pt(0.25, 0.875)},
	}
	for _, tt := range tests {
		tex := &fakeTexture{id: gpu.NextID(), w: 8, h: 16, origin: tt.origin}
		ct := CoordTransform{Matrix: geom.Identity(), Texture: tex}
		if got := ct.TotalMatrix().TransformPoint(geom.Pt(2, 2)); got != tt.want {
			t.Errorf("%v: TotalMatrix maps (2,2) to %v, want %v", tt.origin, got, tt.want)
		}
	}
}

// A 257-child series must not encode like a one-child series followed by
// 256 sibling processors.
func TestKeyCountsAreNotTruncated(t *testing.T) {
	c := NewConstColor(gpu.Red, InputIgnore)
	wide := make([]Fragment, 257)
	for i := range wide {
		wide[i] = c
	}
	var a, b KeyBuilder
	ComputeKey(RunInSeries(wide...), &a)
	ComputeKey(&Series{node: node{children: wide[:1]}}, &b)
	for range 256 {
		ComputeKey(c, &b)
	}
	if a.String() == b.String() {
		t.Error("child count wrapped at 256")
	}
}

func TestRunInSeriesUnwraps(t *testing.T) {
	c := NewConstColor(gpu.Red, InputIgnore)
	if RunInSeries() != nil {
		t.Error("empty series is not nil")
	}
	if RunInSeries(nil, c, nil) != Fragment(c) {
		t.Error("single processor was wrapped")
	}
}

func TestAARectCoverage(t *testing.T) {
	fp := NewAARectEffect(geom.XYWH(10, 10, 10, 10))
	tests := []struct {
		x, y float64
		want float64
	}{
		{15, 15, 1},
		{10.5, 15, 1},
		{10, 15, 0.5},
		{9.5, 15, 0},
		{10, 10, 0.25},
		{30, 30, 0},
	}
	for _, tt := range tests {
		if got := fp.Coverage(tt.x, tt.y); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Coverage(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestGradientStops(t *testing.T) {
	fp := NewLinearGradient(geom.Pt(0, 0), geom.Pt(0, 10),
		[]gpu.Color{gpu.Red, gpu.Blue}, []float32{0.25, 0.75}, geom.Identity())
	if fp == nil {
		t.Fatal("NewLinearGradient returned nil")
	}
	g := fp.(*Gradient)
	pos := g.Positions()
	if len(pos) != 4 || pos[0] != 0 || pos[1] != 0.25 || pos[2] != 0.75 || pos[3] != 1 {
		t.Fatalf("positions = %v", pos)
	}
	ct := g.CoordTransforms()[0]
	p := ct.TotalMatrix().TransformPoint(geom.Pt(3, 5))
	if tp := g.Param(p); math.Abs(float64(tp)-0.5) > 1e-6 {
		t.Errorf("param at midpoint = %v, want 0.5", tp)
	}
	if got := g.ColorAt(0.1); got != gpu.Red {
		t.Errorf("ColorAt(0.1) = %+v, want red", got)
	}
	if got := g.ColorAt(0.9); got != gpu.Blue {
		t.Errorf("ColorAt(0.9) = %+v, want blue", got)
	}
	mid := g.ColorAt(0.5)
	if math.Abs(float64(mid.R-0.5)) > 1e-6 || math.Abs(float64(mid.B-0.5)) > 1e-6 {
		t.Errorf("ColorAt(0.5) = %+v", mid)
	}
}

func TestRadialParam(t *testing.T) {
	g := NewRadialGradient(geom.Pt(10, 10), 4, []gpu.Color{gpu.White, gpu.Black}, nil, geom.Identity()).(*Gradient)
	m := g.CoordTransforms()[0].TotalMatrix()
	if tp := g.Param(m.TransformPoint(geom.Pt(12, 10))); math.Abs(float64(tp)-0.5) > 1e-6 {
		t.Errorf("param = %v, want 0.5", tp)
	}
	if tp := g.Param(m.TransformPoint(geom.Pt(30, 10))); tp != 1 {
		t.Errorf("param beyond radius = %v, want 1", tp)
	}
}

func TestColorMatrixApply(t *testing.T) {
	grayscale := [20]float32{
		0.25, 0.5, 0.25, 0, 0,
		0.25, 0.5, 0.25, 0, 0,
		0.25, 0.5, 0.25, 0, 0,
		0, 0, 0, 1, 0,
	}
	cm := NewColorMatrix(grayscale)
	got := cm.Apply(gpu.Color{R: 0.5, A: 0.5})
	want := gpu.Color{R: 0.125, G: 0.125, B: 0.125, A: 0.5}
	if got != want {
		t.Errorf("Apply = %+v, want %+v", got, want)
	}
	if cm.AffectsAlpha() {
		t.Error("grayscale matrix reported to affect alpha")
	}
}

func TestEllipseCoverage(t *testing.T) {
	tests := []struct {
		ox, oy float64
		want   float64
	}{
		{0, 0, 1},
		{10, 0, 0.5},
		{9, 0, 1},
		{11, 0, 0},
	}
	for _, tt := range tests {
		got := EllipseCoverage(tt.ox, tt.oy, 0.1, 0.1)
		if math.Abs(got-tt.want) > 0.06 {
			t.Errorf("EllipseCoverage(%v, %v) = %v, want about %v", tt.ox, tt.oy, got, tt.want)
		}
	}
}

func TestGeometryKeys(t *testing.T) {
	tests := []struct {
		a, b  Geometry
		equal bool
	}{
		{NewQuadPerEdgeAA(true), NewQuadPerEdgeAA(true), true},
		{NewQuadPerEdgeAA(true), NewQuadPerEdgeAA(false), false},
		{NewDefaultGeometry(false), NewQuadPerEdgeAA(false), false},
		{NewEllipse(), NewEllipse(), true},
	}
	for _, tt := range tests {
		if got := EqualGeometry(tt.a, tt.b); got != tt.equal {
			t.Errorf("EqualGeometry(%v, %v) = %v", tt.a.ClassID(), tt.b.ClassID(), got)
		}
	}
	if VertexStride(NewQuadPerEdgeAA(true)) != 9 || VertexStride(NewEllipse()) != 12 {
		t.Error("unexpected vertex stride")
	}
}
