package software

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/pipeline"
	"github.com/gogpu/gpucanvas/processor"
	"github.com/gogpu/gpucanvas/render"
)

func newTarget(t *testing.T, d *Device, w, h int, format gpu.PixelFormat, origin gpu.Origin) gpu.RenderTarget {
	t.Helper()
	rt, err := d.CreateRenderTarget(gpu.RenderTargetDescriptor{
		TextureDescriptor: gpu.TextureDescriptor{Width: w, Height: h, Format: format, Origin: origin},
	})
	if err != nil {
		t.Fatalf("CreateRenderTarget: %v", err)
	}
	return rt
}

func readAll(t *testing.T, d *Device, rt gpu.RenderTarget) *image.RGBA {
	t.Helper()
	img := image.NewRGBA(gpu.Bounds(rt))
	if err := d.ReadPixels(rt, img.Rect, img.Pix, img.Stride); err != nil {
		t.Fatalf("ReadPixels: %v", err)
	}
	return img
}

// quad returns two triangles covering r with local coordinates equal to
// positions, laid out for QuadPerEdgeAA without coverage.
func quad(r geom.Rect, c gpu.Color) []float32 {
	corners := []geom.Point{
		{X: r.Left, Y: r.Top}, {X: r.Right, Y: r.Top}, {X: r.Right, Y: r.Bottom},
		{X: r.Left, Y: r.Top}, {X: r.Right, Y: r.Bottom}, {X: r.Left, Y: r.Bottom},
	}
	var out []float32
	for _, p := range corners {
		out = append(out, float32(p.X), float32(p.Y), float32(p.X), float32(p.Y), c.R, c.G, c.B, c.A)
	}
	return out
}

func drawQuad(t *testing.T, d *Device, rt gpu.RenderTarget, pl *pipeline.Pipeline, bind func(render.RenderPass),
	r geom.Rect, c gpu.Color) {
	t.Helper()
	prog, err := d.CompileProgram(pl)
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	pass, err := d.BeginRenderPass(rt)
	if err != nil {
		t.Fatalf("BeginRenderPass: %v", err)
	}
	pass.SetViewport(rt.Width(), rt.Height())
	if err := pass.BindProgram(prog, pl); err != nil {
		t.Fatalf("BindProgram: %v", err)
	}
	if bind != nil {
		bind(pass)
	}
	if err := pass.Draw(quad(r, c), 6); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := pass.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
}

func TestWriteReadPixels(t *testing.T) {
	src := []byte{
		10, 20, 30, 255, 40, 50, 60, 255,
		70, 80, 90, 255, 100, 110, 120, 255,
	}
	for _, tc := range []struct {
		name   string
		format gpu.PixelFormat
		origin gpu.Origin
	}{
		{"rgba top-left", gpu.FormatRGBA8, gpu.OriginTopLeft},
		{"rgba bottom-left", gpu.FormatRGBA8, gpu.OriginBottomLeft},
		{"bgra top-left", gpu.FormatBGRA8, gpu.OriginTopLeft},
		{"bgra bottom-left", gpu.FormatBGRA8, gpu.OriginBottomLeft},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDevice()
			rt := newTarget(t, d, 2, 2, tc.format, tc.origin)
			if err := d.WritePixels(rt.Texture(), image.Rect(0, 0, 2, 2), src, 8); err != nil {
				t.Fatalf("WritePixels: %v", err)
			}
			got := readAll(t, d, rt)
			for i := range src {
				if got.Pix[i] != src[i] {
					t.Fatalf("pix = %v, want %v", got.Pix, src)
				}
			}
		})
	}
}

func TestBottomLeftStorageRows(t *testing.T) {
	d := NewDevice()
	rt := newTarget(t, d, 1, 2, gpu.FormatRGBA8, gpu.OriginBottomLeft)
	pass, err := d.BeginRenderPass(rt)
	if err != nil {
		t.Fatal(err)
	}
	// Storage row 0 is the logical bottom row.
	if err := pass.Clear(image.Rect(0, 0, 1, 1), gpu.Red); err != nil {
		t.Fatal(err)
	}
	if err := pass.End(); err != nil {
		t.Fatal(err)
	}
	img := readAll(t, d, rt)
	if got := img.RGBAAt(0, 1); got.R != 255 || got.A != 255 {
		t.Errorf("bottom pixel = %v, want red", got)
	}
	if got := img.RGBAAt(0, 0); got.A != 0 {
		t.Errorf("top pixel = %v, want transparent", got)
	}
}

func TestTrianglesShareEdgesOnce(t *testing.T) {
	d := NewDevice()
	rt := newTarget(t, d, 4, 4, gpu.FormatRGBA8, gpu.OriginTopLeft)
	fill := gpu.RGBA(1, 0, 0, 0.6).Premultiply()
	pl := pipeline.New(processor.NewQuadPerEdgeAA(false), nil, nil, blend.Resolve(blend.SrcOver), nil, gpu.SwizzleRGBA)
	drawQuad(t, d, rt, pl, nil, geom.XYWH(1, 1, 2, 2), fill)

	img := readAll(t, d, rt)
	want := fill.RGBA8()
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got := img.RGBAAt(x, y)
			in := x >= 1 && x < 3 && y >= 1 && y < 3
			if in && got != want {
				t.Errorf("(%d,%d) = %v, want %v", x, y, got, want)
			}
			if !in && got.A != 0 {
				t.Errorf("(%d,%d) = %v, want transparent", x, y, got)
			}
		}
	}
	if s := d.Stats(); s.Draws != 1 || s.Passes != 1 || s.ProgramsCompiled != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestScissorIsStorageSpace(t *testing.T) {
	d := NewDevice()
	rt := newTarget(t, d, 2, 2, gpu.FormatRGBA8, gpu.OriginBottomLeft)
	pl := pipeline.New(processor.NewQuadPerEdgeAA(false), nil, nil, blend.Resolve(blend.Src), nil, gpu.SwizzleRGBA)
	bind := func(p render.RenderPass) { p.SetScissor(image.Rect(0, 0, 2, 1)) }
	drawQuad(t, d, rt, pl, bind, geom.WH(2, 2), gpu.Blue)

	img := readAll(t, d, rt)
	if img.RGBAAt(0, 1).B != 255 || img.RGBAAt(0, 0).A != 0 {
		t.Errorf("storage row 0 should be the logical bottom row: top %v bottom %v",
			img.RGBAAt(0, 0), img.RGBAAt(0, 1))
	}
}

func TestTextureEffectSamplesTexels(t *testing.T) {
	d := NewDevice()
	tex, err := d.CreateTexture(gpu.TextureDescriptor{Width: 2, Height: 2, Format: gpu.FormatRGBA8})
	if err != nil {
		t.Fatal(err)
	}
	texels := []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 255,
	}
	if err := d.WritePixels(tex, image.Rect(0, 0, 2, 2), texels, 8); err != nil {
		t.Fatal(err)
	}
	nearest := gpu.SamplerState{Filter: gpu.FilterNearest}
	fp := processor.NewTextureEffect(tex, nearest, geom.Identity())
	pl := pipeline.New(processor.NewQuadPerEdgeAA(false), []processor.Fragment{fp}, nil,
		blend.Resolve(blend.Src), nil, gpu.SwizzleRGBA)
	rt := newTarget(t, d, 2, 2, gpu.FormatRGBA8, gpu.OriginTopLeft)
	bind := func(p render.RenderPass) {
		for unit, s := range pl.Samplers() {
			p.BindTexture(unit, s.Texture, s.State)
		}
	}
	drawQuad(t, d, rt, pl, bind, geom.WH(2, 2), gpu.White)

	img := readAll(t, d, rt)
	for i := range texels {
		if img.Pix[i] != texels[i] {
			t.Fatalf("pix = %v, want %v", img.Pix, texels)
		}
	}
}

func TestUnboundTextureFailsDraw(t *testing.T) {
	d := NewDevice()
	tex, _ := d.CreateTexture(gpu.TextureDescriptor{Width: 1, Height: 1, Format: gpu.FormatAlpha8})
	fp := processor.NewTextureEffect(tex, gpu.DefaultSampler, geom.Identity())
	pl := pipeline.New(processor.NewQuadPerEdgeAA(false), []processor.Fragment{fp}, nil,
		blend.Resolve(blend.SrcOver), nil, gpu.SwizzleRGBA)
	prog, err := d.CompileProgram(pl)
	if err != nil {
		t.Fatal(err)
	}
	rt := newTarget(t, d, 1, 1, gpu.FormatRGBA8, gpu.OriginTopLeft)
	pass, _ := d.BeginRenderPass(rt)
	if err := pass.BindProgram(prog, pl); err != nil {
		t.Fatal(err)
	}
	if err := pass.Draw(quad(geom.WH(1, 1), gpu.White), 6); err == nil {
		t.Error("Draw succeeded without a bound texture")
	}
}

func TestCustomBlendNeedsDestination(t *testing.T) {
	pl := pipeline.New(processor.NewQuadPerEdgeAA(false), nil, nil, blend.Resolve(blend.Multiply), nil,
		gpu.SwizzleRGBA)
	if _, err := NewDevice().CompileProgram(pl); err == nil {
		t.Error("custom blend compiled without a destination read")
	}
	if _, err := NewDevice(WithFramebufferFetch(true)).CompileProgram(pl); err != nil {
		t.Errorf("framebuffer fetch device: %v", err)
	}
}

func TestCopyToTexture(t *testing.T) {
	d := NewDevice()
	rt := newTarget(t, d, 3, 3, gpu.FormatRGBA8, gpu.OriginTopLeft)
	pass, _ := d.BeginRenderPass(rt)
	_ = pass.Clear(image.Rect(1, 1, 2, 2), gpu.Green)
	_ = pass.End()

	dst, err := d.CreateTexture(gpu.TextureDescriptor{Width: 2, Height: 2, Format: gpu.FormatRGBA8})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.CopyToTexture(dst, rt, image.Rect(1, 1, 3, 3)); err != nil {
		t.Fatal(err)
	}
	if got := dst.(*texture).texel(0, 0, 0); got != gpu.Green {
		t.Errorf("copied texel = %v, want green", got)
	}
	if err := d.CopyToTexture(dst, rt, image.Rect(0, 0, 3, 3)); !errors.Is(err, render.ErrInvalidRect) {
		t.Errorf("oversized copy: err = %v, want ErrInvalidRect", err)
	}
	if d.Stats().DstCopies != 1 {
		t.Errorf("DstCopies = %d, want 1", d.Stats().DstCopies)
	}
}

func TestRegenerateMipmaps(t *testing.T) {
	d := NewDevice()
	tex, err := d.CreateTexture(gpu.TextureDescriptor{Width: 2, Height: 2, Format: gpu.FormatRGBA8, Mipmapped: true})
	if err != nil {
		t.Fatal(err)
	}
	// Two opaque white and two transparent texels average to fill-alpha
	// premultiplied white.
	texels := []byte{
		255, 255, 255, 255, 0, 0, 0, 0,
		0, 0, 0, 0, 255, 255, 255, 255,
	}
	if err := d.WritePixels(tex, image.Rect(0, 0, 2, 2), texels, 8); err != nil {
		t.Fatal(err)
	}
	if err := d.RegenerateMipmaps(tex); err != nil {
		t.Fatal(err)
	}
	tt := tex.(*texture)
	if len(tt.levels) != 2 {
		t.Fatalf("levels = %d, want 2", len(tt.levels))
	}
	got := tt.texel(1, 0, 0).RGBA8()
	for _, v := range []uint8{got.R, got.G, got.B, got.A} {
		if v < 126 || v > 129 {
			t.Fatalf("level 1 = %v, want about 128 in every channel", got)
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		i    int
		mode gpu.WrapMode
		want int
		ok   bool
	}{
		{-1, gpu.WrapClamp, 0, true},
		{5, gpu.WrapClamp, 3, true},
		{5, gpu.WrapRepeat, 1, true},
		{-1, gpu.WrapRepeat, 3, true},
		{4, gpu.WrapMirrorRepeat, 3, true},
		{-1, gpu.WrapMirrorRepeat, 0, true},
		{4, gpu.WrapClampToBorder, 0, false},
		{2, gpu.WrapClampToBorder, 2, true},
	}
	for _, tt := range tests {
		got, ok := wrap(tt.i, 4, tt.mode)
		if got != tt.want || ok != tt.ok {
			t.Errorf("wrap(%d, 4, %d) = %d, %v; want %d, %v", tt.i, tt.mode, got, ok, tt.want, tt.ok)
		}
	}
}

func TestInvalidTextures(t *testing.T) {
	d := NewDevice(WithMaxTextureSize(16))
	if _, err := d.CreateTexture(gpu.TextureDescriptor{Width: 0, Height: 4}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("zero width: %v", err)
	}
	if _, err := d.CreateTexture(gpu.TextureDescriptor{Width: 17, Height: 4}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("oversized: %v", err)
	}
	if _, err := d.CreateTexture(gpu.TextureDescriptor{Width: 4, Height: 4, Format: 99}); !errors.Is(err, render.ErrUnsupportedFormat) {
		t.Errorf("bad format: %v", err)
	}
	rt := newTarget(t, d, 4, 4, gpu.FormatRGBA8, gpu.OriginTopLeft)
	if err := d.WritePixels(rt.Texture(), image.Rect(0, 0, 4, 4), make([]byte, 8), 16); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("short buffer: %v", err)
	}
	if err := d.WritePixels(rt.Texture(), image.Rect(2, 2, 6, 6), make([]byte, 64), 16); !errors.Is(err, render.ErrInvalidRect) {
		t.Errorf("outside rect: %v", err)
	}
}

func TestReleaseLifecycle(t *testing.T) {
	d := NewDevice()
	tex, _ := d.CreateTexture(gpu.TextureDescriptor{Width: 1, Height: 1})
	if d.Stats().Textures != 1 {
		t.Fatalf("live textures = %d, want 1", d.Stats().Textures)
	}
	d.ReleaseTexture(tex)
	d.ReleaseTexture(tex)
	if d.Stats().Textures != 0 {
		t.Errorf("live textures = %d after double release, want 0", d.Stats().Textures)
	}
	if err := d.WritePixels(tex, image.Rect(0, 0, 1, 1), make([]byte, 4), 4); err == nil {
		t.Error("write to released texture succeeded")
	}

	f, err := d.InsertFence()
	if err != nil || !f.Signaled() {
		t.Fatalf("fence: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.WaitFence(ctx, f); !errors.Is(err, context.Canceled) {
		t.Errorf("WaitFence on done context = %v", err)
	}

	d.Release()
	if _, err := d.CreateTexture(gpu.TextureDescriptor{Width: 1, Height: 1}); !errors.Is(err, render.ErrReleased) {
		t.Errorf("after Release: %v", err)
	}
}
