package program

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

type fakeProgram struct {
	key      string
	released *[]string
}

func (p *fakeProgram) Release() { *p.released = append(*p.released, p.key) }

type fakeDevice struct {
	compiled []string
	released []string
	fail     bool
}

func (d *fakeDevice) Caps() gpu.Caps { return gpu.Caps{} }
func (d *fakeDevice) CreateTexture(gpu.TextureDescriptor) (gpu.Texture, error) {
	return nil, errors.New("unsupported")
}
func (d *fakeDevice) CreateRenderTarget(gpu.RenderTargetDescriptor) (gpu.RenderTarget, error) {
	return nil, errors.New("unsupported")
}
func (d *fakeDevice) WritePixels(gpu.Texture, image.Rectangle, []byte, int) error     { return nil }
func (d *fakeDevice) ReadPixels(gpu.RenderTarget, image.Rectangle, []byte, int) error { return nil }
func (d *fakeDevice) CopyToTexture(gpu.Texture, gpu.RenderTarget, image.Rectangle) error {
	return nil
}
func (d *fakeDevice) RegenerateMipmaps(gpu.Texture) error { return nil }
func (d *fakeDevice) ReleaseTexture(gpu.Texture)          {}
func (d *fakeDevice) BeginRenderPass(gpu.RenderTarget) (render.RenderPass, error) {
	return nil, errors.New("unsupported")
}
func (d *fakeDevice) InsertFence() (render.Fence, error)              { return nil, nil }
func (d *fakeDevice) WaitFence(context.Context, render.Fence) error { return nil }
func (d *fakeDevice) Release()                                       {}

func (d *fakeDevice) CompileProgram(p *pipeline.Pipeline) (render.Program, error) {
	if d.fail {
		return nil, errors.New("compile failed")
	}
	key := p.Key()
	d.compiled = append(d.compiled, key)
	return &fakeProgram{key: key, released: &d.released}, nil
}

// gradientPipeline returns a pipeline whose key depends on stops.
func gradientPipeline(stops int) *pipeline.Pipeline {
	colors := make([]gpu.Color, stops)
	for i := range colors {
		colors[i] = gpu.Red
	}
	fp := processor.NewLinearGradient(geom.Pt(0, 0), geom.Pt(1, 0), colors, nil, geom.Identity())
	return pipeline.New(processor.NewQuadPerEdgeAA(false), []processor.Fragment{fp}, nil,
		blend.Resolve(blend.SrcOver), nil, gpu.SwizzleRGBA)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	dev := &fakeDevice{}
	c := NewCache(dev, 0)
	if c.Capacity() != 128 {
		t.Fatalf("capacity = %d, want 128", c.Capacity())
	}
	for i := 0; i < 129; i++ {
		if _, err := c.Program(gradientPipeline(i + 2)); err != nil {
			t.Fatalf("Program(%d): %v", i, err)
		}
	}
	if len(dev.compiled) != 129 {
		t.Fatalf("compiled %d programs, want 129", len(dev.compiled))
	}
	if len(dev.released) != 1 || dev.released[0] != gradientPipeline(2).Key() {
		t.Fatalf("released %d programs, want the first one", len(dev.released))
	}
	if c.Len() != 128 {
		t.Errorf("Len() = %d, want 128", c.Len())
	}

	// The most recent entry is a hit; the evicted one recompiles.
	if _, err := c.Program(gradientPipeline(130)); err != nil {
		t.Fatal(err)
	}
	if len(dev.compiled) != 129 {
		t.Error("cached program was recompiled")
	}
	if _, err := c.Program(gradientPipeline(2)); err != nil {
		t.Fatal(err)
	}
	if len(dev.compiled) != 130 {
		t.Error("evicted program was not recompiled")
	}
	s := c.Stats()
	if s.Hits != 1 || s.Misses != 130 || s.Evictions != 2 {
		t.Errorf("stats = %+v", s)
	}
}

func TestHoldDefersEvictedRelease(t *testing.T) {
	dev := &fakeDevice{}
	c := NewCache(dev, 1)

	outer := c.Hold()
	inner := c.Hold()
	for i := range 3 {
		if _, err := c.Program(gradientPipeline(i + 2)); err != nil {
			t.Fatal(err)
		}
	}
	if len(dev.released) != 0 {
		t.Fatalf("released %d programs while held", len(dev.released))
	}
	inner()
	inner()
	if len(dev.released) != 0 {
		t.Fatal("programs released before the outer hold ended")
	}
	outer()
	want := []string{gradientPipeline(2).Key(), gradientPipeline(3).Key()}
	if len(dev.released) != len(want) || dev.released[0] != want[0] || dev.released[1] != want[1] {
		t.Errorf("released = %d programs, want the two evicted in order", len(dev.released))
	}

	// Without a hold eviction releases at once.
	if _, err := c.Program(gradientPipeline(5)); err != nil {
		t.Fatal(err)
	}
	if len(dev.released) != 3 {
		t.Errorf("released %d programs, want 3", len(dev.released))
	}
}

func TestCacheSharesEqualKeys(t *testing.T) {
	dev := &fakeDevice{}
	c := NewCache(dev, 4)
	red := processor.NewConstColor(gpu.Red, processor.InputIgnore)
	blue := processor.NewConstColor(gpu.Blue, processor.InputIgnore)
	gp := processor.NewDefaultGeometry(false)
	p1 := pipeline.New(gp, []processor.Fragment{red}, nil, nil, nil, gpu.SwizzleRGBA)
	p2 := pipeline.New(gp, []processor.Fragment{blue}, nil, nil, nil, gpu.SwizzleRGBA)
	a, _ := c.Program(p1)
	b, _ := c.Program(p2)
	if a != b || len(dev.compiled) != 1 {
		t.Error("pipelines differing only in uniforms did not share a program")
	}
}

func TestCacheCompileFailureIsNotCached(t *testing.T) {
	dev := &fakeDevice{fail: true}
	c := NewCache(dev, 4)
	if _, err := c.Program(gradientPipeline(2)); err == nil {
		t.Fatal("expected a compile error")
	}
	if c.Len() != 0 {
		t.Error("failed program was cached")
	}
	dev.fail = false
	if _, err := c.Program(gradientPipeline(2)); err != nil {
		t.Fatal(err)
	}
}

func TestReleaseAll(t *testing.T) {
	dev := &fakeDevice{}
	c := NewCache(dev, 8)
	for i := 2; i < 6; i++ {
		_, _ = c.Program(gradientPipeline(i))
	}
	c.ReleaseAll()
	if len(dev.released) != 4 || c.Len() != 0 {
		t.Errorf("released %d, len %d", len(dev.released), c.Len())
	}
}
