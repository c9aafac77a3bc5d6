package gpucanvas

import (
	"testing"

	"github.com/gogpu/gpucanvas/backend/software"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/program"
)

func TestContextOptions(t *testing.T) {
	tests := []struct {
		name         string
		opts         []ContextOption
		wantCapacity int
		wantDebug    bool
	}{
		{"defaults", nil, program.DefaultCapacity, false},
		{"capacity", []ContextOption{WithProgramCacheCapacity(16)}, 16, false},
		{"zero capacity keeps default", []ContextOption{WithProgramCacheCapacity(0)}, program.DefaultCapacity, false},
		{"debug", []ContextOption{WithDebugChecks(true)}, program.DefaultCapacity, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := NewContext(software.NewDevice(), tt.opts...)
			if err != nil {
				t.Fatalf("NewContext: %v", err)
			}
			defer ctx.Release()
			if got := ctx.ProgramCache().Capacity(); got != tt.wantCapacity {
				t.Errorf("program cache capacity = %d, want %d", got, tt.wantCapacity)
			}
			if ctx.opts.debugChecks != tt.wantDebug {
				t.Errorf("debugChecks = %v, want %v", ctx.opts.debugChecks, tt.wantDebug)
			}
		})
	}
}

func TestSurfaceOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []SurfaceOption
	}{
		{"default", nil},
		{"bottom-left origin", []SurfaceOption{WithOrigin(gpu.OriginBottomLeft)}},
		{"bgra", []SurfaceOption{WithFormat(gpu.FormatBGRA8)}},
		{"msaa", []SurfaceOption{WithSampleCount(4)}},
		{"mipmaps", []SurfaceOption{WithMipmaps(true)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := NewContext(software.NewDevice())
			if err != nil {
				t.Fatalf("NewContext: %v", err)
			}
			defer ctx.Release()
			s, err := ctx.NewSurface(32, 32, tt.opts...)
			if err != nil {
				t.Fatalf("NewSurface: %v", err)
			}
			c := s.Canvas()
			c.Clear(gpu.White)
			c.DrawRect(rectXYWH(0, 0, 16, 8), NewPaint(gpu.Red))

			img := readPixels(t, s)
			wantPixel(t, img, 4, 4, opaqueRed, 0)
			wantPixel(t, img, 4, 20, opaqueWhite, 0)
			wantPixel(t, img, 24, 4, opaqueWhite, 0)
		})
	}
}

func TestSurfaceSampleCountTooLarge(t *testing.T) {
	ctx, err := NewContext(software.NewDevice(software.WithMaxSampleCount(4)))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	defer ctx.Release()
	if _, err := ctx.NewSurface(8, 8, WithSampleCount(16)); err == nil {
		t.Error("NewSurface with 16 samples should fail")
	}
}
