package path

import (
	"image"
	"math"
	"testing"

	"github.com/gogpu/gpucanvas/geom"
)

func TestAsRect(t *testing.T) {
	tests := []struct {
		name  string
		build func(p *Path)
		want  geom.Rect
		ok    bool
	}{
		{"AddRect", func(p *Path) { p.AddRect(geom.XYWH(1, 2, 3, 4)) }, geom.XYWH(1, 2, 3, 4), true},
		{"open contour", func(p *Path) {
			p.MoveTo(0, 0)
			p.LineTo(10, 0)
			p.LineTo(10, 5)
			p.LineTo(0, 5)
		}, geom.WH(10, 5), true},
		{"counter clockwise", func(p *Path) {
			p.MoveTo(0, 0)
			p.LineTo(0, 5)
			p.LineTo(10, 5)
			p.LineTo(10, 0)
			p.Close()
		}, geom.WH(10, 5), true},
		{"explicit return to start", func(p *Path) {
			p.MoveTo(0, 0)
			p.LineTo(10, 0)
			p.LineTo(10, 5)
			p.LineTo(0, 5)
			p.LineTo(0, 0)
			p.Close()
		}, geom.WH(10, 5), true},
		{"triangle", func(p *Path) {
			p.MoveTo(0, 0)
			p.LineTo(10, 0)
			p.LineTo(5, 5)
			p.Close()
		}, geom.Rect{}, false},
		{"diamond", func(p *Path) {
			p.MoveTo(5, 0)
			p.LineTo(10, 5)
			p.LineTo(5, 10)
			p.LineTo(0, 5)
			p.Close()
		}, geom.Rect{}, false},
		{"two rects", func(p *Path) {
			p.AddRect(geom.WH(1, 1))
			p.AddRect(geom.XYWH(5, 5, 1, 1))
		}, geom.Rect{}, false},
		{"curve", func(p *Path) { p.AddCircle(5, 5, 5) }, geom.Rect{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			tt.build(p)
			got, ok := p.AsRect()
			if ok != tt.ok || got != tt.want {
				t.Errorf("AsRect() = %+v, %v; want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestAsRRect(t *testing.T) {
	p := New()
	rr := geom.NewRRect(geom.XYWH(0, 0, 20, 10), 3, 2)
	p.AddRRect(rr)
	got, ok := p.AsRRect()
	if !ok || got != rr {
		t.Fatalf("AsRRect() = %+v, %v; want %+v", got, ok, rr)
	}

	moved := p.Transform(geom.Translate(5, 5).Multiply(geom.Scale(2, 2)))
	got, ok = moved.AsRRect()
	want := geom.RRect{Rect: geom.XYWH(5, 5, 40, 20), RadiusX: 6, RadiusY: 4}
	if !ok || got != want {
		t.Errorf("transformed AsRRect() = %+v, %v; want %+v", got, ok, want)
	}

	if _, ok := p.Transform(geom.Rotate(0.5)).AsRRect(); ok {
		t.Error("rotated rrect should not be detected")
	}

	p.LineTo(100, 100)
	if _, ok := p.AsRRect(); ok {
		t.Error("mutated rrect should not be detected")
	}
}

func TestBoundsAndEmpty(t *testing.T) {
	p := New()
	if !p.IsEmpty() {
		t.Error("new path should be empty")
	}
	p.MoveTo(3, 3)
	if !p.IsEmpty() {
		t.Error("move-only path should be empty")
	}
	p.LineTo(10, -2)
	p.QuadTo(20, 5, 0, 8)
	if p.IsEmpty() {
		t.Error("path with segments should not be empty")
	}
	want := geom.Rect{Left: 0, Top: -2, Right: 20, Bottom: 8}
	if got := p.Bounds(); got != want {
		t.Errorf("Bounds() = %+v, want %+v", got, want)
	}
}

func TestContainsNonZero(t *testing.T) {
	p := New()
	p.AddRect(geom.XYWH(0, 0, 10, 10))
	// Same direction: overlap stays inside under non-zero.
	p.AddRect(geom.XYWH(2, 2, 6, 6))

	if !p.Contains(5, 5) {
		t.Error("overlapping same-direction contours should contain the center")
	}
	if !p.Contains(1, 1) {
		t.Error("outer area should be inside")
	}
	if p.Contains(11, 5) {
		t.Error("outside point reported inside")
	}

	hole := New()
	hole.AddRect(geom.XYWH(0, 0, 10, 10))
	hole.MoveTo(2, 2)
	hole.LineTo(2, 8)
	hole.LineTo(8, 8)
	hole.LineTo(8, 2)
	hole.Close()
	if hole.Contains(5, 5) {
		t.Error("reverse contour should cut a hole")
	}
}

func TestContainsRect(t *testing.T) {
	circle := New()
	circle.AddCircle(32, 32, 15)
	ring := New()
	ring.AddRect(geom.XYWH(0, 0, 20, 20))
	ring.MoveTo(5, 5)
	ring.LineTo(5, 15)
	ring.LineTo(15, 15)
	ring.LineTo(15, 5)
	ring.Close()

	tests := []struct {
		name string
		p    *Path
		r    geom.Rect
		want bool
	}{
		{"small rect at circle center", circle, geom.XYWH(29, 29, 6, 6), true},
		{"rect crossing circle edge", circle, geom.XYWH(40, 30, 10, 4), false},
		{"rect outside circle", circle, geom.XYWH(0, 0, 4, 4), false},
		{"rect around whole circle", circle, geom.XYWH(10, 10, 44, 44), false},
		{"rect in ring body", ring, geom.XYWH(1, 1, 3, 3), true},
		{"rect inside hole", ring, geom.XYWH(7, 7, 4, 4), false},
		{"rect spanning hole", ring, geom.XYWH(1, 8, 18, 2), false},
		{"empty rect", circle, geom.Rect{}, false},
	}
	for _, tt := range tests {
		if got := tt.p.ContainsRect(tt.r); got != tt.want {
			t.Errorf("%s: ContainsRect(%v) = %v, want %v", tt.name, tt.r, got, tt.want)
		}
	}
}

func TestFlattenCircle(t *testing.T) {
	p := New()
	p.AddCircle(0, 0, 50)
	contours := p.Flatten(0.1)
	if len(contours) != 1 {
		t.Fatalf("got %d contours, want 1", len(contours))
	}
	for _, pt := range contours[0] {
		if d := math.Abs(pt.Length() - 50); d > 0.2 {
			t.Fatalf("point %v is %v away from the circle", pt, d)
		}
	}
	if len(contours[0]) < 16 {
		t.Errorf("circle flattened to only %d points", len(contours[0]))
	}
}

func TestTriangulate(t *testing.T) {
	tests := []struct {
		name      string
		build     func(p *Path)
		wantTris  int
		wantError error
	}{
		{"square", func(p *Path) { p.AddRect(geom.WH(10, 10)) }, 2, nil},
		{"concave L", func(p *Path) {
			p.MoveTo(0, 0)
			p.LineTo(10, 0)
			p.LineTo(10, 4)
			p.LineTo(4, 4)
			p.LineTo(4, 10)
			p.LineTo(0, 10)
			p.Close()
		}, 4, nil},
		{"bowtie", func(p *Path) {
			p.MoveTo(0, 0)
			p.LineTo(10, 10)
			p.LineTo(10, 0)
			p.LineTo(0, 10)
			p.Close()
		}, 0, ErrSelfIntersecting},
		{"two contours", func(p *Path) {
			p.AddRect(geom.WH(1, 1))
			p.AddRect(geom.XYWH(3, 3, 1, 1))
		}, 0, ErrMultipleContours},
		{"line", func(p *Path) {
			p.MoveTo(0, 0)
			p.LineTo(10, 10)
		}, 0, ErrDegenerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			tt.build(p)
			tri, err := p.Triangulate(DefaultTolerance)
			if err != tt.wantError {
				t.Fatalf("Triangulate() error = %v, want %v", err, tt.wantError)
			}
			if err != nil {
				return
			}
			if got := len(tri.Triangles) / 3; got != tt.wantTris {
				t.Errorf("got %d triangles, want %d", got, tt.wantTris)
			}
			var area float64
			for i := 0; i < len(tri.Triangles); i += 3 {
				a, b, c := tri.Triangles[i], tri.Triangles[i+1], tri.Triangles[i+2]
				area += b.Sub(a).Cross(c.Sub(a)) / 2
			}
			if want := signedArea(tri.Outline); math.Abs(area-want) > 1e-9 {
				t.Errorf("triangle area = %v, outline area = %v", area, want)
			}
		})
	}
}

func TestRasterize(t *testing.T) {
	p := New()
	p.AddRect(geom.XYWH(12, 12, 4, 4))
	mask := p.Rasterize(image.Rect(10, 10, 20, 20))
	if mask.Bounds() != image.Rect(0, 0, 10, 10) {
		t.Fatalf("mask bounds = %v", mask.Bounds())
	}
	for y := range 10 {
		for x := range 10 {
			inside := x >= 2 && x < 6 && y >= 2 && y < 6
			got := mask.AlphaAt(x, y).A
			if inside && got != 0xff {
				t.Errorf("pixel (%d,%d) = %d, want 255", x, y, got)
			}
			if !inside && got != 0 {
				t.Errorf("pixel (%d,%d) = %d, want 0", x, y, got)
			}
		}
	}
}

func TestRasterizeHalfPixel(t *testing.T) {
	p := New()
	p.AddRect(geom.Rect{Left: 0.5, Top: 0, Right: 2, Bottom: 1})
	mask := p.Rasterize(image.Rect(0, 0, 2, 1))
	if a := mask.AlphaAt(0, 0).A; a < 120 || a > 135 {
		t.Errorf("half-covered pixel alpha = %d, want about 128", a)
	}
	if a := mask.AlphaAt(1, 0).A; a != 0xff {
		t.Errorf("covered pixel alpha = %d, want 255", a)
	}
}
