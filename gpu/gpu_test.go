package gpu

import (
	"image/color"
	"testing"
)

func TestPremultiply(t *testing.T) {
	c := RGBA(1, 0.5, 0, 0.5).Premultiply()
	if c != (Color{R: 0.5, G: 0.25, B: 0, A: 0.5}) {
		t.Errorf("Premultiply() = %+v", c)
	}
	if back := c.Unpremultiply(); back != RGBA(1, 0.5, 0, 0.5) {
		t.Errorf("Unpremultiply() = %+v", back)
	}
	if got := Transparent.Unpremultiply(); got != Transparent {
		t.Errorf("Unpremultiply(transparent) = %+v", got)
	}
}

func TestRGBA8RoundTrip(t *testing.T) {
	tests := []color.RGBA{
		{0, 0, 0, 0},
		{255, 0, 0, 255},
		{10, 20, 30, 40},
		{128, 128, 128, 128},
	}
	for _, p := range tests {
		if got := FromRGBA8(p).RGBA8(); got != p {
			t.Errorf("round trip of %v = %v", p, got)
		}
	}
}

func TestFromColor(t *testing.T) {
	got := FromColor(color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	if got != Red {
		t.Errorf("FromColor(red) = %+v", got)
	}
}

func TestSwizzle(t *testing.T) {
	c := Color{R: 0.1, G: 0.2, B: 0.3, A: 0.4}
	if got := SwizzleRGBA.Apply(c); got != c {
		t.Errorf("identity swizzle changed color: %+v", got)
	}
	if got := SwizzleAAAA.Apply(c); got != (Color{R: 0.4, G: 0.4, B: 0.4, A: 0.4}) {
		t.Errorf("aaaa swizzle = %+v", got)
	}
	if got := SwizzleRRRR.Apply(c); got != (Color{R: 0.1, G: 0.1, B: 0.1, A: 0.1}) {
		t.Errorf("rrrr swizzle = %+v", got)
	}
	if SwizzleRGBA.Key() == SwizzleAAAA.Key() {
		t.Error("distinct swizzles share a key")
	}
	if ReadSwizzle(FormatAlpha8) != SwizzleRRRR || OutputSwizzle(FormatAlpha8) != SwizzleAAAA {
		t.Error("alpha-only format swizzles are wrong")
	}
}

func TestMipLevelCount(t *testing.T) {
	tests := []struct{ w, h, want int }{
		{1, 1, 1},
		{2, 2, 2},
		{256, 256, 9},
		{100, 7, 7},
	}
	for _, tt := range tests {
		if got := MipLevelCount(tt.w, tt.h); got != tt.want {
			t.Errorf("MipLevelCount(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestNextIDIncreases(t *testing.T) {
	a, b := NextID(), NextID()
	if b <= a {
		t.Errorf("NextID not increasing: %d then %d", a, b)
	}
}
