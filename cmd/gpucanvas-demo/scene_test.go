package main

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"

	"github.com/gogpu/gpucanvas"
	"github.com/gogpu/gpucanvas/backend/software"
	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/gpu"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    gpu.Color
		wantErr bool
	}{
		{"#ff0000", gpu.Red, false},
		{"#f00", gpu.Red, false},
		{"0000ff", gpu.Blue, false},
		{"#ffffff00", gpu.RGBA(1, 1, 1, 0), false},
		{"#12345", gpu.Color{}, true},
		{"#gg0000", gpu.Color{}, true},
	}
	for _, tt := range tests {
		got, err := parseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseBlend(t *testing.T) {
	tests := []struct {
		in   string
		want blend.Mode
	}{
		{"", blend.SrcOver},
		{"multiply", blend.Multiply},
		{"src-over", blend.SrcOver},
		{"ColorDodge", blend.ColorDodge},
		{"luminosity", blend.Luminosity},
	}
	for _, tt := range tests {
		got, err := parseBlend(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parseBlend(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := parseBlend("bogus"); err == nil {
		t.Error("parseBlend(bogus) should fail")
	}
}

func TestParseScene(t *testing.T) {
	sc, err := parseScene(defaultScene)
	if err != nil {
		t.Fatalf("default scene: %v", err)
	}
	if sc.Width != 640 || sc.Height != 360 {
		t.Errorf("size = %dx%d, want 640x360", sc.Width, sc.Height)
	}
	if len(sc.Shapes) != 6 {
		t.Fatalf("len(Shapes) = %d, want 6", len(sc.Shapes))
	}
	if got := sc.Shapes[4].Points; len(got) != 4 || got[1] != [2]float64{560, 240} {
		t.Errorf("polygon points = %v", got)
	}

	if _, err := parseScene("width = "); err == nil {
		t.Error("malformed TOML should fail")
	}
	if _, err := parseScene("width = 0\nheight = 10"); !errors.Is(err, gpucanvas.ErrInvalidSize) {
		t.Errorf("zero width error = %v, want ErrInvalidSize", err)
	}
}

const testScene = `
width = 40
height = 40
background = "#ffffff"

[[shape]]
kind = "clip"
x = 0
y = 0
w = 20
h = 40

[[shape]]
kind = "rect"
x = 0
y = 0
w = 40
h = 40
color = "#0000ff"
`

func TestRenderScene(t *testing.T) {
	sc, err := parseScene(testScene)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := renderScene(software.NewDevice(), sc, &buf); err != nil {
		t.Fatalf("renderScene: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 40 {
		t.Fatalf("bounds = %v, want 40x40", b)
	}
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{5, 20, color.RGBA{0, 0, 255, 255}},
		{30, 20, color.RGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := color.RGBAModel.Convert(img.At(tt.x, tt.y)).(color.RGBA); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRenderDefaultScene(t *testing.T) {
	sc, err := parseScene(defaultScene)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := renderScene(software.NewDevice(), sc, &buf); err != nil {
		t.Fatalf("renderScene: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty PNG output")
	}
}

func TestRenderUnknownShape(t *testing.T) {
	sc, err := parseScene("width = 8\nheight = 8\n[[shape]]\nkind = \"star\"\n")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := renderScene(software.NewDevice(), sc, &buf); err == nil {
		t.Error("unknown shape kind should fail")
	}
}
