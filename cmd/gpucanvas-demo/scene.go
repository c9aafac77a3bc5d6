package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/gpucanvas"
	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/path"
	"github.com/gogpu/gpucanvas/text"
)

// scene is the TOML scene description.
type scene struct {
	Width      int
	Height     int
	Background string
	Shapes     []shape `toml:"shape"`
}

// shape is one draw. Kind is rect, rrect, oval, circle, polygon, text or
// clip; clip shapes restrict every later shape.
type shape struct {
	Kind   string
	X, Y   float64
	W, H   float64
	Radius float64
	Points [][2]float64

	Color  string
	Alpha  float64
	Blend  string
	Stroke float64
	Rotate float64 // degrees around the shape center

	Text string
	Size float64

	// Gradient, when set, paints a linear gradient from Color to this
	// color across the shape.
	Gradient string
}

const defaultScene = `
width = 640
height = 360
background = "#1e2a3a"

[[shape]]
kind = "rect"
x = 40
y = 40
w = 240
h = 140
color = "#e64b3c"
gradient = "#f1c40f"

[[shape]]
kind = "circle"
x = 400
y = 110
radius = 70
color = "#3498db"
alpha = 0.8

[[shape]]
kind = "oval"
x = 360
y = 60
w = 160
h = 100
color = "#2ecc71"
blend = "multiply"

[[shape]]
kind = "rrect"
x = 60
y = 220
w = 200
h = 90
radius = 18
color = "#ffffff"
stroke = 4
rotate = -8

[[shape]]
kind = "polygon"
points = [[420, 220], [560, 240], [520, 330], [400, 320]]
color = "#9b59b6"

[[shape]]
kind = "text"
x = 300
y = 300
size = 28
text = "gpucanvas"
color = "#ecf0f1"
`

// parseScene decodes a TOML scene and checks its size.
func parseScene(data string) (*scene, error) {
	var s scene
	if _, err := toml.Decode(data, &s); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("scene size %dx%d: %w", s.Width, s.Height, gpucanvas.ErrInvalidSize)
	}
	return &s, nil
}

// parseColor reads #rgb, #rrggbb or #rrggbbaa.
func parseColor(s string) (gpu.Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return gpu.Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return gpu.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return gpu.RGBA(float64(v>>24&0xff)/255, float64(v>>16&0xff)/255,
		float64(v>>8&0xff)/255, float64(v&0xff)/255), nil
}

// parseBlend matches a mode name case-insensitively, ignoring dashes.
func parseBlend(name string) (blend.Mode, error) {
	if name == "" {
		return blend.SrcOver, nil
	}
	want := strings.ReplaceAll(strings.ToLower(name), "-", "")
	for m := blend.Clear; m.Valid(); m++ {
		if strings.ToLower(m.String()) == want {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown blend mode %q", name)
}

// draw renders the scene on c.
func (s *scene) draw(c *gpucanvas.Canvas, font text.Font) error {
	if s.Background != "" {
		bg, err := parseColor(s.Background)
		if err != nil {
			return err
		}
		c.Clear(bg)
	}
	for i, sh := range s.Shapes {
		if err := sh.draw(c, font); err != nil {
			return fmt.Errorf("shape %d (%s): %w", i, sh.Kind, err)
		}
	}
	return nil
}

func (sh shape) paint() (*gpucanvas.Paint, error) {
	col := gpu.Black
	if sh.Color != "" {
		var err error
		if col, err = parseColor(sh.Color); err != nil {
			return nil, err
		}
	}
	if sh.Alpha > 0 {
		col.A *= float32(min(sh.Alpha, 1))
	}
	p := gpucanvas.NewPaint(col)
	if sh.Stroke > 0 {
		p.Style = gpucanvas.StyleStroke
		p.StrokeWidth = sh.Stroke
	}
	if sh.Gradient != "" {
		end, err := parseColor(sh.Gradient)
		if err != nil {
			return nil, err
		}
		start := col
		start.A = 1
		p.Shader = gpucanvas.NewLinearGradient(geom.Pt(sh.X, sh.Y), geom.Pt(sh.X+sh.W, sh.Y+sh.H),
			[]gpu.Color{start, end}, nil)
	}
	return p, nil
}

func (sh shape) bounds() geom.Rect {
	if sh.Kind == "circle" {
		return geom.XYWH(sh.X-sh.Radius, sh.Y-sh.Radius, 2*sh.Radius, 2*sh.Radius)
	}
	return geom.XYWH(sh.X, sh.Y, sh.W, sh.H)
}

func (sh shape) draw(c *gpucanvas.Canvas, font text.Font) error {
	mode, err := parseBlend(sh.Blend)
	if err != nil {
		return err
	}
	p, err := sh.paint()
	if err != nil {
		return err
	}
	if sh.Kind != "clip" {
		c.Save()
		defer c.Restore()
	}
	c.SetBlendMode(mode)
	if sh.Rotate != 0 {
		ctr := sh.bounds().Center()
		c.Translate(ctr.X, ctr.Y)
		c.Rotate(sh.Rotate * math.Pi / 180)
		c.Translate(-ctr.X, -ctr.Y)
	}

	switch sh.Kind {
	case "rect":
		c.DrawRect(sh.bounds(), p)
	case "rrect":
		c.DrawRRect(geom.NewRRect(sh.bounds(), sh.Radius, sh.Radius), p)
	case "oval", "circle":
		c.DrawOval(sh.bounds(), p)
	case "polygon":
		poly, err := polygon(sh.Points)
		if err != nil {
			return err
		}
		c.DrawPath(poly, p)
	case "text":
		size := sh.Size
		if size <= 0 {
			size = 16
		}
		c.DrawText(sh.Text, sh.X, sh.Y, font.WithSize(size), p)
	case "clip":
		if len(sh.Points) > 0 {
			poly, err := polygon(sh.Points)
			if err != nil {
				return err
			}
			c.ClipPath(poly)
		} else {
			c.ClipRect(sh.bounds())
		}
	default:
		return fmt.Errorf("unknown shape kind %q", sh.Kind)
	}
	return nil
}

func polygon(points [][2]float64) (*path.Path, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 points, got %d", len(points))
	}
	p := path.New()
	p.MoveTo(points[0][0], points[0][1])
	for _, pt := range points[1:] {
		p.LineTo(pt[0], pt[1])
	}
	p.Close()
	return p, nil
}
