package processor

import "github.com/gogpu/gpucanvas/gpu"

// ColorMatrix applies a 4x5 row-major matrix to the unpremultiplied input.
// Columns 0-3 weight R, G, B, A; column 4 is a translation in [0, 1] units.
type ColorMatrix struct {
	node
	matrix [20]float32
}

// NewColorMatrix returns a color matrix processor.
func NewColorMatrix(m [20]float32) *ColorMatrix {
	return &ColorMatrix{matrix: m}
}

func (*ColorMatrix) ClassID() ClassID { return ClassColorMatrix }

// Matrix returns the matrix.
func (c *ColorMatrix) Matrix() [20]float32 { return c.matrix }

// AffectsAlpha reports whether transparent input can become visible.
func (c *ColorMatrix) AffectsAlpha() bool {
	m := c.matrix
	return m[15] != 0 || m[16] != 0 || m[17] != 0 || m[18] != 1 || m[19] != 0
}

// Apply runs the matrix on a premultiplied color.
func (c *ColorMatrix) Apply(in gpu.Color) gpu.Color {
	u := in.Unpremultiply()
	v := [4]float32{u.R, u.G, u.B, u.A}
	var out [4]float32
	for row := 0; row < 4; row++ {
		m := c.matrix[row*5 : row*5+5]
		out[row] = m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3]*v[3] + m[4]
	}
	return gpu.Color{R: out[0], G: out[1], B: out[2], A: out[3]}.Clamp().Premultiply()
}

func (c *ColorMatrix) writeKey(*KeyBuilder) {}

func (c *ColorMatrix) equalData(o Fragment) bool {
	return c.matrix == o.(*ColorMatrix).matrix
}
