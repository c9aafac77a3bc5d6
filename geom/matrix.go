package geom

import "math"

// Matrix represents a 2D affine transformation matrix.
// It uses a 2x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
//
// A and E are the scale terms, B and D the skew terms, C and F the
// translation.
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, C: x, E: 1, F: y}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Matrix {
	return Matrix{A: x, E: y}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{
		A: cos, B: -sin,
		D: sin, E: cos,
	}
}

// Shear creates a shear matrix.
func Shear(x, y float64) Matrix {
	return Matrix{A: 1, B: x, D: y, E: 1}
}

// Multiply returns m * other: other is applied first, then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// TransformVector applies the transformation to a vector (no translation).
func (m Matrix) TransformVector(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y,
		Y: m.D*p.X + m.E*p.Y,
	}
}

// Invert returns the inverse matrix and true, or the identity and false
// when the matrix is singular.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-10 || math.IsNaN(det) {
		return Identity(), false
	}
	invDet := 1.0 / det
	return Matrix{
		A: m.E * invDet,
		B: -m.B * invDet,
		C: (m.B*m.F - m.C*m.E) * invDet,
		D: -m.D * invDet,
		E: m.A * invDet,
		F: (m.C*m.D - m.A*m.F) * invDet,
	}, true
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// IsTranslation returns true if the matrix is only a translation.
func (m Matrix) IsTranslation() bool {
	return m.A == 1 && m.B == 0 && m.D == 0 && m.E == 1
}

// IsScaleTranslate reports whether the matrix has no skew or rotation.
func (m Matrix) IsScaleTranslate() bool {
	return m.B == 0 && m.D == 0
}

// RectStaysRect reports whether axis-aligned rectangles map to axis-aligned
// rectangles: scale/translate, optionally combined with a 90 degree turn.
func (m Matrix) RectStaysRect() bool {
	if m.B == 0 && m.D == 0 {
		return m.A != 0 && m.E != 0
	}
	return m.A == 0 && m.E == 0 && m.B != 0 && m.D != 0
}

// AxisScale returns the length of the transformed unit x-axis. It is the
// uniform scale factor used to rasterize glyphs at device resolution.
func (m Matrix) AxisScale() float64 {
	return math.Hypot(m.A, m.D)
}

// MaxScale returns the largest stretch the matrix applies to any vector.
func (m Matrix) MaxScale() float64 {
	sx := math.Hypot(m.A, m.D)
	sy := math.Hypot(m.B, m.E)
	return math.Max(sx, sy)
}

// RotationDegrees returns the rotation of the x-axis in whole degrees.
func (m Matrix) RotationDegrees() int {
	return int(math.Round(math.Atan2(m.D, m.A) * 180 / math.Pi))
}

// MapRect returns the bounding box of r after transformation.
func (m Matrix) MapRect(r Rect) Rect {
	if m.IsScaleTranslate() {
		x0, y0 := m.A*r.Left+m.C, m.E*r.Top+m.F
		x1, y1 := m.A*r.Right+m.C, m.E*r.Bottom+m.F
		return Rect{
			Left: math.Min(x0, x1), Top: math.Min(y0, y1),
			Right: math.Max(x0, x1), Bottom: math.Max(y0, y1),
		}
	}
	return BoundsOf(
		m.TransformPoint(Pt(r.Left, r.Top)),
		m.TransformPoint(Pt(r.Right, r.Top)),
		m.TransformPoint(Pt(r.Right, r.Bottom)),
		m.TransformPoint(Pt(r.Left, r.Bottom)),
	)
}
