package processor

import "math"

// Attribute is one float32 vertex attribute.
type Attribute struct {
	Name       string
	Components int
}

// Geometry is the vertex stage of a draw. Every geometry processor takes
// device-space positions, local coordinates and a premultiplied color per
// vertex; the kind decides how coverage is produced.
type Geometry interface {
	ClassID() ClassID
	Attributes() []Attribute
	writeKey(kb *KeyBuilder)
}

var (
	attrPosition = Attribute{Name: "position", Components: 2}
	attrLocal    = Attribute{Name: "localCoord", Components: 2}
	attrColor    = Attribute{Name: "color", Components: 4}
	attrCoverage = Attribute{Name: "coverage", Components: 1}
	attrOffset   = Attribute{Name: "ellipseOffset", Components: 2}
	attrRadii    = Attribute{Name: "ellipseRadii", Components: 2}
)

// VertexStride returns the number of float32 values per vertex.
func VertexStride(gp Geometry) int {
	n := 0
	for _, a := range gp.Attributes() {
		n += a.Components
	}
	return n
}

// ComputeGeometryKey writes the key of gp.
func ComputeGeometryKey(gp Geometry, kb *KeyBuilder) {
	kb.Write8(uint8(gp.ClassID()))
	gp.writeKey(kb)
}

// QuadPerEdgeAA draws quads. With AA enabled, each vertex carries a
// coverage value: 1 on the inset ring, 0 on the outset ring.
type QuadPerEdgeAA struct {
	aa bool
}

// NewQuadPerEdgeAA returns the quad geometry processor.
func NewQuadPerEdgeAA(aa bool) *QuadPerEdgeAA {
	return &QuadPerEdgeAA{aa: aa}
}

func (*QuadPerEdgeAA) ClassID() ClassID { return ClassQuadPerEdgeAA }

// AA reports whether vertices carry coverage.
func (q *QuadPerEdgeAA) AA() bool { return q.aa }

func (q *QuadPerEdgeAA) Attributes() []Attribute {
	if q.aa {
		return []Attribute{attrPosition, attrLocal, attrColor, attrCoverage}
	}
	return []Attribute{attrPosition, attrLocal, attrColor}
}

func (q *QuadPerEdgeAA) writeKey(kb *KeyBuilder) {
	kb.WriteBool(q.aa)
}

// Ellipse draws round rects and ovals. Each vertex carries its pixel
// offset from the nearest corner ellipse center and the reciprocal radii
// of that ellipse. Inside the straight part of a round rect the offset is
// clamped to zero.
type Ellipse struct{}

// NewEllipse returns the ellipse geometry processor.
func NewEllipse() *Ellipse {
	return &Ellipse{}
}

func (*Ellipse) ClassID() ClassID { return ClassEllipse }

func (*Ellipse) Attributes() []Attribute {
	return []Attribute{attrPosition, attrLocal, attrColor, attrOffset, attrRadii}
}

func (*Ellipse) writeKey(*KeyBuilder) {}

// EllipseCoverage returns the edge coverage of a fragment at pixel offset
// (ox, oy) from the center of an ellipse with reciprocal radii invRx and
// invRy. It approximates the signed distance to the edge with the implicit
// function divided by its gradient length.
func EllipseCoverage(ox, oy, invRx, invRy float64) float64 {
	x, y := ox*invRx, oy*invRy
	test := x*x + y*y - 1
	gx, gy := 2*x*invRx, 2*y*invRy
	grad := math.Max(gx*gx+gy*gy, 1e-4)
	return clamp01(0.5 - test/math.Sqrt(grad))
}

// DefaultGeometry draws arbitrary triangles, optionally with per-vertex
// coverage.
type DefaultGeometry struct {
	coverage bool
}

// NewDefaultGeometry returns the triangle geometry processor.
func NewDefaultGeometry(coverage bool) *DefaultGeometry {
	return &DefaultGeometry{coverage: coverage}
}

func (*DefaultGeometry) ClassID() ClassID { return ClassDefaultGeometry }

// HasCoverage reports whether vertices carry coverage.
func (d *DefaultGeometry) HasCoverage() bool { return d.coverage }

func (d *DefaultGeometry) Attributes() []Attribute {
	if d.coverage {
		return []Attribute{attrPosition, attrLocal, attrColor, attrCoverage}
	}
	return []Attribute{attrPosition, attrLocal, attrColor}
}

func (d *DefaultGeometry) writeKey(kb *KeyBuilder) {
	kb.WriteBool(d.coverage)
}

// EqualGeometry reports whether a and b produce the same vertex stage.
func EqualGeometry(a, b Geometry) bool {
	if a == nil || b == nil {
		return a == b
	}
	var ka, kb KeyBuilder
	ComputeGeometryKey(a, &ka)
	ComputeGeometryKey(b, &kb)
	return ka.String() == kb.String()
}
