package processor

import (
	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
)

// ClassID identifies the concrete kind of a processor.
type ClassID uint8

const (
	ClassConstColor ClassID = iota + 1
	ClassTextureEffect
	ClassDeviceSpaceTextureEffect
	ClassAARectEffect
	ClassXfermode
	ClassSeries
	ClassColorMatrix
	ClassLinearGradient
	ClassRadialGradient
	ClassModulate

	ClassQuadPerEdgeAA
	ClassEllipse
	ClassDefaultGeometry
)

var classNames = map[ClassID]string{
	ClassConstColor:               "ConstColor",
	ClassTextureEffect:            "TextureEffect",
	ClassDeviceSpaceTextureEffect: "DeviceSpaceTextureEffect",
	ClassAARectEffect:             "AARectEffect",
	ClassXfermode:                 "Xfermode",
	ClassSeries:                   "Series",
	ClassColorMatrix:              "ColorMatrix",
	ClassLinearGradient:           "LinearGradient",
	ClassRadialGradient:           "RadialGradient",
	ClassModulate:                 "Modulate",
	ClassQuadPerEdgeAA:            "QuadPerEdgeAA",
	ClassEllipse:                  "Ellipse",
	ClassDefaultGeometry:          "DefaultGeometry",
}

func (c ClassID) String() string {
	if n, ok := classNames[c]; ok {
		return n
	}
	return "Unknown"
}

// Sampler binds a texture with its sampling state.
type Sampler struct {
	Texture gpu.Texture
	State   gpu.SamplerState
}

// same reports whether two samplers bind the same texture the same way.
func (s Sampler) same(o Sampler) bool {
	if (s.Texture == nil) != (o.Texture == nil) {
		return false
	}
	if s.Texture != nil && s.Texture.ID() != o.Texture.ID() {
		return false
	}
	return s.State == o.State
}

func (s Sampler) writeKey(kb *KeyBuilder) {
	kb.Write8(s.State.Key())
	if s.Texture == nil {
		kb.Write8(0xff)
		kb.Write16(0)
		return
	}
	kb.Write8(uint8(s.Texture.Format()))
	kb.Write16(gpu.ReadSwizzle(s.Texture.Format()).Key())
}

// CoordTransform maps local coordinates into a processor's own space.
type CoordTransform struct {
	// Matrix maps local coordinates to texture pixels (for texture
	// transforms) or to gradient space.
	Matrix geom.Matrix

	// Texture, when set, makes TotalMatrix produce normalized texture
	// coordinates in the texture's storage orientation.
	Texture gpu.Texture

	// AlphaStart is the pixel offset of the alpha plane for images that
	// store RGB and alpha side by side.
	AlphaStart geom.Point
}

// TotalMatrix returns the matrix applied to local coordinates in the
// vertex stage.
func (ct CoordTransform) TotalMatrix() geom.Matrix {
	if ct.Texture == nil {
		return ct.Matrix
	}
	return textureNormalize(ct.Texture).Multiply(ct.Matrix)
}

// NormalizedAlphaStart returns AlphaStart in normalized texture units.
func (ct CoordTransform) NormalizedAlphaStart() geom.Point {
	if ct.Texture == nil {
		return ct.AlphaStart
	}
	p := ct.AlphaStart
	p.X /= float64(ct.Texture.Width())
	p.Y /= float64(ct.Texture.Height())
	if ct.Texture.Origin() == gpu.OriginBottomLeft {
		p.Y = -p.Y
	}
	return p
}

// textureNormalize maps texture pixels to [0, 1] storage coordinates.
func textureNormalize(t gpu.Texture) geom.Matrix {
	m := geom.Scale(1/float64(t.Width()), 1/float64(t.Height()))
	if t.Origin() == gpu.OriginBottomLeft {
		m = geom.Matrix{A: 1, E: -1, F: 1}.Multiply(m)
	}
	return m
}

// Fragment is a node of the fragment shading graph.
type Fragment interface {
	ClassID() ClassID
	Children() []Fragment
	Samplers() []Sampler
	CoordTransforms() []CoordTransform

	// writeKey appends the data that changes the generated code.
	writeKey(kb *KeyBuilder)
	// equalData compares the processor's own data, including uniforms.
	equalData(o Fragment) bool
}

// node holds the structure shared by every fragment.
type node struct {
	children   []Fragment
	samplers   []Sampler
	transforms []CoordTransform
}

func (n *node) Children() []Fragment              { return n.children }
func (n *node) Samplers() []Sampler               { return n.samplers }
func (n *node) CoordTransforms() []CoordTransform { return n.transforms }

// ComputeKey writes the program key of fp in pre-order: class id, own key
// data, sampler keys, coordinate transform count, then every child.
func ComputeKey(fp Fragment, kb *KeyBuilder) {
	kb.Write8(uint8(fp.ClassID()))
	fp.writeKey(kb)
	for _, s := range fp.Samplers() {
		s.writeKey(kb)
	}
	kb.Write32(uint32(len(fp.CoordTransforms())))
	kb.Write32(uint32(len(fp.Children())))
	for _, child := range fp.Children() {
		ComputeKey(child, kb)
	}
}

// Equal reports whether a and b are structurally identical: same class,
// same bound textures and sampler state, same coordinate transform
// matrices, same own data and pairwise-equal children in order.
func Equal(a, b Fragment) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ClassID() != b.ClassID() {
		return false
	}
	sa, sb := a.Samplers(), b.Samplers()
	if len(sa) != len(sb) {
		return false
	}
	for i := range sa {
		if !sa[i].same(sb[i]) {
			return false
		}
	}
	ta, tb := a.CoordTransforms(), b.CoordTransforms()
	if len(ta) != len(tb) {
		return false
	}
	for i := range ta {
		if ta[i].Matrix != tb[i].Matrix || ta[i].AlphaStart != tb[i].AlphaStart {
			return false
		}
	}
	if !a.equalData(b) {
		return false
	}
	ca, cb := a.Children(), b.Children()
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if !Equal(ca[i], cb[i]) {
			return false
		}
	}
	return true
}

// EqualLists compares two fragment lists pairwise.
func EqualLists(a, b []Fragment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
