package wgpu

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gpucanvas/blend"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/pipeline"
	"github.com/gogpu/gpucanvas/processor"
)

// Shader entry points.
const (
	vertexEntry   = "vs_main"
	fragmentEntry = "fs_main"
)

const white = "vec4<f32>(1.0)"

// generator emits the WGSL module of one pipeline. The code depends only
// on the pipeline key; every value that may differ between pipelines with
// equal keys is read from the uniform block.
type generator struct {
	p      *pipeline.Pipeline
	l      *layout
	body   strings.Builder
	n      int
	modes  map[blend.Mode]bool
	shared map[string]bool
}

// generateWGSL returns the WGSL source of p.
func generateWGSL(p *pipeline.Pipeline, l *layout) string {
	g := &generator{
		p:      p,
		l:      l,
		modes:  make(map[blend.Mode]bool),
		shared: make(map[string]bool),
	}
	return g.module()
}

func (g *generator) tmp(prefix string) string {
	g.n++
	return fmt.Sprintf("%s%d", prefix, g.n)
}

func (g *generator) line(format string, args ...any) {
	g.body.WriteString("    ")
	fmt.Fprintf(&g.body, format, args...)
	g.body.WriteByte('\n')
}

func (g *generator) module() string {
	var sb strings.Builder
	gp := g.p.Geometry()

	fmt.Fprintf(&sb, "struct Uniforms {\n    data: array<vec4<f32>, %d>,\n}\n\n", g.l.numSlots)
	sb.WriteString("@group(0) @binding(0) var<uniform> u: Uniforms;\n")
	for unit := 0; unit < g.l.numUnits; unit++ {
		fmt.Fprintf(&sb, "@group(0) @binding(%d) var tex%d: texture_2d<f32>;\n", textureBinding(unit), unit)
		fmt.Fprintf(&sb, "@group(0) @binding(%d) var smp%d: sampler;\n", samplerBinding(unit), unit)
	}
	sb.WriteString("\n")

	sb.WriteString("struct VertexInput {\n")
	sb.WriteString("    @location(0) position: vec2<f32>,\n")
	sb.WriteString("    @location(1) local: vec2<f32>,\n")
	sb.WriteString("    @location(2) color: vec4<f32>,\n")
	switch geometryKind(gp) {
	case coverageVarying:
		sb.WriteString("    @location(3) coverage: f32,\n")
	case ellipseVarying:
		sb.WriteString("    @location(3) offset: vec2<f32>,\n")
		sb.WriteString("    @location(4) radii: vec2<f32>,\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("struct VertexOutput {\n")
	sb.WriteString("    @builtin(position) position: vec4<f32>,\n")
	sb.WriteString("    @location(0) local: vec2<f32>,\n")
	sb.WriteString("    @location(1) color: vec4<f32>,\n")
	switch geometryKind(gp) {
	case coverageVarying:
		sb.WriteString("    @location(2) coverage: f32,\n")
	case ellipseVarying:
		sb.WriteString("    @location(2) ellipse: vec4<f32>,\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("@vertex\n")
	fmt.Fprintf(&sb, "fn %s(vin: VertexInput) -> VertexOutput {\n", vertexEntry)
	sb.WriteString("    var vout: VertexOutput;\n")
	fmt.Fprintf(&sb, "    let vp = u.data[%d];\n", slotViewport)
	sb.WriteString("    vout.position = vec4<f32>(vin.position.x * vp.x - 1.0, vin.position.y * vp.y + vp.z, 0.0, 1.0);\n")
	sb.WriteString("    vout.local = vin.local;\n")
	sb.WriteString("    vout.color = vin.color;\n")
	switch geometryKind(gp) {
	case coverageVarying:
		sb.WriteString("    vout.coverage = vin.coverage;\n")
	case ellipseVarying:
		sb.WriteString("    vout.ellipse = vec4<f32>(vin.offset, vin.radii);\n")
	}
	sb.WriteString("    return vout;\n}\n\n")

	g.fragmentBody()

	g.writeHelpers(&sb)

	sb.WriteString("@fragment\n")
	fmt.Fprintf(&sb, "fn %s(fin: VertexOutput) -> @location(0) vec4<f32> {\n", fragmentEntry)
	sb.WriteString(g.body.String())
	sb.WriteString("}\n")
	return sb.String()
}

type varyingKind int

const (
	noVarying varyingKind = iota
	coverageVarying
	ellipseVarying
)

func geometryKind(gp processor.Geometry) varyingKind {
	switch gp := gp.(type) {
	case *processor.QuadPerEdgeAA:
		if gp.AA() {
			return coverageVarying
		}
	case *processor.DefaultGeometry:
		if gp.HasCoverage() {
			return coverageVarying
		}
	case *processor.Ellipse:
		return ellipseVarying
	}
	return noVarying
}

func (g *generator) fragmentBody() {
	g.line("let local = fin.local;")
	g.line("let pos = fin.position.xy;")

	color := "fin.color"
	for _, fp := range g.p.Colors() {
		color = g.emit(fp, color)
	}

	var cov string
	switch geometryKind(g.p.Geometry()) {
	case coverageVarying:
		cov = "vec4<f32>(fin.coverage)"
	case ellipseVarying:
		g.shared["ellipse"] = true
		cov = "vec4<f32>(ellipse_coverage(fin.ellipse))"
	default:
		cov = white
	}
	for _, fp := range g.p.Masks() {
		cov = g.emit(fp, cov)
	}
	g.line("let coverage = %s.a;", cov)
	g.line("let src = %s;", swizzleExpr(color, g.p.OutputSwizzle()))

	switch d := g.p.Blend().(type) {
	case blend.CustomEquation:
		g.modes[d.Mode] = true
		dst := "vec4<f32>(0.0)"
		if g.l.dstUnit >= 0 {
			u := g.l.dstUnit
			g.line("let dst_uv = (pos - u.data[%d].xy) * u.data[%d].zw;", slotDst, slotDst)
			format := g.p.DstTexture().Texture.Format()
			g.line("let dst = %s;", swizzleExpr(
				fmt.Sprintf("textureSampleLevel(tex%d, smp%d, dst_uv, 0.0)", u, u), gpu.ReadSwizzle(format)))
			dst = "dst"
		}
		g.line("return mix(%s, %s(src, %s), coverage);", dst, blendFunc(d.Mode), dst)
	default:
		g.line("return src * coverage;")
	}
}

// emit writes the statements of fp and returns the name of its output.
func (g *generator) emit(fp processor.Fragment, in string) string {
	slot := g.l.slots[fp]
	out := g.tmp("c")
	switch fp := fp.(type) {
	case *processor.ConstColor:
		switch fp.Mode() {
		case processor.InputModulateRGBA:
			g.line("let %s = u.data[%d] * %s;", out, slot, in)
		case processor.InputModulateA:
			g.line("let %s = u.data[%d] * %s.a;", out, slot, in)
		default:
			g.line("let %s = u.data[%d];", out, slot)
		}

	case *processor.TextureEffect:
		unit := g.l.units[fp]
		s := fp.Samplers()[0]
		uv := g.tmp("uv")
		g.line("let %s = %s;", uv, matrixExpr(slot, "local"))
		texel := g.sample(unit, s, uv)
		if fp.RGBAAA() {
			a := g.tmp("a")
			g.line("let %s = %s.r;", a, g.sample(unit, s, fmt.Sprintf("%s + u.data[%d].xy", uv, slot+2)))
			texel = fmt.Sprintf("vec4<f32>(%s.rgb * %s, %s)", texel, a, a)
		}
		g.line("let %s = %s * %s;", out, texel, in)

	case *processor.DeviceSpaceTextureEffect:
		unit := g.l.units[fp]
		uv := g.tmp("uv")
		g.line("let %s = %s;", uv, matrixExpr(slot, "pos"))
		texel := swizzleExpr(fmt.Sprintf("textureSampleLevel(tex%d, smp%d, %s, 0.0)", unit, unit, uv),
			gpu.ReadSwizzle(fp.Texture().Format()))
		g.line("let %s = %s * %s;", out, texel, in)

	case *processor.AARectEffect:
		d := g.tmp("d")
		g.line("let %s = clamp(vec4<f32>(pos - u.data[%d].xy, u.data[%d].zw - pos), vec4<f32>(0.0), vec4<f32>(1.0));",
			d, slot, slot)
		g.line("let %s = %s * ((%s.x + %s.z - 1.0) * (%s.y + %s.w - 1.0));", out, in, d, d, d, d)

	case *processor.Xfermode:
		g.modes[fp.Mode()] = true
		f := blendFunc(fp.Mode())
		children := fp.Children()
		switch fp.Kind() {
		case processor.SrcChild:
			c := g.emit(children[0], white)
			g.line("let %s = %s(%s, %s);", out, f, c, in)
		case processor.TwoChild:
			s := g.emit(children[0], white)
			d := g.emit(children[1], white)
			g.line("let %s = %s(%s, %s) * %s.a;", out, f, s, d, in)
		default:
			c := g.emit(children[0], white)
			g.line("let %s = %s(%s, %s);", out, f, in, c)
		}

	case *processor.Series:
		for _, child := range fp.Children() {
			in = g.emit(child, in)
		}
		g.line("let %s = %s;", out, in)

	case *processor.Modulate:
		c := g.emit(fp.Children()[0], white)
		g.line("let %s = %s * %s;", out, c, in)

	case *processor.ColorMatrix:
		g.shared["unpremul"] = true
		up := g.tmp("up")
		m := g.tmp("m")
		g.line("let %s = unpremul(%s);", up, in)
		g.line("let %s = clamp(vec4<f32>(dot(u.data[%d], %s), dot(u.data[%d], %s), dot(u.data[%d], %s), dot(u.data[%d], %s)) + u.data[%d], vec4<f32>(0.0), vec4<f32>(1.0));",
			m, slot, up, slot+1, up, slot+2, up, slot+3, up, slot+4)
		g.line("let %s = vec4<f32>(%s.rgb * %s.a, %s.a);", out, m, m, m)

	case *processor.Gradient:
		p := g.tmp("p")
		t := g.tmp("t")
		gc := g.tmp("g")
		g.line("let %s = %s;", p, matrixExpr(slot, "local"))
		if fp.ClassID() == processor.ClassRadialGradient {
			g.line("let %s = clamp(length(%s), 0.0, 1.0);", t, p)
		} else {
			g.line("let %s = clamp(%s.x, 0.0, 1.0);", t, p)
		}
		n := len(fp.Positions())
		color := func(i int) string { return fmt.Sprintf("u.data[%d]", slot+2+i) }
		position := func(i int) string { return fmt.Sprintf("u.data[%d].x", slot+2+n+i) }
		g.line("var %s = %s;", gc, color(0))
		for i := 1; i < n; i++ {
			g.line("if (%s > %s) {", t, position(i-1))
			g.line("    let span = %s - %s;", position(i), position(i-1))
			g.line("    let f = clamp((%s - %s) / max(span, 1e-6), 0.0, 1.0);", t, position(i-1))
			g.line("    %s = select(mix(%s, %s, f), %s, span <= 0.0);", gc, color(i-1), color(i), color(i))
			g.line("}")
		}
		g.line("let %s = vec4<f32>(%s.rgb * %s.a, %s.a) * %s.a;", out, gc, gc, gc, in)

	default:
		g.line("let %s = %s;", out, in)
	}
	return out
}

// sample returns a texture read of unit at uv with the read swizzle of its
// format. Border addressing is resolved in the shader.
func (g *generator) sample(unit int, s processor.Sampler, uv string) string {
	var call string
	if s.State.Mipmap == gpu.MipmapNone {
		call = fmt.Sprintf("textureSampleLevel(tex%d, smp%d, %s, 0.0)", unit, unit, uv)
	} else {
		call = fmt.Sprintf("textureSample(tex%d, smp%d, %s)", unit, unit, uv)
	}
	texel := swizzleExpr(call, gpu.ReadSwizzle(s.Texture.Format()))
	if s.State.WrapX != gpu.WrapClampToBorder && s.State.WrapY != gpu.WrapClampToBorder {
		return texel
	}
	v := g.tmp("s")
	g.line("let %s = %s;", v, texel)
	var conds []string
	if s.State.WrapX == gpu.WrapClampToBorder {
		conds = append(conds, fmt.Sprintf("(%s).x >= 0.0 && (%s).x <= 1.0", uv, uv))
	}
	if s.State.WrapY == gpu.WrapClampToBorder {
		conds = append(conds, fmt.Sprintf("(%s).y >= 0.0 && (%s).y <= 1.0", uv, uv))
	}
	return fmt.Sprintf("select(vec4<f32>(0.0), %s, %s)", v, strings.Join(conds, " && "))
}

// matrixExpr applies the 2x3 matrix stored at slot and slot+1 to p.
func matrixExpr(slot int, p string) string {
	return fmt.Sprintf("vec2<f32>(dot(u.data[%d].xyz, vec3<f32>(%s, 1.0)), dot(u.data[%d].xyz, vec3<f32>(%s, 1.0)))",
		slot, p, slot+1, p)
}

func swizzleExpr(v string, s gpu.Swizzle) string {
	if s.IsIdentity() {
		return v
	}
	plain := true
	for _, c := range s {
		if !strings.ContainsRune("rgba", rune(c)) {
			plain = false
		}
	}
	if plain {
		return fmt.Sprintf("(%s).%s", v, s.String())
	}
	parts := make([]string, 4)
	for i, c := range s {
		switch c {
		case '0':
			parts[i] = "0.0"
		case '1':
			parts[i] = "1.0"
		default:
			parts[i] = fmt.Sprintf("(%s).%c", v, c)
		}
	}
	return "vec4<f32>(" + strings.Join(parts, ", ") + ")"
}

func blendFunc(m blend.Mode) string {
	return "blend_" + strings.ToLower(m.String())
}

func (g *generator) writeHelpers(sb *strings.Builder) {
	modes := make([]blend.Mode, 0, len(g.modes))
	for m := range g.modes {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })

	for _, m := range modes {
		switch m {
		case blend.Overlay, blend.HardLight:
			g.shared["hard_light"] = true
		case blend.ColorDodge:
			g.shared["color_dodge"] = true
		case blend.ColorBurn:
			g.shared["color_burn"] = true
		case blend.SoftLight:
			g.shared["soft_light"] = true
		case blend.Hue, blend.Saturation, blend.Color, blend.Luminosity:
			g.shared["nonseparable"] = true
		}
	}
	for _, name := range []string{"unpremul", "ellipse", "hard_light", "color_dodge", "color_burn", "soft_light", "nonseparable"} {
		if g.shared[name] {
			sb.WriteString(sharedHelpers[name])
			sb.WriteString("\n")
		}
	}
	for _, m := range modes {
		sb.WriteString(blendHelper(m))
		sb.WriteString("\n")
	}
}

// blendHelper returns a WGSL function blending premultiplied s over d.
func blendHelper(m blend.Mode) string {
	name := blendFunc(m)
	if c, ok := blend.AsCoeff(m); ok {
		return fmt.Sprintf("fn %s(s: vec4<f32>, d: vec4<f32>) -> vec4<f32> {\n"+
			"    return clamp(s * %s + d * %s, vec4<f32>(0.0), vec4<f32>(1.0));\n}\n",
			name, factorExpr(c.Src), factorExpr(c.Dst))
	}
	switch m {
	case blend.Hue, blend.Saturation, blend.Color, blend.Luminosity:
		var c string
		switch m {
		case blend.Hue:
			c = "set_lum(set_sat(sda, dsa), s.a * d.a, dsa)"
		case blend.Saturation:
			c = "set_lum(set_sat(dsa, sda), s.a * d.a, dsa)"
		case blend.Color:
			c = "set_lum(sda, s.a * d.a, dsa)"
		default:
			c = "set_lum(dsa, s.a * d.a, sda)"
		}
		return fmt.Sprintf("fn %s(s: vec4<f32>, d: vec4<f32>) -> vec4<f32> {\n"+
			"    let sda = s.rgb * d.a;\n"+
			"    let dsa = d.rgb * s.a;\n"+
			"    let c = %s + (1.0 - s.a) * d.rgb + (1.0 - d.a) * s.rgb;\n"+
			"    return clamp(vec4<f32>(c, s.a + (1.0 - s.a) * d.a), vec4<f32>(0.0), vec4<f32>(1.0));\n}\n",
			name, c)
	}
	channel := name + "_channel"
	return fmt.Sprintf("fn %s(s: f32, d: f32, sa: f32, da: f32) -> f32 {\n    %s\n}\n\n", channel, separableBody(m)) +
		fmt.Sprintf("fn %s(s: vec4<f32>, d: vec4<f32>) -> vec4<f32> {\n"+
			"    let c = vec4<f32>(%s(s.r, d.r, s.a, d.a), %s(s.g, d.g, s.a, d.a), %s(s.b, d.b, s.a, d.a), s.a + (1.0 - s.a) * d.a);\n"+
			"    return clamp(c, vec4<f32>(0.0), vec4<f32>(1.0));\n}\n",
			name, channel, channel, channel)
}

func separableBody(m blend.Mode) string {
	switch m {
	case blend.Overlay:
		return "return hard_light(d, s, da, sa);"
	case blend.HardLight:
		return "return hard_light(s, d, sa, da);"
	case blend.Darken:
		return "return min((1.0 - sa) * d + s, (1.0 - da) * s + d);"
	case blend.Lighten:
		return "return max((1.0 - sa) * d + s, (1.0 - da) * s + d);"
	case blend.ColorDodge:
		return "return color_dodge(s, d, sa, da);"
	case blend.ColorBurn:
		return "return color_burn(s, d, sa, da);"
	case blend.SoftLight:
		return "return soft_light(s, d, sa, da);"
	case blend.Difference:
		return "return s + d - 2.0 * min(s * da, d * sa);"
	case blend.Exclusion:
		return "return d + s - 2.0 * d * s;"
	case blend.Multiply:
		return "return (1.0 - sa) * d + (1.0 - da) * s + s * d;"
	}
	return "return s;"
}

func factorExpr(f gputypes.BlendFactor) string {
	switch f {
	case gputypes.BlendFactorOne:
		return "vec4<f32>(1.0)"
	case gputypes.BlendFactorSrc:
		return "s"
	case gputypes.BlendFactorOneMinusSrc:
		return "(vec4<f32>(1.0) - s)"
	case gputypes.BlendFactorSrcAlpha:
		return "vec4<f32>(s.a)"
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return "vec4<f32>(1.0 - s.a)"
	case gputypes.BlendFactorDstAlpha:
		return "vec4<f32>(d.a)"
	case gputypes.BlendFactorOneMinusDstAlpha:
		return "vec4<f32>(1.0 - d.a)"
	}
	return "vec4<f32>(0.0)"
}

var sharedHelpers = map[string]string{
	"unpremul": `fn unpremul(c: vec4<f32>) -> vec4<f32> {
    if (c.a <= 0.0) {
        return vec4<f32>(0.0);
    }
    return vec4<f32>(c.rgb / c.a, c.a);
}
`,
	"ellipse": `fn ellipse_coverage(e: vec4<f32>) -> f32 {
    let p = e.xy * e.zw;
    let test = dot(p, p) - 1.0;
    let grad = 2.0 * p * e.zw;
    let len2 = max(dot(grad, grad), 1e-4);
    return clamp(0.5 - test * inverseSqrt(len2), 0.0, 1.0);
}
`,
	"hard_light": `fn hard_light(s: f32, d: f32, sa: f32, da: f32) -> f32 {
    var v: f32;
    if (2.0 * s <= sa) {
        v = 2.0 * s * d;
    } else {
        v = sa * da - 2.0 * (da - d) * (sa - s);
    }
    return v + s * (1.0 - da) + d * (1.0 - sa);
}
`,
	"color_dodge": `fn color_dodge(s: f32, d: f32, sa: f32, da: f32) -> f32 {
    if (d == 0.0) {
        return s * (1.0 - da);
    }
    let x = sa - s;
    if (x == 0.0) {
        return sa * da + s * (1.0 - da) + d * (1.0 - sa);
    }
    let y = min(da, d * sa / x);
    return y * sa + s * (1.0 - da) + d * (1.0 - sa);
}
`,
	"color_burn": `fn color_burn(s: f32, d: f32, sa: f32, da: f32) -> f32 {
    if (da == d) {
        return sa * da + s * (1.0 - da) + d * (1.0 - sa);
    }
    if (s == 0.0) {
        return d * (1.0 - sa);
    }
    let x = max(0.0, da - (da - d) * sa / s);
    return sa * x + s * (1.0 - da) + d * (1.0 - sa);
}
`,
	"soft_light": `fn soft_light(s: f32, d: f32, sa: f32, da: f32) -> f32 {
    if (da == 0.0) {
        return s;
    }
    if (2.0 * s <= sa) {
        return d * d * (sa - 2.0 * s) / da + (1.0 - da) * s + d * (-sa + 2.0 * s + 1.0);
    }
    if (4.0 * d <= da) {
        let d2 = d * d;
        let d3 = d2 * d;
        let da2 = da * da;
        let da3 = da2 * da;
        return (da2 * (s - d * (3.0 * sa - 6.0 * s - 1.0)) + 12.0 * da * d2 * (sa - 2.0 * s) - 16.0 * d3 * (sa - 2.0 * s) - da3 * s) / da2;
    }
    return d * (sa - 2.0 * s + 1.0) + s - sqrt(da * d) * (sa - 2.0 * s) - da * s;
}
`,
	"nonseparable": `fn lum(c: vec3<f32>) -> f32 {
    return dot(c, vec3<f32>(0.3, 0.59, 0.11));
}

fn set_lum(hue_sat: vec3<f32>, alpha: f32, lum_color: vec3<f32>) -> vec3<f32> {
    let diff = lum(lum_color) - lum(hue_sat);
    var res = hue_sat + vec3<f32>(diff);
    let res_lum = lum(res);
    let min_comp = min(min(res.r, res.g), res.b);
    let max_comp = max(max(res.r, res.g), res.b);
    if (min_comp < 0.0 && res_lum != min_comp) {
        res = vec3<f32>(res_lum) + (res - vec3<f32>(res_lum)) * res_lum / (res_lum - min_comp);
    }
    if (max_comp > alpha && max_comp != res_lum) {
        res = vec3<f32>(res_lum) + (res - vec3<f32>(res_lum)) * (alpha - res_lum) / (max_comp - res_lum);
    }
    return res;
}

fn set_sat_sorted(min_mid_max: vec3<f32>, sat: f32) -> vec3<f32> {
    if (min_mid_max.x < min_mid_max.z) {
        let span = min_mid_max.yz - vec2<f32>(min_mid_max.x);
        return vec3<f32>(0.0, span * sat / span.y);
    }
    return vec3<f32>(0.0);
}

fn set_sat(hue_lum: vec3<f32>, sat_color: vec3<f32>) -> vec3<f32> {
    let sat = max(max(sat_color.r, sat_color.g), sat_color.b) - min(min(sat_color.r, sat_color.g), sat_color.b);
    let c = hue_lum;
    if (c.r <= c.g) {
        if (c.g <= c.b) {
            return set_sat_sorted(c.rgb, sat);
        }
        if (c.r <= c.b) {
            return set_sat_sorted(c.rbg, sat).rbg;
        }
        return set_sat_sorted(c.brg, sat).gbr;
    }
    if (c.r <= c.b) {
        return set_sat_sorted(c.grb, sat).grb;
    }
    if (c.g <= c.b) {
        return set_sat_sorted(c.gbr, sat).brg;
    }
    return set_sat_sorted(c.bgr, sat).bgr;
}
`,
}
