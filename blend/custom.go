package blend

import (
	"math"

	"github.com/gogpu/gpucanvas/gpu"
)

// applyCustom evaluates an advanced mode on premultiplied colors. Alpha is
// always src-over.
func applyCustom(m Mode, s, d gpu.Color) gpu.Color {
	out := gpu.Color{A: s.A + (1-s.A)*d.A}
	sc := [3]float32{s.R, s.G, s.B}
	dc := [3]float32{d.R, d.G, d.B}
	var rgb [3]float32

	switch m {
	case Hue, Saturation, Color, Luminosity:
		rgb = nonSeparable(m, sc, dc, s.A, d.A)
	default:
		for i := range 3 {
			rgb[i] = separable(m, sc[i], dc[i], s.A, d.A)
		}
	}
	out.R, out.G, out.B = rgb[0], rgb[1], rgb[2]
	return out.Clamp()
}

func separable(m Mode, s, d, sa, da float32) float32 {
	switch m {
	case Overlay:
		return hardLight(d, s, da, sa)
	case HardLight:
		return hardLight(s, d, sa, da)
	case Darken:
		return min((1-sa)*d+s, (1-da)*s+d)
	case Lighten:
		return max((1-sa)*d+s, (1-da)*s+d)
	case ColorDodge:
		return colorDodge(s, d, sa, da)
	case ColorBurn:
		return colorBurn(s, d, sa, da)
	case SoftLight:
		return softLight(s, d, sa, da)
	case Difference:
		return s + d - 2*min(s*da, d*sa)
	case Exclusion:
		return d + s - 2*d*s
	case Multiply:
		return (1-sa)*d + (1-da)*s + s*d
	}
	return s
}

func hardLight(s, d, sa, da float32) float32 {
	var v float32
	if 2*s <= sa {
		v = 2 * s * d
	} else {
		v = sa*da - 2*(da-d)*(sa-s)
	}
	return v + s*(1-da) + d*(1-sa)
}

func colorDodge(s, d, sa, da float32) float32 {
	if d == 0 {
		return s * (1 - da)
	}
	x := sa - s
	if x == 0 {
		return sa*da + s*(1-da) + d*(1-sa)
	}
	x = min(da, d*sa/x)
	return x*sa + s*(1-da) + d*(1-sa)
}

func colorBurn(s, d, sa, da float32) float32 {
	if da == d {
		return sa*da + s*(1-da) + d*(1-sa)
	}
	if s == 0 {
		return d * (1 - sa)
	}
	x := max(0, da-(da-d)*sa/s)
	return sa*x + s*(1-da) + d*(1-sa)
}

func softLight(s, d, sa, da float32) float32 {
	if da == 0 {
		return s
	}
	switch {
	case 2*s <= sa:
		return d*d*(sa-2*s)/da + (1-da)*s + d*(-sa+2*s+1)
	case 4*d <= da:
		dSqd := d * d
		dCub := dSqd * d
		daSqd := da * da
		daCub := daSqd * da
		return (daSqd*(s-d*(3*sa-6*s-1)) + 12*da*dSqd*(sa-2*s) - 16*dCub*(sa-2*s) - daCub*s) / daSqd
	default:
		return d*(sa-2*s+1) + s - float32(math.Sqrt(float64(da*d)))*(sa-2*s) - da*s
	}
}

func nonSeparable(m Mode, s, d [3]float32, sa, da float32) [3]float32 {
	sda := scale3(s, da)
	dsa := scale3(d, sa)
	alpha := sa * da

	var c [3]float32
	switch m {
	case Hue:
		c = setLuminance(setSaturation(sda, dsa), alpha, dsa)
	case Saturation:
		c = setLuminance(setSaturation(dsa, sda), alpha, dsa)
	case Color:
		c = setLuminance(sda, alpha, dsa)
	case Luminosity:
		c = setLuminance(dsa, alpha, sda)
	}
	for i := range 3 {
		c[i] += (1-sa)*d[i] + (1-da)*s[i]
	}
	return c
}

func luminance(c [3]float32) float32 {
	return 0.3*c[0] + 0.59*c[1] + 0.11*c[2]
}

func saturation(c [3]float32) float32 {
	return max(c[0], c[1], c[2]) - min(c[0], c[1], c[2])
}

// setLuminance moves hueSat to the luminance of lumColor, then pulls
// out-of-gamut channels back into [0, alpha].
func setLuminance(hueSat [3]float32, alpha float32, lumColor [3]float32) [3]float32 {
	diff := luminance(lumColor) - luminance(hueSat)
	out := [3]float32{hueSat[0] + diff, hueSat[1] + diff, hueSat[2] + diff}
	outLum := luminance(out)
	minComp := min(out[0], out[1], out[2])
	maxComp := max(out[0], out[1], out[2])
	if minComp < 0 && outLum != minComp {
		for i := range out {
			out[i] = outLum + (out[i]-outLum)*outLum/(outLum-minComp)
		}
	}
	if maxComp > alpha && maxComp != outLum {
		for i := range out {
			out[i] = outLum + (out[i]-outLum)*(alpha-outLum)/(maxComp-outLum)
		}
	}
	return out
}

// setSaturation gives hueLum the saturation of satColor, keeping the
// channel order of hueLum.
func setSaturation(hueLum, satColor [3]float32) [3]float32 {
	sat := saturation(satColor)
	lo, mid, hi := order3(hueLum)
	var out [3]float32
	if hueLum[hi] > hueLum[lo] {
		out[mid] = sat * (hueLum[mid] - hueLum[lo]) / (hueLum[hi] - hueLum[lo])
		out[hi] = sat
	}
	return out
}

// order3 returns the indices of the smallest, middle and largest channel.
func order3(c [3]float32) (lo, mid, hi int) {
	lo, mid, hi = 0, 1, 2
	if c[lo] > c[mid] {
		lo, mid = mid, lo
	}
	if c[mid] > c[hi] {
		mid, hi = hi, mid
	}
	if c[lo] > c[mid] {
		lo, mid = mid, lo
	}
	return lo, mid, hi
}

func scale3(c [3]float32, s float32) [3]float32 {
	return [3]float32{c[0] * s, c[1] * s, c[2] * s}
}
