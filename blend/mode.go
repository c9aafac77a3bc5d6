// Package blend describes how a source color is combined with the
// destination.
//
// Every Mode resolves to a Description: either a CoefficientPair that the
// fixed-function blender can evaluate, or a CustomEquation that must run in
// the fragment shader with access to the destination color. The package
// also evaluates every mode on the CPU for reference rendering.
package blend

// Mode is a blend mode. Porter-Duff modes come first, followed by the
// separable and non-separable advanced modes.
type Mode uint8

const (
	Clear Mode = iota
	Src
	Dst
	SrcOver
	DstOver
	SrcIn
	DstIn
	SrcOut
	DstOut
	SrcATop
	DstATop
	Xor
	Plus
	Modulate
	Screen
	Overlay
	Darken
	Lighten
	ColorDodge
	ColorBurn
	HardLight
	SoftLight
	Difference
	Exclusion
	Multiply
	Hue
	Saturation
	Color
	Luminosity
)

// ModeCount is the number of defined modes.
const ModeCount = int(Luminosity) + 1

var modeNames = [...]string{
	"Clear", "Src", "Dst", "SrcOver", "DstOver", "SrcIn", "DstIn", "SrcOut",
	"DstOut", "SrcATop", "DstATop", "Xor", "Plus", "Modulate", "Screen",
	"Overlay", "Darken", "Lighten", "ColorDodge", "ColorBurn", "HardLight",
	"SoftLight", "Difference", "Exclusion", "Multiply", "Hue", "Saturation",
	"Color", "Luminosity",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "Unknown"
}

// Valid reports whether m is a defined mode.
func (m Mode) Valid() bool {
	return int(m) < ModeCount
}

// SkipsTransparentSource reports whether a source with zero alpha leaves the
// destination unchanged under m.
func (m Mode) SkipsTransparentSource() bool {
	switch m {
	case SrcOver, SrcATop, DstOut, DstOver, Plus:
		return true
	}
	return false
}
