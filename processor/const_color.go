package processor

import "github.com/gogpu/gpucanvas/gpu"

// InputMode selects how ConstColor combines its color with the input.
type InputMode uint8

const (
	// InputIgnore outputs the color unchanged.
	InputIgnore InputMode = iota
	// InputModulateRGBA multiplies the color by the input.
	InputModulateRGBA
	// InputModulateA multiplies the color by the input alpha.
	InputModulateA
)

// ConstColor outputs a constant premultiplied color.
type ConstColor struct {
	node
	color gpu.Color
	mode  InputMode
}

// NewConstColor returns a constant color processor.
func NewConstColor(color gpu.Color, mode InputMode) *ConstColor {
	return &ConstColor{color: color, mode: mode}
}

func (*ConstColor) ClassID() ClassID { return ClassConstColor }

// Color returns the premultiplied constant.
func (c *ConstColor) Color() gpu.Color { return c.color }

// Mode returns the input mode.
func (c *ConstColor) Mode() InputMode { return c.mode }

func (c *ConstColor) writeKey(kb *KeyBuilder) {
	kb.Write8(uint8(c.mode))
}

func (c *ConstColor) equalData(o Fragment) bool {
	that := o.(*ConstColor)
	return c.color == that.color && c.mode == that.mode
}
