package processor

import "github.com/gogpu/gpucanvas/blend"

// XfermodeKind selects which operands of an Xfermode come from children.
type XfermodeKind uint8

const (
	// DstChild blends the input (src) over the child's output (dst).
	DstChild XfermodeKind = iota
	// SrcChild blends the child's output (src) over the input (dst).
	SrcChild
	// TwoChild blends child 0 (src) over child 1 (dst) and modulates the
	// result by the input alpha.
	TwoChild
)

// Xfermode blends its input with the output of its children. Children are
// evaluated with an opaque white input.
type Xfermode struct {
	node
	mode blend.Mode
	kind XfermodeKind
}

// NewXfermodeFromDst returns an Xfermode whose dst is child.
func NewXfermodeFromDst(child Fragment, mode blend.Mode) Fragment {
	if child == nil {
		return nil
	}
	return &Xfermode{node: node{children: []Fragment{child}}, mode: mode, kind: DstChild}
}

// NewXfermodeFromSrc returns an Xfermode whose src is child.
func NewXfermodeFromSrc(child Fragment, mode blend.Mode) Fragment {
	if child == nil {
		return nil
	}
	return &Xfermode{node: node{children: []Fragment{child}}, mode: mode, kind: SrcChild}
}

// NewXfermodeFromTwo blends src over dst with mode. A nil operand is
// replaced by the input color.
func NewXfermodeFromTwo(src, dst Fragment, mode blend.Mode) Fragment {
	switch {
	case src == nil && dst == nil:
		return nil
	case src == nil:
		return NewXfermodeFromDst(dst, mode)
	case dst == nil:
		return NewXfermodeFromSrc(src, mode)
	}
	return &Xfermode{node: node{children: []Fragment{src, dst}}, mode: mode, kind: TwoChild}
}

func (*Xfermode) ClassID() ClassID { return ClassXfermode }

// Mode returns the blend mode.
func (x *Xfermode) Mode() blend.Mode { return x.mode }

// Kind returns the operand arrangement.
func (x *Xfermode) Kind() XfermodeKind { return x.kind }

func (x *Xfermode) writeKey(kb *KeyBuilder) {
	kb.Write8(uint8(x.kind))
	kb.Write8(uint8(x.mode))
}

func (x *Xfermode) equalData(o Fragment) bool {
	that := o.(*Xfermode)
	return x.mode == that.mode && x.kind == that.kind
}

// MulChildByInputAlpha returns a processor that outputs child's color
// scaled by the input alpha.
func MulChildByInputAlpha(child Fragment) Fragment {
	if child == nil {
		return nil
	}
	return NewXfermodeFromDst(child, blend.DstIn)
}

// MulInputByChildAlpha returns a processor that outputs the input scaled by
// the child's alpha, or by its complement when inverted.
func MulInputByChildAlpha(child Fragment, inverted bool) Fragment {
	if child == nil {
		return nil
	}
	mode := blend.SrcIn
	if inverted {
		mode = blend.SrcOut
	}
	return NewXfermodeFromDst(child, mode)
}
