package processor

// Iter walks a forest of fragments in pre-order: each root, then its
// children depth-first, before the next root. This order assigns texture
// units and coordinate transform slots.
type Iter struct {
	stack []Fragment
}

// NewIter returns an iterator over roots.
func NewIter(roots ...Fragment) *Iter {
	it := &Iter{stack: make([]Fragment, 0, len(roots))}
	for i := len(roots) - 1; i >= 0; i-- {
		if roots[i] != nil {
			it.stack = append(it.stack, roots[i])
		}
	}
	return it
}

// Next returns the next fragment, or nil when done.
func (it *Iter) Next() Fragment {
	if len(it.stack) == 0 {
		return nil
	}
	back := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]
	children := back.Children()
	for i := len(children) - 1; i >= 0; i-- {
		it.stack = append(it.stack, children[i])
	}
	return back
}

// CoordTransformIter yields every coordinate transform of a forest in the
// same order as Iter.
type CoordTransformIter struct {
	fps   *Iter
	cur   Fragment
	index int
}

// NewCoordTransformIter returns an iterator over the transforms of roots.
func NewCoordTransformIter(roots ...Fragment) *CoordTransformIter {
	it := &CoordTransformIter{fps: NewIter(roots...)}
	it.cur = it.fps.Next()
	return it
}

// Next returns the next transform and true, or false when done.
func (it *CoordTransformIter) Next() (CoordTransform, bool) {
	for it.cur != nil {
		transforms := it.cur.CoordTransforms()
		if it.index < len(transforms) {
			ct := transforms[it.index]
			it.index++
			return ct, true
		}
		it.index = 0
		it.cur = it.fps.Next()
	}
	return CoordTransform{}, false
}

// Samplers returns every sampler of roots in Iter order; the slice index is
// the texture unit.
func Samplers(roots ...Fragment) []Sampler {
	var out []Sampler
	it := NewIter(roots...)
	for fp := it.Next(); fp != nil; fp = it.Next() {
		out = append(out, fp.Samplers()...)
	}
	return out
}
