package processor

// Series runs its children one after another, feeding each child's output
// to the next as input.
type Series struct {
	node
}

// RunInSeries chains list. Nil entries are skipped; a single processor is
// returned unwrapped.
func RunInSeries(list ...Fragment) Fragment {
	children := make([]Fragment, 0, len(list))
	for _, fp := range list {
		if fp != nil {
			children = append(children, fp)
		}
	}
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children[0]
	}
	return &Series{node: node{children: children}}
}

func (*Series) ClassID() ClassID { return ClassSeries }

func (*Series) writeKey(*KeyBuilder) {}

func (*Series) equalData(Fragment) bool { return true }

// Modulate outputs its child's color (evaluated on opaque white)
// multiplied by the input.
type Modulate struct {
	node
}

// NewModulate returns a Modulate over child.
func NewModulate(child Fragment) Fragment {
	if child == nil {
		return nil
	}
	return &Modulate{node: node{children: []Fragment{child}}}
}

func (*Modulate) ClassID() ClassID { return ClassModulate }

func (*Modulate) writeKey(*KeyBuilder) {}

func (*Modulate) equalData(Fragment) bool { return true }
