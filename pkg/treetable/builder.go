package treetable

// Builder supplies the children of a node on first access.
//
// CreateChildList is called at most once per node, with the node's business
// object available through parent.Object(). It must not mutate the model.
// IsFinite reports whether the whole hierarchy can be enumerated; infinite
// hierarchies are never materialized eagerly.
type Builder interface {
	CreateChildList(parent *Node) []any
	IsFinite() bool
}

// SyntheticMarker is implemented by business objects that represent
// grouping structure rather than domain content. Nodes holding such objects
// are synthetic: the filter never applies to them and they are displayed
// only while at least one of their children is.
type SyntheticMarker interface {
	IsSynthetic() bool
}

type funcBuilder struct {
	fn     func(parent *Node) []any
	finite bool
}

func (b funcBuilder) CreateChildList(parent *Node) []any {
	if b.fn == nil {
		return nil
	}
	return b.fn(parent)
}

func (b funcBuilder) IsFinite() bool { return b.finite }

// NewBuilder adapts fn to the Builder interface.
func NewBuilder(fn func(parent *Node) []any, finite bool) Builder {
	return funcBuilder{fn: fn, finite: finite}
}

// EmptyBuilder returns a finite Builder that never supplies children; the
// tree is then built only through CreateChild and friends.
func EmptyBuilder() Builder {
	return funcBuilder{finite: true}
}

func isSyntheticObject(obj any) bool {
	if s, ok := obj.(SyntheticMarker); ok {
		return s.IsSynthetic()
	}
	return false
}
