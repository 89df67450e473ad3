package loader

import "github.com/vanderheijden86/treegrid/pkg/treetable"

// ItemBuilder serves the children of in-memory items. It is finite.
type ItemBuilder struct{}

// CreateChildList returns the children of the node's *Item.
func (ItemBuilder) CreateChildList(parent *treetable.Node) []any {
	it, ok := parent.Object().(*Item)
	if !ok || it == nil {
		return nil
	}
	out := make([]any, len(it.Children))
	for i, c := range it.Children {
		out[i] = c
	}
	return out
}

// IsFinite reports true: in-memory outlines can always be enumerated.
func (ItemBuilder) IsFinite() bool { return true }

// ItemOf returns the *Item held by a node, or nil.
func ItemOf(n *treetable.Node) *Item {
	if n == nil {
		return nil
	}
	it, _ := n.Object().(*Item)
	return it
}
