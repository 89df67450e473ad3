package treetable

import (
	"github.com/cockroachdb/errors"
)

// Node is a position in the hierarchy. Children are owned by their parent;
// the parent pointer is a plain back-reference.
//
// A node's children are created lazily by the model's Builder the first
// time they are needed (expansion, traversal, filtering of a finite tree or
// an explicit structural edit).
type Node struct {
	model    *Model
	parent   *Node
	children []*Node
	object   any
	id       uint64

	expanded    bool
	synthetic   bool
	initialized bool

	// match is true when the filter accepts the node itself.
	match bool
	// matchCount counts matching nodes in the materialized subtree, self included.
	matchCount int
	// visible is true when the node passes the filter policy under its
	// parent, independent of expansion.
	visible bool
	// size is the number of rows the node occupies together with its
	// displayed descendants, maintained as if the node itself were displayed.
	size int
}

// ID returns an identifier unique within the node's model.
func (n *Node) ID() uint64 { return n.id }

// Object returns the business object attached to the node.
func (n *Node) Object() any { return n.object }

// Model returns the owning model, or nil once the node has been removed.
func (n *Node) Model() *Model { return n.model }

// Parent returns the parent node; nil for the root and removed nodes.
func (n *Node) Parent() *Node { return n.parent }

// IsSynthetic reports whether the node is grouping structure.
func (n *Node) IsSynthetic() bool { return n.synthetic }

// IsRoot reports whether n is the root of its model.
func (n *Node) IsRoot() bool { return n.model != nil && n.model.root == n }

// Depth returns the number of ancestors, 0 for the root.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Path returns the nodes from the root down to n. It is computed on every
// call, so a removed node only resolves up to its former subtree root.
func (n *Node) Path() []*Node {
	var path []*Node
	for x := n; x != nil; x = x.parent {
		path = append(path, x)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// IndexInParent returns the structural index of n, or -1 for the root.
func (n *Node) IndexInParent() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	assertf("node %d missing from its parent's child list", n.id)
	return -1
}

// Children returns a copy of the structural child list, materializing it
// through the Builder if needed.
func (n *Node) Children() []*Node {
	n.ensureChildren()
	return append([]*Node(nil), n.children...)
}

// IsLoaded reports whether the Builder has been asked for n's children.
func (n *Node) IsLoaded() bool { return n.initialized }

// LoadedChildren returns a copy of the children materialized so far without
// consulting the Builder.
func (n *Node) LoadedChildren() []*Node {
	return append([]*Node(nil), n.children...)
}

// ChildCount returns the number of children, materializing them if needed.
func (n *Node) ChildCount() int {
	n.ensureChildren()
	return len(n.children)
}

// ChildAt returns the child at structural index i, or nil if out of range.
func (n *Node) ChildAt(i int) *Node {
	n.ensureChildren()
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n.ChildCount() == 0
}

// Matches reports whether the node itself passes the filter. Nodes shown
// only as context for a matching descendant or ancestor do not.
func (n *Node) Matches() bool { return n.match }

// IsExpanded returns the node's own expansion flag.
func (n *Node) IsExpanded() bool { return n.expanded }

// SetExpanded expands or collapses the node and reports whether the state
// changed. Setting the current value is a no-op and fires no events.
// Descendant flags are kept when collapsing.
func (n *Node) SetExpanded(expanded bool) bool {
	if n.model == nil {
		return false
	}
	return n.model.setExpanded(n, expanded)
}

// IsDisplayed reports whether the node currently occupies a row.
func (n *Node) IsDisplayed() bool {
	return n.model != nil && n.model.isDisplayed(n)
}

// SetObject replaces the business object and re-applies filter and order
// to the node.
func (n *Node) SetObject(obj any) {
	n.object = obj
	if n.model != nil {
		n.model.Update(n)
	}
}

// CreateChild inserts a new child holding obj at pos.
func (n *Node) CreateChild(pos Position, obj any) (*Node, error) {
	nodes, err := n.CreateChildren(pos, []any{obj})
	if err != nil {
		return nil, err
	}
	return nodes[0], nil
}

// CreateSyntheticChild inserts a new synthetic child holding obj at pos.
func (n *Node) CreateSyntheticChild(pos Position, obj any) (*Node, error) {
	if n.model == nil {
		return nil, errors.WithStack(ErrRemovedNode)
	}
	nodes, err := n.model.insert(n, pos, []any{obj}, true)
	if err != nil {
		return nil, err
	}
	return nodes[0], nil
}

// CreateChildren inserts new children holding objs, in order, at pos.
func (n *Node) CreateChildren(pos Position, objs []any) ([]*Node, error) {
	if n.model == nil {
		return nil, errors.WithStack(ErrRemovedNode)
	}
	return n.model.insert(n, pos, objs, false)
}

// RemoveChild removes the child at structural index i together with its
// subtree and returns it. The removed nodes are detached from the model.
func (n *Node) RemoveChild(i int) (*Node, error) {
	if n.model == nil {
		return nil, errors.WithStack(ErrRemovedNode)
	}
	return n.model.removeChild(n, i)
}

// Remove detaches n from its parent.
func (n *Node) Remove() error {
	if n.model == nil {
		return errors.WithStack(ErrRemovedNode)
	}
	if n.parent == nil {
		return errors.WithStack(ErrRootMove)
	}
	_, err := n.model.removeChild(n.parent, n.IndexInParent())
	return err
}

// ClearChildren removes every child.
func (n *Node) ClearChildren() {
	if n.model == nil {
		return
	}
	n.model.clearChildren(n)
}

// MoveTo re-parents n below newParent at pos, keeping its subtree and
// expansion state. The position is resolved against newParent's child list
// with n already taken out. On error the tree is left unmodified.
func (n *Node) MoveTo(newParent *Node, pos Position) error {
	if n.model == nil {
		return errors.WithStack(ErrRemovedNode)
	}
	return n.model.move(n, newParent, pos)
}

// SortChildren reorders the structural child list with cmp. The model's
// comparator, when set, still governs display order.
func (n *Node) SortChildren(cmp func(a, b any) int) {
	if n.model == nil {
		return
	}
	n.model.sortChildren(n, cmp)
}

func (n *Node) ensureChildren() {
	if n.initialized || n.model == nil {
		return
	}
	n.model.load(n)
}

func (n *Node) effectiveExpanded() bool {
	return n.expanded || (n.model != nil && n == n.model.root && !n.model.rootVisible)
}
