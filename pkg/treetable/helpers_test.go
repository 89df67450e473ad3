package treetable

import (
	"strings"
	"testing"
)

// item is a test business object; kids feed the builder.
type item struct {
	name      string
	kids      []*item
	synthetic bool
	deleted   bool
}

func (i *item) IsSynthetic() bool { return i.synthetic }

func (i *item) String() string { return i.name }

func it(name string, kids ...*item) *item {
	return &item{name: name, kids: kids}
}

func group(name string, kids ...*item) *item {
	return &item{name: name, kids: kids, synthetic: true}
}

func itemBuilder(finite bool) Builder {
	return NewBuilder(func(p *Node) []any {
		src, ok := p.Object().(*item)
		if !ok {
			return nil
		}
		out := make([]any, len(src.kids))
		for i, k := range src.kids {
			out[i] = k
		}
		return out
	}, finite)
}

func newItemModel(root *item, opts ...Option) *Model {
	return New(itemBuilder(true), root, opts...)
}

func nameOf(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	if i, ok := n.Object().(*item); ok {
		return i.name
	}
	return "?"
}

func names(nodes []*Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = nameOf(n)
	}
	return strings.Join(parts, " ")
}

// find returns the materialized node with the given name.
func find(m *Model, name string) *Node {
	var walk func(n *Node) *Node
	walk = func(n *Node) *Node {
		if nameOf(n) == name {
			return n
		}
		for _, c := range n.children {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(m.Root())
}

func mustFind(t *testing.T, m *Model, name string) *Node {
	t.Helper()
	n := find(m, name)
	if n == nil {
		t.Fatalf("node %q not materialized", name)
	}
	return n
}

func checkModel(t *testing.T, m *Model) {
	t.Helper()
	if err := m.CheckInvariants(); err != nil {
		t.Fatalf("invariants violated: %+v", err)
	}
}

func acceptNames(ns ...string) Filter {
	set := make(map[string]bool, len(ns))
	for _, n := range ns {
		set[n] = true
	}
	return FilterFunc(func(obj any) bool {
		i, ok := obj.(*item)
		return ok && set[i.name]
	})
}

func byName(a, b any) int {
	return strings.Compare(a.(*item).name, b.(*item).name)
}

type eventLog struct {
	tree []TreeEvent
	rows []RowEvent
}

func record(m *Model) *eventLog {
	l := &eventLog{}
	m.AddTreeListener(func(ev TreeEvent) { l.tree = append(l.tree, ev) })
	m.AddRowListener(func(ev RowEvent) { l.rows = append(l.rows, ev) })
	return l
}

func (l *eventLog) treeKinds() string {
	parts := make([]string, len(l.tree))
	for i, ev := range l.tree {
		parts[i] = ev.Kind.String() + ":" + nameOf(ev.Node)
	}
	return strings.Join(parts, " ")
}
