package treetable

import (
	"github.com/cockroachdb/errors"
	"github.com/vanderheijden86/treegrid/pkg/metrics"
)

func (m *Model) setExpanded(n *Node, expanded bool) bool {
	if n.expanded == expanded {
		return false
	}
	defer metrics.Timer(metrics.Expand)()
	m.begin()
	defer m.end()

	before, after := BeforeCollapse, AfterCollapse
	if expanded {
		before, after = BeforeExpand, AfterExpand
	}
	m.queueTree(before, n, n.parent, -1)
	if expanded {
		m.load(n)
	}
	displayed := m.isDisplayed(n)
	n.expanded = expanded
	recs := m.settle(n)
	if !m.applySettle(recs) && displayed {
		row := m.scan(n)
		if expanded {
			m.insertRows(row+1, m.appendChildBlock(nil, n))
		} else {
			m.deleteRows(row+1, recs[0].oldSize-1)
		}
	}
	m.queueTree(after, n, n.parent, -1)
	return true
}

// ExpandAll expands n and every descendant with children. It fails with
// ErrInfiniteHierarchy, leaving the tree untouched, when the Builder is not
// finite.
func (m *Model) ExpandAll(n *Node) error {
	if n == nil || n.model != m {
		return errors.WithStack(ErrRemovedNode)
	}
	if !m.builder.IsFinite() {
		return errors.Wrapf(ErrInfiniteHierarchy, "expand all from node %d", n.id)
	}
	m.begin()
	defer m.end()
	var walk func(x *Node)
	walk = func(x *Node) {
		m.load(x)
		if len(x.children) == 0 {
			return
		}
		m.setExpanded(x, true)
		for _, c := range x.children {
			walk(c)
		}
	}
	walk(n)
	return nil
}

// CollapseAll collapses n and every materialized descendant.
func (m *Model) CollapseAll(n *Node) {
	if n == nil || n.model != m {
		return
	}
	m.begin()
	defer m.end()
	var walk func(x *Node)
	walk = func(x *Node) {
		m.setExpanded(x, false)
		for _, c := range x.children {
			walk(c)
		}
	}
	walk(n)
}

// ExpandPath expands every ancestor of n so that n is displayed whenever it
// passes the filter policy.
func (m *Model) ExpandPath(n *Node) {
	if n == nil || n.model != m {
		return
	}
	m.begin()
	defer m.end()
	path := n.Path()
	for _, a := range path[:len(path)-1] {
		m.setExpanded(a, true)
	}
}
