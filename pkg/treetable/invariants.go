package treetable

import (
	"github.com/cockroachdb/errors"
)

// CheckInvariants re-derives match counts, visibility, subtree sizes and the
// row table from scratch and compares them with the cached state. Any
// difference is a bug in the projection and is reported as an assertion
// failure.
func (m *Model) CheckInvariants() error {
	if _, _, _, err := m.audit(m.root, false); err != nil {
		return err
	}
	want := m.rebuildRows()
	if len(want) != len(m.rows) {
		return errors.AssertionFailedf("row table has %d rows, expected %d", len(m.rows), len(want))
	}
	for i := range want {
		if want[i] != m.rows[i] {
			return errors.AssertionFailedf("row %d holds node %d, expected node %d", i, m.rows[i].id, want[i].id)
		}
	}
	return m.checkRowParents()
}

func (m *Model) audit(n *Node, ancestorMatch bool) (visible bool, size, matchCount int, err error) {
	if n.model != m {
		return false, 0, 0, errors.AssertionFailedf("node %d does not belong to model %s", n.id, m.id)
	}
	if n.match {
		matchCount = 1
	}
	childMatch := ancestorMatch || n.match
	anyChildVisible := false
	childRows := 0
	for _, c := range n.children {
		if c.parent != n {
			return false, 0, 0, errors.AssertionFailedf("node %d lists node %d as child but its parent differs", n.id, c.id)
		}
		cv, cs, cm, err := m.audit(c, childMatch)
		if err != nil {
			return false, 0, 0, err
		}
		matchCount += cm
		if cv {
			anyChildVisible = true
			childRows += cs
		}
	}

	switch {
	case n.synthetic:
		visible = anyChildVisible
	case n.match:
		visible = true
	case m.includeChildren && ancestorMatch:
		visible = true
	default:
		visible = m.ancestorsActive() && matchCount > 0
	}
	size = 1
	if n.initialized && n.effectiveExpanded() {
		size += childRows
	}

	switch {
	case matchCount != n.matchCount:
		err = errors.AssertionFailedf("node %d caches match count %d, expected %d", n.id, n.matchCount, matchCount)
	case visible != n.visible:
		err = errors.AssertionFailedf("node %d caches visible=%t, expected %t", n.id, n.visible, visible)
	case size != n.size:
		err = errors.AssertionFailedf("node %d caches subtree size %d, expected %d", n.id, n.size, size)
	}
	return visible, size, matchCount, err
}

// checkRowParents verifies that every row's structural parent is the
// nearest enclosing row, or the invisible root for top-level rows.
func (m *Model) checkRowParents() error {
	var open []*Node
	for i, x := range m.rows {
		if x == m.root {
			if i != 0 {
				return errors.AssertionFailedf("root displayed at row %d", i)
			}
			open = append(open, x)
			continue
		}
		for len(open) > 0 && open[len(open)-1] != x.parent {
			open = open[:len(open)-1]
		}
		if len(open) == 0 && (x.parent != m.root || m.rootVisible) {
			return errors.AssertionFailedf("row %d holds node %d whose parent is not displayed above it", i, x.id)
		}
		if x.synthetic && !x.visible {
			return errors.AssertionFailedf("row %d holds synthetic node %d without displayed children", i, x.id)
		}
		open = append(open, x)
	}
	return nil
}
