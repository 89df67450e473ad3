package treetable

import (
	"slices"

	"github.com/vanderheijden86/treegrid/pkg/debug"
	"github.com/vanderheijden86/treegrid/pkg/metrics"
)

// SetFilter replaces the filter; nil accepts everything. The row table is
// re-derived; nodes and expansion flags are kept.
func (m *Model) SetFilter(f Filter) {
	m.begin()
	defer m.end()
	m.filter = f
	m.revalidate()
}

// SetOrder replaces the sibling comparator; nil restores structural order.
func (m *Model) SetOrder(c Comparator) {
	m.begin()
	defer m.end()
	m.order = c
	m.revalidate()
}

// SetFilterOptions sets the inclusion flags. With includeAncestors, a node is
// displayed when one of its descendants matches; this only applies to finite
// hierarchies. With includeChildren, a node is displayed when one of its
// real ancestors matches.
func (m *Model) SetFilterOptions(includeAncestors, includeChildren bool) {
	if m.includeAncestors == includeAncestors && m.includeChildren == includeChildren {
		return
	}
	m.begin()
	defer m.end()
	m.includeAncestors = includeAncestors
	m.includeChildren = includeChildren
	m.revalidate()
}

// SetRootVisible shows or hides the root row. An invisible root never
// matches the filter and is always treated as expanded.
func (m *Model) SetRootVisible(v bool) {
	if m.rootVisible == v {
		return
	}
	m.begin()
	defer m.end()
	m.rootVisible = v
	m.revalidate()
}

// Refilter re-applies the current policy, for filters whose outcome depends
// on state outside the business objects.
func (m *Model) Refilter() {
	m.begin()
	defer m.end()
	m.revalidate()
}

// evaluate reports whether the filter accepts n itself.
func (m *Model) evaluate(n *Node) bool {
	if n.synthetic {
		return false
	}
	if n == m.root && !m.rootVisible {
		return false
	}
	if m.filter == nil {
		return true
	}
	return m.filter.Accept(n.object)
}

func (m *Model) ancestorsActive() bool {
	return m.includeAncestors && m.builder.IsFinite()
}

// materializeDeep reports whether filtering needs the whole hierarchy.
func (m *Model) materializeDeep() bool {
	return m.filter != nil && m.builder.IsFinite()
}

// computeVisible decides whether n passes the filter policy under its
// parent. ancestorMatch is true when a real strict ancestor matches.
// Children of n must already be up to date.
func (m *Model) computeVisible(n *Node, ancestorMatch bool) bool {
	if n.synthetic {
		for _, c := range n.children {
			if c.visible {
				return true
			}
		}
		return false
	}
	if n.match {
		return true
	}
	if m.includeChildren && ancestorMatch {
		return true
	}
	return m.ancestorsActive() && n.matchCount > 0
}

func (m *Model) computeSize(n *Node) int {
	size := 1
	if n.initialized && n.effectiveExpanded() {
		for _, c := range n.children {
			if c.visible {
				size += c.size
			}
		}
	}
	return size
}

// ancestorMatch reports whether a real strict ancestor of n matches.
func (m *Model) ancestorMatch(n *Node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p.match {
			return true
		}
	}
	return false
}

// ordered returns the children of p in display order. The result must not
// be modified.
func (m *Model) ordered(p *Node) []*Node {
	if m.order == nil || len(p.children) < 2 {
		return p.children
	}
	sorted := slices.Clone(p.children)
	slices.SortStableFunc(sorted, func(a, b *Node) int {
		return m.order(a.object, b.object)
	})
	return sorted
}

// materialize asks the Builder for n's children. Only match flags and match
// counts are set; callers refresh visibility and sizes.
func (m *Model) materialize(n *Node) {
	if n.initialized {
		return
	}
	n.initialized = true
	objs := m.builder.CreateChildList(n)
	if len(objs) == 0 {
		return
	}
	added := 0
	n.children = slices.Grow(n.children, len(objs))
	for _, obj := range objs {
		c := m.newNode(obj, false)
		c.parent = n
		c.match = m.evaluate(c)
		if c.match {
			c.matchCount = 1
			added++
		}
		n.children = append(n.children, c)
	}
	m.addMatchCount(n, added)
	if m.materializeDeep() {
		for _, c := range n.children {
			m.materialize(c)
		}
	}
}

func (m *Model) materializeAll(n *Node) {
	m.materialize(n)
	for _, c := range n.children {
		m.materializeAll(c)
	}
}

func (m *Model) addMatchCount(n *Node, delta int) {
	if delta == 0 {
		return
	}
	for x := n; x != nil; x = x.parent {
		x.matchCount += delta
	}
}

// rematch re-evaluates the filter over the materialized subtree of n.
func (m *Model) rematch(n *Node) int {
	n.match = m.evaluate(n)
	count := 0
	if n.match {
		count = 1
	}
	for _, c := range n.children {
		count += m.rematch(c)
	}
	n.matchCount = count
	return count
}

// refreshSubtree recomputes visibility and sizes of n and its materialized
// descendants bottom-up. Synthetic nodes are materialized since their
// visibility depends on their children.
func (m *Model) refreshSubtree(n *Node, ancestorMatch bool) {
	if n.synthetic && !n.initialized {
		m.materialize(n)
	}
	childMatch := ancestorMatch || n.match
	for _, c := range n.children {
		m.refreshSubtree(c, childMatch)
	}
	n.visible = m.computeVisible(n, ancestorMatch)
	n.size = m.computeSize(n)
}

// revalidate re-derives match state, sizes and the row table for the whole
// tree. Requests arriving while a revalidation runs (from inside a filter,
// comparator or builder) are folded into one rerun.
func (m *Model) revalidate() {
	if m.revalidating {
		m.revalidatePending = true
		return
	}
	defer metrics.Timer(metrics.Revalidate)()
	m.revalidating = true
	defer func() { m.revalidating = false }()
	for {
		m.revalidatePending = false
		m.materialize(m.root)
		if m.materializeDeep() {
			m.materializeAll(m.root)
		}
		m.rematch(m.root)
		m.refreshSubtree(m.root, false)
		m.rows = m.rebuildRows()
		if !m.revalidatePending {
			break
		}
		debug.Log("treetable: revalidation requested during revalidation, rerunning")
	}
	m.queueRows(RowsInvalidated, 0, len(m.rows))
}
