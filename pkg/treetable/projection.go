package treetable

import (
	"slices"

	"github.com/vanderheijden86/treegrid/pkg/metrics"
)

// RowCount returns the number of displayed rows.
func (m *Model) RowCount() int { return len(m.rows) }

// RowAt returns the node displayed at row i, or nil if i is out of range.
func (m *Model) RowAt(i int) *Node {
	if i < 0 || i >= len(m.rows) {
		return nil
	}
	return m.rows[i]
}

// DisplayedRows returns a copy of the row table.
func (m *Model) DisplayedRows() []*Node {
	return slices.Clone(m.rows)
}

// RowOf returns the row of n, or NoRow when n is not displayed.
func (m *Model) RowOf(n *Node) int {
	defer metrics.Timer(metrics.RowLookup)()
	if n == nil || n.model != m || !m.isDisplayed(n) {
		return NoRow
	}
	return m.scan(n)
}

// AllRows returns every materialized node reachable through expanded
// ancestors, in display order, ignoring the filter. The root is included
// when it is visible.
func (m *Model) AllRows() []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n)
		if !n.initialized || !n.expanded {
			return
		}
		for _, c := range m.ordered(n) {
			walk(c)
		}
	}
	if m.rootVisible {
		walk(m.root)
		return out
	}
	for _, c := range m.ordered(m.root) {
		walk(c)
	}
	return out
}

// isDisplayed derives the displayed state from cached visibility and the
// expansion flags of the ancestor chain.
func (m *Model) isDisplayed(n *Node) bool {
	if n == m.root {
		return m.rootVisible && n.visible
	}
	if n.parent == nil {
		return false
	}
	return n.visible && m.rowsOpen(n.parent)
}

// rowsOpen reports whether the children of p that pass the policy occupy rows.
func (m *Model) rowsOpen(p *Node) bool {
	if p == m.root {
		return !m.rootVisible || (p.visible && p.expanded)
	}
	return p.expanded && p.initialized && m.isDisplayed(p)
}

// childStart returns the row at which the children block of p begins. p
// must be displayed or be the invisible root.
func (m *Model) childStart(p *Node) int {
	if p == m.root && !m.rootVisible {
		return 0
	}
	return m.scan(p) + 1
}

// scan locates a node known to be in the row table by walking down from its
// parent's row and skipping the row blocks of preceding siblings. Only the
// table and the sizes of rows above n are consulted, never the comparator.
func (m *Model) scan(n *Node) int {
	if n == m.root {
		return 0
	}
	p := n.parent
	r := m.childStart(p)
	for r < len(m.rows) {
		x := m.rows[r]
		if x == n {
			return r
		}
		if x.parent != p {
			assertf("row %d holds node %d whose parent is not node %d", r, x.id, p.id)
		}
		r += x.size
	}
	assertf("node %d not found in row table", n.id)
	return NoRow
}

// offsetOf returns the row the block of x starts at, or would start at if
// x were displayed, from the sizes of its visible predecessors in display
// order. The children of x's parent must be displayed.
func (m *Model) offsetOf(x *Node) int {
	r := m.childStart(x.parent)
	for _, c := range m.ordered(x.parent) {
		if c == x {
			return r
		}
		if c.visible {
			r += c.size
		}
	}
	assertf("node %d missing from its parent's child list", x.id)
	return NoRow
}

// appendBlock appends the rows of n and its displayed descendants,
// assuming n itself is displayed.
func (m *Model) appendBlock(rows []*Node, n *Node) []*Node {
	rows = append(rows, n)
	return m.appendChildBlock(rows, n)
}

func (m *Model) appendChildBlock(rows []*Node, n *Node) []*Node {
	if !n.initialized || !n.effectiveExpanded() {
		return rows
	}
	for _, c := range m.ordered(n) {
		if c.visible {
			rows = m.appendBlock(rows, c)
		}
	}
	return rows
}

func (m *Model) rebuildRows() []*Node {
	rows := make([]*Node, 0, m.root.size)
	if m.rootVisible {
		if m.root.visible {
			rows = m.appendBlock(rows, m.root)
		}
		return rows
	}
	return m.appendChildBlock(rows, m.root)
}

func (m *Model) insertRows(at int, nodes []*Node) {
	if len(nodes) == 0 {
		return
	}
	m.rows = slices.Insert(m.rows, at, nodes...)
	m.queueRows(RowsInserted, at, len(nodes))
}

func (m *Model) deleteRows(at, count int) {
	if count <= 0 {
		return
	}
	if at < 0 || at+count > len(m.rows) {
		assertf("deleting rows [%d,%d) from a table of %d rows", at, at+count, len(m.rows))
	}
	m.rows = slices.Delete(m.rows, at, at+count)
	m.queueRows(RowsDeleted, at, count)
}

// pathRecord holds the cached state of a node before settle recomputed it.
type pathRecord struct {
	node       *Node
	oldVisible bool
	oldSize    int
}

// settle recomputes visibility and size from start up to the root, after a
// change below start. It returns the previous state of every node on the
// path, start first.
func (m *Model) settle(start *Node) []pathRecord {
	var path []*Node
	for x := start; x != nil; x = x.parent {
		path = append(path, x)
	}
	// ancestor matches, top-down
	am := make([]bool, len(path))
	for i := len(path) - 2; i >= 0; i-- {
		am[i] = am[i+1] || path[i+1].match
	}
	recs := make([]pathRecord, len(path))
	for i, x := range path {
		recs[i] = pathRecord{node: x, oldVisible: x.visible, oldSize: x.size}
		x.visible = m.computeVisible(x, am[i])
		x.size = m.computeSize(x)
	}
	return recs
}

// topmostFlip returns the highest record whose visibility changed. The
// visibility of an invisible root is ignored.
func (m *Model) topmostFlip(recs []pathRecord) (pathRecord, bool) {
	for i := len(recs) - 1; i >= 0; i-- {
		r := recs[i]
		if r.node == m.root && !m.rootVisible {
			continue
		}
		if r.oldVisible != r.node.visible {
			return r, true
		}
	}
	return pathRecord{}, false
}

// replaceBlock swaps the old rows of rec.node for its current block. Nodes
// above rec.node must not have changed visibility, and no row outside the
// old block may have changed.
func (m *Model) replaceBlock(rec pathRecord) {
	x := rec.node
	if x == m.root {
		m.rows = m.rebuildRows()
		m.queueRows(RowsInvalidated, 0, len(m.rows))
		return
	}
	if !m.rowsOpen(x.parent) {
		return
	}
	if rec.oldVisible {
		m.deleteRows(m.scan(x), rec.oldSize)
	}
	if x.visible {
		m.insertRows(m.offsetOf(x), m.appendBlock(nil, x))
	}
}
