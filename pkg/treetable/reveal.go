package treetable

import "github.com/vanderheijden86/treegrid/pkg/metrics"

// FindNearestDisplayedRow returns the row of n when it is displayed.
// Otherwise it takes the uppermost undisplayed node u on n's ancestor chain
// and returns the row of the closest displayed sibling preceding u in
// display order, falling back to the row of u's parent (row 0 when that is
// the invisible root). The result never lies past the row n would occupy.
// NoRow is returned only when the table is empty.
func (m *Model) FindNearestDisplayedRow(n *Node) int {
	defer metrics.Timer(metrics.RowLookup)()
	if n == nil || n.model != m || len(m.rows) == 0 {
		return NoRow
	}
	if m.isDisplayed(n) {
		return m.scan(n)
	}
	if n == m.root {
		return 0
	}
	u := m.uppermostHidden(n)
	p := u.parent
	if m.rowsOpen(p) {
		var prev *Node
		for _, c := range m.ordered(p) {
			if c == u {
				break
			}
			if c.visible {
				prev = c
			}
		}
		if prev != nil {
			return m.scan(prev)
		}
	}
	if p == m.root && !m.rootVisible {
		return 0
	}
	return m.scan(p)
}

// uppermostHidden returns the highest node on the path from the root to n
// that is not displayed; its parent is displayed or is the invisible root.
func (m *Model) uppermostHidden(n *Node) *Node {
	path := n.Path()
	for _, x := range path[1:] {
		if !m.isDisplayed(x) {
			return x
		}
	}
	return n
}

// NecessaryRows returns the nodes, ordered from the root down, that would
// have to be forced into the filter result for n to become reachable: n
// itself plus each undisplayed ancestor that would still fail the filter
// policy with n forced to match. The walk stops at the first displayed
// ancestor, which anchors the result, or at the invisible root. Synthetic
// ancestors are threaded through but never returned, since they follow from
// their children. The result is empty when n is already displayed.
func (m *Model) NecessaryRows(n *Node) []*Node {
	if n == nil || n.model != m || m.isDisplayed(n) {
		return nil
	}
	var out []*Node
	for x := n; x != nil; x = x.parent {
		if x == m.root && !m.rootVisible {
			break
		}
		if x != n && m.isDisplayed(x) {
			break
		}
		if x.synthetic {
			continue
		}
		if x == n || !m.passesWithForcedDescendant(x) {
			out = append(out, x)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	for _, x := range out {
		if x.synthetic {
			assertf("synthetic node %d in necessary rows", x.id)
		}
	}
	return out
}

// passesWithForcedDescendant reports whether x would pass the filter policy
// if one of its descendants were forced to match.
func (m *Model) passesWithForcedDescendant(x *Node) bool {
	if x.match {
		return true
	}
	if m.ancestorsActive() {
		return true
	}
	return m.includeChildren && m.ancestorMatch(x)
}
