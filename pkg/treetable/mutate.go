package treetable

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/vanderheijden86/treegrid/pkg/metrics"
)

// load materializes the children of n outside of an expansion. Since n is
// not expanded at this point no rows are added, but new matches may change
// the visibility of n and its ancestors.
func (m *Model) load(n *Node) {
	if n.initialized {
		return
	}
	m.begin()
	defer m.end()
	m.materialize(n)
	am := m.ancestorMatch(n) || n.match
	for _, c := range n.children {
		m.refreshSubtree(c, am)
	}
	m.applySettle(m.settle(n))
}

// applySettle replaces the block of the topmost node whose visibility
// changed, if any, and reports whether it did.
func (m *Model) applySettle(recs []pathRecord) bool {
	rec, ok := m.topmostFlip(recs)
	if ok {
		m.replaceBlock(rec)
	}
	return ok
}

func (m *Model) insert(p *Node, pos Position, objs []any, synthetic bool) ([]*Node, error) {
	defer metrics.Timer(metrics.Insert)()
	m.begin()
	defer m.end()
	m.load(p)
	idx, err := pos.resolve(len(p.children))
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, len(objs))
	for i, obj := range objs {
		c := m.newNode(obj, synthetic)
		c.match = m.evaluate(c)
		if c.match {
			c.matchCount = 1
		}
		nodes[i] = c
	}
	m.attach(p, idx, nodes, true)
	for i, c := range nodes {
		m.queueTree(NodeAdded, c, p, idx+i)
	}
	return nodes, nil
}

// attach links nodes into p at idx and updates counts, sizes and rows.
// Fresh nodes are materialized when the policy needs the whole tree.
func (m *Model) attach(p *Node, idx int, nodes []*Node, fresh bool) {
	added := 0
	for _, c := range nodes {
		c.parent = p
		added += c.matchCount
	}
	p.children = slices.Insert(p.children, idx, nodes...)
	m.addMatchCount(p, added)
	if fresh && m.materializeDeep() {
		for _, c := range nodes {
			m.materializeAll(c)
		}
	}
	am := m.ancestorMatch(p) || p.match
	for _, c := range nodes {
		m.refreshSubtree(c, am)
	}
	if m.applySettle(m.settle(p)) || !m.rowsOpen(p) {
		return
	}
	isNew := make(map[*Node]bool, len(nodes))
	for _, c := range nodes {
		isNew[c] = true
	}
	r := m.childStart(p)
	for _, c := range m.ordered(p) {
		if !c.visible {
			continue
		}
		if isNew[c] {
			m.insertRows(r, m.appendBlock(nil, c))
		}
		r += c.size
	}
}

// detach unlinks the child at idx of p and removes its rows. The displayed
// state, row and size are captured before anything changes, so neither the
// comparator nor the sibling order is consulted for the removed node.
func (m *Model) detach(p *Node, idx int) *Node {
	c := p.children[idx]
	displayed := m.isDisplayed(c)
	row, size := NoRow, c.size
	if displayed {
		row = m.scan(c)
	}
	p.children = slices.Delete(p.children, idx, idx+1)
	c.parent = nil
	m.addMatchCount(p, -c.matchCount)
	if !m.applySettle(m.settle(p)) && displayed {
		m.deleteRows(row, size)
	}
	return c
}

func (m *Model) removeChild(p *Node, idx int) (*Node, error) {
	defer metrics.Timer(metrics.Remove)()
	m.begin()
	defer m.end()
	m.load(p)
	if idx < 0 || idx >= len(p.children) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "remove index %d with %d children", idx, len(p.children))
	}
	c := m.detach(p, idx)
	dropModel(c)
	m.queueTree(NodeRemoved, c, p, idx)
	return c, nil
}

// dropModel detaches a removed subtree from the model's bookkeeping.
func dropModel(n *Node) {
	n.model = nil
	n.visible = false
	n.size = 1
	for _, c := range n.children {
		dropModel(c)
	}
}

func (m *Model) clearChildren(p *Node) {
	m.begin()
	defer m.end()
	m.load(p)
	for i := len(p.children) - 1; i >= 0; i-- {
		c := m.detach(p, i)
		dropModel(c)
		m.queueTree(NodeRemoved, c, p, i)
	}
}

func (m *Model) move(n, q *Node, pos Position) error {
	switch {
	case q == nil || q.model == nil:
		return errors.Wrap(ErrRemovedNode, "move target")
	case q.model != m:
		return errors.Wrapf(ErrForeignModel, "node %d cannot move into model %s", n.id, q.model.id)
	case n == m.root:
		return errors.WithStack(ErrRootMove)
	case n == q || n.IsAncestorOf(q):
		return errors.Wrapf(ErrCycle, "node %d below node %d", q.id, n.id)
	}
	defer metrics.Timer(metrics.Move)()
	m.begin()
	defer m.end()
	m.load(q)
	count := len(q.children)
	if n.parent == q {
		count--
	}
	idx, err := pos.resolve(count)
	if err != nil {
		return err
	}
	p := n.parent
	from := n.IndexInParent()
	m.detach(p, from)
	m.queueTree(NodeRemoved, n, p, from)
	m.attach(q, idx, []*Node{n}, false)
	m.queueTree(NodeAdded, n, q, idx)
	return nil
}

func (m *Model) sortChildren(p *Node, cmp func(a, b any) int) {
	m.begin()
	defer m.end()
	m.load(p)
	slices.SortStableFunc(p.children, func(a, b *Node) int {
		return cmp(a.object, b.object)
	})
	if !m.rowsOpen(p) {
		return
	}
	start := m.childStart(p)
	count := p.size - 1
	if count <= 0 {
		return
	}
	copy(m.rows[start:start+count], m.appendChildBlock(nil, p))
	m.queueRows(RowsUpdated, start, count)
}

// Update re-applies filter and order to n after its business object
// changed.
func (m *Model) Update(n *Node) {
	if n == nil || n.model != m {
		return
	}
	m.begin()
	defer m.end()
	newMatch := m.evaluate(n)
	if newMatch == n.match && m.order == nil {
		if m.isDisplayed(n) {
			m.queueRows(RowsUpdated, m.scan(n), 1)
		}
		return
	}
	self := pathRecord{node: n, oldVisible: n.visible, oldSize: n.size}
	if newMatch != n.match {
		delta := 1
		if !newMatch {
			delta = -1
		}
		n.match = newMatch
		m.addMatchCount(n, delta)
	}
	m.refreshSubtree(n, m.ancestorMatch(n))
	recs := []pathRecord{self}
	if n.parent != nil {
		recs = append(recs, m.settle(n.parent)...)
	}
	// Re-sorting moves only n among its siblings, so without a visibility
	// change above n its own block is the only one affected.
	anchor, ok := m.topmostFlip(recs)
	if !ok {
		anchor = self
	}
	m.replaceBlock(anchor)
}
