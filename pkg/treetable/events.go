package treetable

// TreeEventKind enumerates structural and expansion notifications.
type TreeEventKind int

const (
	NodeAdded TreeEventKind = iota
	NodeRemoved
	BeforeExpand
	AfterExpand
	BeforeCollapse
	AfterCollapse
)

func (k TreeEventKind) String() string {
	switch k {
	case NodeAdded:
		return "node-added"
	case NodeRemoved:
		return "node-removed"
	case BeforeExpand:
		return "before-expand"
	case AfterExpand:
		return "after-expand"
	case BeforeCollapse:
		return "before-collapse"
	case AfterCollapse:
		return "after-collapse"
	default:
		return "unknown"
	}
}

// TreeEvent describes a change to the node structure or expansion state.
// For NodeAdded and NodeRemoved, Parent and Index locate the child slot the
// node was inserted at or removed from.
type TreeEvent struct {
	Kind   TreeEventKind
	Node   *Node
	Parent *Node
	Index  int
	Model  *Model
}

// RowEventKind enumerates row table notifications.
type RowEventKind int

const (
	RowsInserted RowEventKind = iota
	RowsDeleted
	RowsUpdated
	// RowsInvalidated means the whole table was re-derived.
	RowsInvalidated
)

func (k RowEventKind) String() string {
	switch k {
	case RowsInserted:
		return "inserted"
	case RowsDeleted:
		return "deleted"
	case RowsUpdated:
		return "updated"
	case RowsInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// RowEvent describes an inclusive range of affected rows. Deleted ranges
// refer to row indices before the deletion, inserted ranges to indices after
// the insertion. RowsInvalidated carries First 0 and Last RowCount()-1.
type RowEvent struct {
	Kind  RowEventKind
	First int
	Last  int
	Model *Model
}

// TreeListener receives tree events.
type TreeListener func(TreeEvent)

// RowListener receives row events.
type RowListener func(RowEvent)

type queuedEvent struct {
	tree *TreeEvent
	row  *RowEvent
}

type listenerEntry[T any] struct {
	id uint64
	fn T
}

// AddTreeListener registers fn and returns a function that unregisters it.
func (m *Model) AddTreeListener(fn TreeListener) (remove func()) {
	m.listenerSeq++
	id := m.listenerSeq
	m.treeListeners = append(m.treeListeners, listenerEntry[TreeListener]{id: id, fn: fn})
	return func() {
		for i, l := range m.treeListeners {
			if l.id == id {
				m.treeListeners = append(m.treeListeners[:i:i], m.treeListeners[i+1:]...)
				return
			}
		}
	}
}

// AddRowListener registers fn and returns a function that unregisters it.
func (m *Model) AddRowListener(fn RowListener) (remove func()) {
	m.listenerSeq++
	id := m.listenerSeq
	m.rowListeners = append(m.rowListeners, listenerEntry[RowListener]{id: id, fn: fn})
	return func() {
		for i, l := range m.rowListeners {
			if l.id == id {
				m.rowListeners = append(m.rowListeners[:i:i], m.rowListeners[i+1:]...)
				return
			}
		}
	}
}

func (m *Model) queueTree(kind TreeEventKind, n, parent *Node, index int) {
	m.queue = append(m.queue, queuedEvent{tree: &TreeEvent{
		Kind: kind, Node: n, Parent: parent, Index: index, Model: m,
	}})
}

func (m *Model) queueRows(kind RowEventKind, first, count int) {
	if count <= 0 && kind != RowsInvalidated {
		return
	}
	m.queue = append(m.queue, queuedEvent{row: &RowEvent{
		Kind: kind, First: first, Last: first + count - 1, Model: m,
	}})
}

// flush delivers queued events. Events queued by listeners while flushing
// are delivered by the same loop, after the event that caused them.
func (m *Model) flush() {
	if m.flushing {
		return
	}
	m.flushing = true
	defer func() { m.flushing = false }()
	for len(m.queue) > 0 {
		ev := m.queue[0]
		m.queue = m.queue[1:]
		if ev.tree != nil {
			for _, l := range append([]listenerEntry[TreeListener](nil), m.treeListeners...) {
				l.fn(*ev.tree)
			}
			continue
		}
		for _, l := range append([]listenerEntry[RowListener](nil), m.rowListeners...) {
			l.fn(*ev.row)
		}
	}
	m.queue = nil
}
