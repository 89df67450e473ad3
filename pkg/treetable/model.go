package treetable

import (
	"github.com/google/uuid"
	"github.com/vanderheijden86/treegrid/pkg/debug"
)

// Filter decides whether a business object matches.
type Filter interface {
	Accept(obj any) bool
}

// FilterFunc adapts a function to the Filter interface.
type FilterFunc func(obj any) bool

// Accept calls f(obj).
func (f FilterFunc) Accept(obj any) bool { return f(obj) }

// Comparator orders sibling business objects. It returns a negative number
// when a sorts before b, a positive number when after, and 0 for ties, which
// keep structural order.
type Comparator func(a, b any) int

// Option configures a Model at construction.
type Option func(*Model)

// WithRootVisible shows the root as row 0.
func WithRootVisible(v bool) Option {
	return func(m *Model) { m.rootVisible = v }
}

// WithFilter sets the initial filter.
func WithFilter(f Filter) Option {
	return func(m *Model) { m.filter = f }
}

// WithOrder sets the initial sibling comparator.
func WithOrder(c Comparator) Option {
	return func(m *Model) { m.order = c }
}

// WithFilterOptions sets the initial inclusion flags.
func WithFilterOptions(includeAncestors, includeChildren bool) Option {
	return func(m *Model) {
		m.includeAncestors = includeAncestors
		m.includeChildren = includeChildren
	}
}

// Model is a tree of nodes together with its row projection.
type Model struct {
	id      uuid.UUID
	builder Builder
	root    *Node
	nextID  uint64

	filter           Filter
	order            Comparator
	includeAncestors bool
	includeChildren  bool
	rootVisible      bool

	rows []*Node

	treeListeners []listenerEntry[TreeListener]
	rowListeners  []listenerEntry[RowListener]
	listenerSeq   uint64
	queue         []queuedEvent
	flushing      bool

	// depth counts nested mutations; bookkeeping is checked and events are
	// flushed when it drops back to zero.
	depth int

	revalidating      bool
	revalidatePending bool
}

// New creates a model whose root holds rootObj. The root starts expanded and
// its children are materialized immediately.
func New(builder Builder, rootObj any, opts ...Option) *Model {
	if builder == nil {
		builder = EmptyBuilder()
	}
	m := &Model{
		id:      uuid.New(),
		builder: builder,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.root = m.newNode(rootObj, false)
	m.root.expanded = true

	m.begin()
	m.revalidate()
	m.queue = nil
	m.end()
	debug.Log("treetable: model %s created with %d rows", m.id, len(m.rows))
	return m
}

// ID identifies the model instance.
func (m *Model) ID() uuid.UUID { return m.id }

// Root returns the root node.
func (m *Model) Root() *Node { return m.root }

// Builder returns the model's Builder.
func (m *Model) Builder() Builder { return m.builder }

// Filter returns the active filter, nil when everything matches.
func (m *Model) Filter() Filter { return m.filter }

// Order returns the active sibling comparator, nil for structural order.
func (m *Model) Order() Comparator { return m.order }

// IncludeAncestors reports whether ancestors of matches are displayed.
func (m *Model) IncludeAncestors() bool { return m.includeAncestors }

// IncludeChildren reports whether descendants of matches are displayed.
func (m *Model) IncludeChildren() bool { return m.includeChildren }

// RootVisible reports whether the root occupies row 0.
func (m *Model) RootVisible() bool { return m.rootVisible }

func (m *Model) newNode(obj any, synthetic bool) *Node {
	m.nextID++
	return &Node{
		model:     m,
		object:    obj,
		id:        m.nextID,
		synthetic: synthetic || isSyntheticObject(obj),
		size:      1,
	}
}

func (m *Model) begin() { m.depth++ }

func (m *Model) end() {
	m.depth--
	if m.depth > 0 {
		return
	}
	if debug.Enabled() {
		debug.AssertNoError(m.CheckInvariants(), "treetable invariants")
	}
	m.flush()
}
