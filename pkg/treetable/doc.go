// Package treetable projects a mutable hierarchy of nodes onto a flat,
// filterable, sortable row table suitable for a virtualized grid.
//
// A Model owns a tree of Nodes whose children are supplied lazily by a
// Builder. The model keeps a dense row table of the currently displayed
// nodes: a node is displayed when every ancestor up to the root is displayed
// and expanded (an invisible root always counts as both) and the node passes
// the active filter policy. Rows are ordered as a pre-order traversal of the
// displayed nodes, siblings in comparator order.
//
// Every node caches the number of rows it occupies together with its
// displayed descendants. Structural mutations, expansion changes and object
// updates adjust these counters along the ancestor chain only and splice the
// affected row range, so untouched rows keep their indices. Filter, order and
// inclusion-flag changes re-derive the whole table without discarding nodes
// or expansion state.
//
// The model is synchronous and single-threaded. Listener notifications are
// queued while a mutation runs and delivered, in order, once the outermost
// mutation has finished, so listeners always observe a consistent table.
// Mutations issued from a listener run to completion and append their own
// events to the same queue.
//
// Usage:
//
//	m := treetable.New(builder, rootObject,
//	    treetable.WithFilter(filter),
//	    treetable.WithFilterOptions(true, false))
//	m.AddRowListener(func(ev treetable.RowEvent) { ... })
//	for i := 0; i < m.RowCount(); i++ {
//	    render(m.RowAt(i))
//	}
package treetable
