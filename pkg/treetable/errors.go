package treetable

import "github.com/cockroachdb/errors"

// NoRow is returned by row queries for nodes that are not displayed.
const NoRow = -1

var (
	// ErrCycle is returned when a node would be moved below itself.
	ErrCycle = errors.New("treetable: move would create a cycle")
	// ErrForeignModel is returned when a node would be moved into another model.
	ErrForeignModel = errors.New("treetable: node belongs to a different model")
	// ErrRootMove is returned when moving the root node.
	ErrRootMove = errors.New("treetable: root node cannot be moved")
	// ErrRemovedNode is returned for operations on nodes detached from their model.
	ErrRemovedNode = errors.New("treetable: node has been removed")
	// ErrIndexOutOfRange is returned for child positions outside the child list.
	ErrIndexOutOfRange = errors.New("treetable: child position out of range")
	// ErrInfiniteHierarchy is returned by ExpandAll when the Builder is not finite.
	ErrInfiniteHierarchy = errors.New("treetable: cannot expand an infinite hierarchy")
)

// assertf panics with an assertion failure. Used for states that can only
// be reached through a bug in the projection itself.
func assertf(format string, args ...any) {
	panic(errors.AssertionFailedf(format, args...))
}
