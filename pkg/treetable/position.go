package treetable

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

type positionKind uint8

const (
	posStart positionKind = iota
	posEnd
	posBefore
	posAfter
)

// Position addresses an insertion point in a child list.
type Position struct {
	kind  positionKind
	index int
}

// Start is the position before the first child.
func Start() Position { return Position{kind: posStart} }

// End is the position after the last child.
func End() Position { return Position{kind: posEnd} }

// Before is the position of the child at index i; the inserted node takes
// index i and the old occupant moves down.
func Before(i int) Position { return Position{kind: posBefore, index: i} }

// After is the position directly behind the child at index i.
func After(i int) Position { return Position{kind: posAfter, index: i} }

func (p Position) String() string {
	switch p.kind {
	case posStart:
		return "start"
	case posEnd:
		return "end"
	case posBefore:
		return fmt.Sprintf("before(%d)", p.index)
	default:
		return fmt.Sprintf("after(%d)", p.index)
	}
}

// resolve converts the position into an insertion index for a list of
// count children.
func (p Position) resolve(count int) (int, error) {
	switch p.kind {
	case posStart:
		return 0, nil
	case posEnd:
		return count, nil
	case posBefore:
		if p.index < 0 || p.index > count {
			return 0, errors.Wrapf(ErrIndexOutOfRange, "%s with %d children", p, count)
		}
		return p.index, nil
	default:
		if p.index < 0 || p.index >= count {
			return 0, errors.Wrapf(ErrIndexOutOfRange, "%s with %d children", p, count)
		}
		return p.index + 1, nil
	}
}
