package query

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/vanderheijden86/treegrid/pkg/loader"
	"github.com/vanderheijden86/treegrid/pkg/treetable"
)

// SortField represents which item field siblings are sorted by.
type SortField int

const (
	SortNone     SortField = iota // Builder order
	SortDefault                   // Priority, then kind, then created
	SortLabel                     // Label (alphabetical)
	SortPriority                  // Priority (P0 first)
	SortCreated                   // Creation date
	SortStatus                    // Status (open before closed)
	SortKind                      // Kind (epic before chore)
	SortID                        // ID
	NumSortFields                 // Sentinel: total number of sort fields
)

var sortFieldNames = [...]string{
	SortNone:     "none",
	SortDefault:  "default",
	SortLabel:    "label",
	SortPriority: "priority",
	SortCreated:  "created",
	SortStatus:   "status",
	SortKind:     "kind",
	SortID:       "id",
}

// String returns the field name accepted by ParseSortField.
func (f SortField) String() string {
	if f >= 0 && f < NumSortFields {
		return sortFieldNames[f]
	}
	return "unknown"
}

// Next cycles to the following field, wrapping around.
func (f SortField) Next() SortField {
	return (f + 1) % NumSortFields
}

// ParseSortField resolves a field name. The empty string is SortNone.
func ParseSortField(s string) (SortField, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortNone, nil
	}
	for f, name := range sortFieldNames {
		if name == s {
			return SortField(f), nil
		}
	}
	return SortNone, errors.Newf("unknown sort field %q", s)
}

// SortDirection represents ascending or descending sort order.
type SortDirection int

const (
	SortAscending  SortDirection = iota // ▲ ascending
	SortDescending                      // ▼ descending
)

// String returns a human-readable label for the sort direction.
func (d SortDirection) String() string {
	if d == SortAscending {
		return "Ascending"
	}
	return "Descending"
}

// Indicator returns the arrow indicator for the sort direction.
func (d SortDirection) Indicator() string {
	if d == SortAscending {
		return "▲"
	}
	return "▼"
}

// Toggle returns the opposite direction.
func (d SortDirection) Toggle() SortDirection {
	if d == SortAscending {
		return SortDescending
	}
	return SortAscending
}

// Comparator builds a sibling comparator for field and direction. SortNone
// yields nil, which keeps Builder order. Equal fields fall back to ID
// ascending so the order is total; objects that are not items sort last.
func Comparator(field SortField, dir SortDirection) treetable.Comparator {
	if field == SortNone {
		return nil
	}
	return func(a, b any) int {
		ia, _ := a.(*loader.Item)
		ib, _ := b.(*loader.Item)
		if ia == nil || ib == nil {
			switch {
			case ia != nil:
				return -1
			case ib != nil:
				return 1
			}
			return 0
		}
		if c := compareByField(field, ia, ib); c != 0 {
			if dir == SortDescending {
				return -c
			}
			return c
		}
		return strings.Compare(ia.ID, ib.ID)
	}
}

func compareByField(field SortField, a, b *loader.Item) int {
	switch field {
	case SortLabel:
		return strings.Compare(strings.ToLower(a.Label), strings.ToLower(b.Label))
	case SortPriority:
		return cmpInt(a.Priority, b.Priority)
	case SortCreated:
		return a.Created.Compare(b.Created)
	case SortStatus:
		return cmpInt(statusOrder(a.Status), statusOrder(b.Status))
	case SortKind:
		if c := cmpInt(kindOrder(a.Kind), kindOrder(b.Kind)); c != 0 {
			return c
		}
		return strings.Compare(a.Kind, b.Kind)
	case SortID:
		return 0
	default:
		if c := cmpInt(a.Priority, b.Priority); c != 0 {
			return c
		}
		if c := cmpInt(kindOrder(a.Kind), kindOrder(b.Kind)); c != 0 {
			return c
		}
		return a.Created.Compare(b.Created)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// statusOrder returns a numeric order for item statuses.
// Lower numbers sort first: open → in_progress → blocked → closed
func statusOrder(s string) int {
	switch s {
	case "open":
		return 0
	case "in_progress":
		return 1
	case "blocked":
		return 2
	case "closed":
		return 3
	default:
		return 4
	}
}

func kindOrder(k string) int {
	switch strings.ToLower(k) {
	case "epic":
		return 0
	case "feature":
		return 1
	case "task":
		return 2
	case "bug":
		return 3
	case "chore":
		return 4
	default:
		return 5
	}
}
