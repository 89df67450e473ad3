package loader

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Item is an outline entry: the business object attached to tree nodes.
//
// Items with Group set are grouping headers. They are synthetic in the
// grid: never matched by filters, shown only while one of their children is.
type Item struct {
	ID       string    `json:"id" yaml:"id"`
	Label    string    `json:"label" yaml:"label"`
	Kind     string    `json:"kind,omitempty" yaml:"kind,omitempty"`
	Status   string    `json:"status,omitempty" yaml:"status,omitempty"`
	Priority int       `json:"priority,omitempty" yaml:"priority,omitempty"`
	Group    bool      `json:"group,omitempty" yaml:"group,omitempty"`
	Created  time.Time `json:"created,omitempty" yaml:"created,omitempty"`
	Parent   string    `json:"parent,omitempty" yaml:"parent,omitempty"` // flat JSONL records only
	Children []*Item   `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsSynthetic marks group items as synthetic tree nodes.
func (i *Item) IsSynthetic() bool { return i.Group }

// String returns the label, falling back to the ID.
func (i *Item) String() string {
	if i.Label != "" {
		return i.Label
	}
	return i.ID
}

// Validate checks required fields.
func (i *Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return errors.New("item has no id")
	}
	if i.Parent == i.ID {
		return errors.Newf("item %s is its own parent", i.ID)
	}
	return nil
}

// Count returns the number of items in the subtree, self included.
func (i *Item) Count() int {
	n := 1
	for _, c := range i.Children {
		n += c.Count()
	}
	return n
}

// Walk visits the subtree in pre-order until fn returns false.
func (i *Item) Walk(fn func(it *Item, depth int) bool) {
	i.walk(fn, 0)
}

func (i *Item) walk(fn func(*Item, int) bool, depth int) bool {
	if !fn(i, depth) {
		return false
	}
	for _, c := range i.Children {
		if !c.walk(fn, depth+1) {
			return false
		}
	}
	return true
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// normalize fills defaults for a freshly decoded subtree.
func normalize(i *Item) {
	i.Walk(func(it *Item, _ int) bool {
		it.Status = normalizeStatus(it.Status)
		if it.Label == "" {
			it.Label = it.ID
		}
		return true
	})
}
