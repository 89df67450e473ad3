package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/treegrid/pkg/loader"
	"github.com/vanderheijden86/treegrid/pkg/treetable"
)

// AssertItemCount verifies the expected number of items below root.
func AssertItemCount(t *testing.T, root *loader.Item, expected int) {
	t.Helper()
	if got := root.Count() - 1; got != expected {
		t.Errorf("expected %d items, got %d", expected, got)
	}
}

// AssertNoDuplicateIDs verifies all item IDs in the outline are unique.
func AssertNoDuplicateIDs(t *testing.T, root *loader.Item) {
	t.Helper()
	seen := make(map[string]bool)
	root.Walk(func(it *loader.Item, _ int) bool {
		if seen[it.ID] {
			t.Errorf("duplicate item ID: %s", it.ID)
		}
		seen[it.ID] = true
		return true
	})
}

// AssertAllValid verifies all items pass validation.
func AssertAllValid(t *testing.T, root *loader.Item) {
	t.Helper()
	root.Walk(func(it *loader.Item, _ int) bool {
		if err := it.Validate(); err != nil {
			t.Errorf("item %s invalid: %v", it.ID, err)
		}
		return true
	})
}

// ============================================================================
// Projection helpers
// ============================================================================

// RowIDs returns the item IDs of the displayed rows.
func RowIDs(m *treetable.Model) []string {
	rows := m.DisplayedRows()
	ids := make([]string, len(rows))
	for i, n := range rows {
		if it := loader.ItemOf(n); it != nil {
			ids[i] = it.ID
		} else {
			ids[i] = fmt.Sprint(n.Object())
		}
	}
	return ids
}

// AssertRowIDs verifies the displayed rows by item ID.
func AssertRowIDs(t *testing.T, m *treetable.Model, expected ...string) {
	t.Helper()
	got := RowIDs(m)
	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Errorf("row mismatch:\nexpected: %v\nactual:   %v", expected, got)
	}
}

// ReferenceRows recomputes the displayed rows of m from scratch using only
// its public state: filter, order, filter options, root visibility and the
// expansion flags of the materialized nodes.
func ReferenceRows(m *treetable.Model) []*treetable.Node {
	filter := m.Filter()
	order := m.Order()
	ancestors := m.IncludeAncestors() && m.Builder().IsFinite()
	children := m.IncludeChildren()
	root := m.Root()

	match := func(n *treetable.Node) bool {
		if n.IsSynthetic() || (n == root && !m.RootVisible()) {
			return false
		}
		return filter == nil || filter.Accept(n.Object())
	}
	var subtreeMatch func(n *treetable.Node) bool
	subtreeMatch = func(n *treetable.Node) bool {
		if match(n) {
			return true
		}
		return slices.ContainsFunc(n.LoadedChildren(), subtreeMatch)
	}
	var passes func(n *treetable.Node, ancestorMatch bool) bool
	passes = func(n *treetable.Node, ancestorMatch bool) bool {
		if n.IsSynthetic() {
			return slices.ContainsFunc(n.LoadedChildren(), func(c *treetable.Node) bool {
				return passes(c, ancestorMatch)
			})
		}
		switch {
		case match(n):
			return true
		case children && ancestorMatch:
			return true
		default:
			return ancestors && subtreeMatch(n)
		}
	}
	sorted := func(n *treetable.Node) []*treetable.Node {
		kids := n.LoadedChildren()
		if order != nil {
			slices.SortStableFunc(kids, func(a, b *treetable.Node) int {
				return order(a.Object(), b.Object())
			})
		}
		return kids
	}

	var rows []*treetable.Node
	var emitChildren func(n *treetable.Node, ancestorMatch bool)
	emitChildren = func(n *treetable.Node, ancestorMatch bool) {
		am := ancestorMatch || match(n)
		for _, c := range sorted(n) {
			if !passes(c, am) {
				continue
			}
			rows = append(rows, c)
			if c.IsExpanded() {
				emitChildren(c, am)
			}
		}
	}
	if m.RootVisible() {
		if passes(root, false) {
			rows = append(rows, root)
			if root.IsExpanded() {
				emitChildren(root, false)
			}
		}
	} else {
		emitChildren(root, false)
	}
	return rows
}

// AssertRowsConsistent verifies that the row table of m agrees with
// ReferenceRows and that RowAt, RowOf and IsDisplayed agree with it.
func AssertRowsConsistent(t *testing.T, m *treetable.Model) {
	t.Helper()
	want := ReferenceRows(m)
	got := m.DisplayedRows()
	if m.RowCount() != len(got) {
		t.Errorf("RowCount %d disagrees with %d displayed rows", m.RowCount(), len(got))
	}
	if len(want) != len(got) {
		t.Errorf("expected %d rows, got %d", len(want), len(got))
	}
	for i := 0; i < len(want) && i < len(got); i++ {
		if want[i] != got[i] {
			t.Errorf("row %d: expected node %d (%v), got node %d (%v)",
				i, want[i].ID(), want[i].Object(), got[i].ID(), got[i].Object())
			return
		}
	}
	for i, n := range got {
		if m.RowAt(i) != n {
			t.Errorf("RowAt(%d) disagrees with the displayed rows", i)
		}
		if r := m.RowOf(n); r != i {
			t.Errorf("RowOf(node %d) = %d, expected %d", n.ID(), r, i)
		}
		if !n.IsDisplayed() {
			t.Errorf("node %d is in row %d but not displayed", n.ID(), i)
		}
	}
	if m.RowAt(-1) != nil || m.RowAt(len(got)) != nil {
		t.Error("RowAt out of range returned a node")
	}
}

// ============================================================================
// Outline files
// ============================================================================

// WriteOutlineFile writes the items below root to path as flat JSONL records
// and returns path.
func WriteOutlineFile(t *testing.T, path string, root *loader.Item) string {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}

	content := ToJSONL(ToItems(root))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write outline file: %v", err)
	}
	return path
}

// FindItem returns the item with the given ID below root, or nil.
func FindItem(root *loader.Item, id string) *loader.Item {
	var found *loader.Item
	root.Walk(func(it *loader.Item, _ int) bool {
		if it.ID == id {
			found = it
			return false
		}
		return true
	})
	return found
}

// AssertJSONEqual compares two values after JSON round-tripping.
// Useful for comparing structs that may have different Go representations
// but equivalent JSON forms.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}

	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}

	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// Golden file helpers

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file.
// If GENERATE_GOLDEN is set, updates the golden file instead.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()

	if g.update {
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}

	if string(expected) != actual {
		// Find first difference for helpful error message
		expectedLines := strings.Split(string(expected), "\n")
		actualLines := strings.Split(actual, "\n")

		for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
			var expLine, actLine string
			if i < len(expectedLines) {
				expLine = expectedLines[i]
			}
			if i < len(actualLines) {
				actLine = actualLines[i]
			}
			if expLine != actLine {
				g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s", i+1, expLine, actLine)
				return
			}
		}
		g.t.Errorf("golden file mismatch (length differs)")
	}
}
