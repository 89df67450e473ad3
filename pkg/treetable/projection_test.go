package treetable

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func fiveChildRoot() *item {
	return it("root",
		it("c0"), it("c1"), it("c2"), it("c3"),
		it("c4",
			it("d0"),
			it("d1", it("g0"), it("g1"), it("g2")),
			it("d2"),
			it("d3"),
		),
	)
}

// TestRowRoundTrip checks root visibility and expansion row arithmetic.
func TestRowRoundTrip(t *testing.T) {
	m := newItemModel(fiveChildRoot())
	if m.RowCount() != 5 {
		t.Fatalf("expected 5 rows, got %d", m.RowCount())
	}

	m.SetRootVisible(true)
	if m.RowCount() != 6 {
		t.Fatalf("expected 6 rows with visible root, got %d", m.RowCount())
	}
	if m.RowAt(0) != m.Root() {
		t.Errorf("expected root at row 0, got %s", nameOf(m.RowAt(0)))
	}

	c4 := m.Root().ChildAt(4)
	c4.ChildAt(1).SetExpanded(true)
	if m.RowCount() != 6 {
		t.Fatalf("expanding below a collapsed node must not add rows, got %d", m.RowCount())
	}

	c4.SetExpanded(true)
	if m.RowCount() != 6+4+3 {
		t.Errorf("expected %d rows, got %d", 6+4+3, m.RowCount())
	}
	if got := names(m.DisplayedRows()); got != "root c0 c1 c2 c3 c4 d0 d1 g0 g1 g2 d2 d3" {
		t.Errorf("unexpected rows: %s", got)
	}
	checkModel(t, m)
}

// TestSubtreeSizes checks that cached sizes add up to the row count.
func TestSubtreeSizes(t *testing.T) {
	m := newItemModel(fiveChildRoot())
	if err := m.ExpandAll(m.Root()); err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, c := range m.Root().Children() {
		total += c.size
	}
	if total != m.RowCount() {
		t.Errorf("expected top-level sizes to sum to %d, got %d", m.RowCount(), total)
	}
	c4 := m.Root().ChildAt(4)
	row := m.RowOf(c4)
	if m.RowAt(row+c4.size-1) != mustFind(t, m, "d3") {
		t.Errorf("expected last row of c4 block to be d3, got %s", nameOf(m.RowAt(row+c4.size-1)))
	}
	d1 := mustFind(t, m, "d1")
	if next := m.RowAt(m.RowOf(d1) + d1.size); next != mustFind(t, m, "d2") {
		t.Errorf("expected next sibling of d1 at row+size, got %s", nameOf(next))
	}
	checkModel(t, m)
}

// TestRowOfHidden covers NoRow for collapsed and filtered nodes.
func TestRowOfHidden(t *testing.T) {
	m := newItemModel(fiveChildRoot())
	c4 := m.Root().ChildAt(4)
	d0 := c4.ChildAt(0)
	if m.RowOf(d0) != NoRow {
		t.Errorf("expected NoRow for child of collapsed node, got %d", m.RowOf(d0))
	}
	if m.RowOf(c4) != 4 {
		t.Errorf("expected c4 at row 4, got %d", m.RowOf(c4))
	}
	m.SetFilter(acceptNames("c0", "c1"))
	if m.RowOf(c4) != NoRow {
		t.Errorf("expected NoRow for filtered node, got %d", m.RowOf(c4))
	}
	if m.RowCount() != 2 {
		t.Errorf("expected 2 rows, got %d", m.RowCount())
	}
	checkModel(t, m)
}

// TestIncludeAncestors shows the path to a deep match.
func TestIncludeAncestors(t *testing.T) {
	m := newItemModel(fiveChildRoot(), WithFilter(acceptNames("g1")))
	if m.RowCount() != 0 {
		t.Fatalf("expected no rows without inclusion, got %d", m.RowCount())
	}
	m.SetFilterOptions(true, false)
	if got := names(m.DisplayedRows()); got != "c4" {
		t.Errorf("expected only c4 while collapsed, got %q", got)
	}
	if err := m.ExpandAll(m.Root()); err != nil {
		t.Fatal(err)
	}
	if got := names(m.DisplayedRows()); got != "c4 d1 g1" {
		t.Errorf("expected path to g1, got %q", got)
	}
	checkModel(t, m)
}

// TestIncludeChildren shows the subtree of a match.
func TestIncludeChildren(t *testing.T) {
	m := newItemModel(fiveChildRoot(), WithFilter(acceptNames("d1")), WithFilterOptions(false, true))
	if err := m.ExpandAll(m.Root()); err != nil {
		t.Fatal(err)
	}
	if m.RowCount() != 0 {
		t.Errorf("expected no rows since c4 does not match, got %q", names(m.DisplayedRows()))
	}
	m.SetFilterOptions(true, true)
	if got := names(m.DisplayedRows()); got != "c4 d1 g0 g1 g2" {
		t.Errorf("unexpected rows %q", got)
	}
	checkModel(t, m)
}

// TestSyntheticDisplayedThroughChild covers a group kept alive by an included child.
func TestSyntheticDisplayedThroughChild(t *testing.T) {
	root := it("root", it("r", group("s", it("c"))))
	m := newItemModel(root, WithFilter(acceptNames("r")), WithFilterOptions(false, true))
	if err := m.ExpandAll(m.Root()); err != nil {
		t.Fatal(err)
	}
	s := mustFind(t, m, "s")
	c := mustFind(t, m, "c")
	if !s.IsDisplayed() {
		t.Error("expected synthetic node to be displayed through its included child")
	}
	if got := names(m.DisplayedRows()); got != "r s c" {
		t.Errorf("unexpected rows %q", got)
	}

	m.SetFilterOptions(false, false)
	if s.IsDisplayed() || c.IsDisplayed() {
		t.Error("expected synthetic node hidden once its only child is filtered out")
	}
	for _, n := range m.NecessaryRows(c) {
		if n.IsSynthetic() {
			t.Errorf("synthetic node %s in necessary rows", nameOf(n))
		}
	}
	if got := names(m.NecessaryRows(c)); got != "c" {
		t.Errorf("expected only c, anchored on displayed r, got %q", got)
	}
	checkModel(t, m)
}

// TestNecessaryRowsNoFlags: everything filtered except x at depth 2.
func TestNecessaryRowsNoFlags(t *testing.T) {
	root := it("root", it("a", it("a1")), it("p", it("q"), it("x")))
	m := newItemModel(root, WithRootVisible(true), WithFilter(acceptNames("x")))
	x := mustFind(t, m, "x")
	if m.RowCount() != 0 {
		t.Fatalf("expected empty table, got %q", names(m.DisplayedRows()))
	}
	if got := names(m.NecessaryRows(x)); got != "root p x" {
		t.Errorf("expected root p x, got %q", got)
	}

	m.SetFilter(acceptNames("root", "x"))
	if got := names(m.NecessaryRows(x)); got != "p x" {
		t.Errorf("expected displayed root to anchor the chain, got %q", got)
	}

	m.SetFilter(acceptNames("root", "p", "x"))
	mustFind(t, m, "p").SetExpanded(true)
	if got := m.NecessaryRows(x); len(got) != 0 {
		t.Errorf("expected nothing necessary for a displayed node, got %q", names(got))
	}
	checkModel(t, m)
}

// TestNecessaryRowsFlags covers the inclusion modes.
func TestNecessaryRowsFlags(t *testing.T) {
	root := it("root", it("a", it("b", it("x"))))
	m := newItemModel(root, WithFilter(acceptNames("a")))
	x := mustFind(t, m, "x")

	if got := names(m.NecessaryRows(x)); got != "b x" {
		t.Errorf("expected b x anchored on a, got %q", got)
	}
	m.SetFilterOptions(false, true)
	if got := names(m.NecessaryRows(x)); got != "x" {
		t.Errorf("expected x alone, covered by matching a, got %q", got)
	}
	m.SetFilter(acceptNames("none"))
	m.SetFilterOptions(true, false)
	if got := names(m.NecessaryRows(x)); got != "x" {
		t.Errorf("expected ancestors to follow a forced x, got %q", got)
	}
	checkModel(t, m)
}

// TestNecessaryRowsThroughSynthetic threads the chain through a group.
func TestNecessaryRowsThroughSynthetic(t *testing.T) {
	root := it("root", group("s", it("a", it("x"))))
	m := newItemModel(root, WithFilter(acceptNames("x")))
	x := mustFind(t, m, "x")
	if got := names(m.NecessaryRows(x)); got != "a x" {
		t.Errorf("expected a x without the group, got %q", got)
	}
}

// TestFindNearestDisplayedRow walks the fallback chain.
func TestFindNearestDisplayedRow(t *testing.T) {
	root := it("root", it("a"), it("b", it("b1"), it("b2")), it("c"))
	m := newItemModel(root)
	b := m.Root().ChildAt(1)
	b2 := b.ChildAt(1)

	if got := m.FindNearestDisplayedRow(b); got != 1 {
		t.Errorf("expected displayed b at row 1, got %d", got)
	}
	if got := m.FindNearestDisplayedRow(b2); got != 1 {
		t.Errorf("expected collapsed parent b at row 1, got %d", got)
	}

	m.SetFilter(acceptNames("a", "c", "b2"))
	if got := m.FindNearestDisplayedRow(b2); got != 0 {
		t.Errorf("expected preceding sibling a at row 0, got %d", got)
	}

	m.SetFilter(acceptNames("c", "b2"))
	if got := m.FindNearestDisplayedRow(b2); got != 0 {
		t.Errorf("expected row 0 below the invisible root, got %d", got)
	}

	m.SetFilter(acceptNames("root", "c", "b2"))
	m.SetRootVisible(true)
	if got := m.FindNearestDisplayedRow(b2); got != 0 {
		t.Errorf("expected visible root at row 0, got %d", got)
	}
	if got := m.FindNearestDisplayedRow(m.Root().ChildAt(2)); got != 1 {
		t.Errorf("expected c at row 1, got %d", got)
	}

	m.SetFilter(acceptNames("nothing"))
	if got := m.FindNearestDisplayedRow(b2); got != NoRow {
		t.Errorf("expected NoRow for empty table, got %d", got)
	}
}

// TestAllRowsIgnoresFilter lists expanded structure regardless of the filter.
func TestAllRowsIgnoresFilter(t *testing.T) {
	m := newItemModel(fiveChildRoot(), WithFilter(acceptNames("c0")))
	m.Root().ChildAt(4).SetExpanded(true)
	if got := names(m.AllRows()); got != "c0 c1 c2 c3 c4 d0 d1 d2 d3" {
		t.Errorf("unexpected all rows %q", got)
	}
	if got := names(m.DisplayedRows()); got != "c0" {
		t.Errorf("unexpected displayed rows %q", got)
	}
}

// TestOrderIsPolicyOnly re-sorts without touching nodes.
func TestOrderIsPolicyOnly(t *testing.T) {
	root := it("root", it("b"), it("c"), it("a"))
	m := newItemModel(root)
	before := m.Root().Children()
	m.SetOrder(byName)
	if got := names(m.DisplayedRows()); got != "a b c" {
		t.Errorf("expected sorted rows, got %q", got)
	}
	after := m.Root().Children()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("expected structural order unchanged at %d", i)
		}
	}
	m.SetOrder(nil)
	if got := names(m.DisplayedRows()); got != "b c a" {
		t.Errorf("expected structural order back, got %q", got)
	}
	checkModel(t, m)
}

// TestExpandAllInfinite must fail without side effects.
func TestExpandAllInfinite(t *testing.T) {
	depth := 0
	b := NewBuilder(func(p *Node) []any {
		depth++
		return []any{it("child"), it("child")}
	}, false)
	m := New(b, it("root"))
	log := record(m)
	rows := m.RowCount()
	calls := depth

	err := m.ExpandAll(m.Root())
	if !errors.Is(err, ErrInfiniteHierarchy) {
		t.Fatalf("expected ErrInfiniteHierarchy, got %v", err)
	}
	if m.RowCount() != rows || depth != calls {
		t.Errorf("expected no change, rows %d->%d builder calls %d->%d", rows, m.RowCount(), calls, depth)
	}
	if len(log.tree)+len(log.rows) != 0 {
		t.Errorf("expected no events, got %d", len(log.tree)+len(log.rows))
	}
}

// TestInfiniteIgnoresIncludeAncestors never enumerates an infinite tree.
func TestInfiniteIgnoresIncludeAncestors(t *testing.T) {
	calls := 0
	b := NewBuilder(func(p *Node) []any {
		calls++
		return []any{it("x"), it("y")}
	}, false)
	m := New(b, it("root"), WithFilter(acceptNames("x")), WithFilterOptions(true, false))
	if calls != 1 {
		t.Errorf("expected only the root to be materialized, got %d builder calls", calls)
	}
	if got := names(m.DisplayedRows()); got != "x" {
		t.Errorf("unexpected rows %q", got)
	}
	checkModel(t, m)
}
