package testutil

import (
	"bytes"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/treegrid/pkg/loader"
	"github.com/vanderheijden86/treegrid/pkg/query"
	"github.com/vanderheijden86/treegrid/pkg/treetable"
)

func TestGeneratorDeterministic(t *testing.T) {
	a := ToJSONL(ToItems(New(DefaultConfig()).Random(40, 3)))
	b := ToJSONL(ToItems(New(DefaultConfig()).Random(40, 3)))
	if a != b {
		t.Error("same seed produced different outlines")
	}
}

func TestFlat(t *testing.T) {
	root := NewDefault().Flat(5)
	AssertItemCount(t, root, 5)
	AssertNoDuplicateIDs(t, root)
	AssertAllValid(t, root)
	for _, c := range root.Children {
		if len(c.Children) != 0 {
			t.Errorf("expected %s to be a leaf", c.ID)
		}
	}
}

func TestChain(t *testing.T) {
	root := NewDefault().Chain(4)
	AssertItemCount(t, root, 4)
	maxDepth := 0
	root.Walk(func(it *loader.Item, depth int) bool {
		if len(it.Children) > 1 {
			t.Errorf("expected at most one child, %s has %d", it.ID, len(it.Children))
		}
		maxDepth = max(maxDepth, depth)
		return true
	})
	if maxDepth != 4 {
		t.Errorf("expected depth 4, got %d", maxDepth)
	}
}

func TestTree(t *testing.T) {
	root := QuickTree(3, 2)
	AssertItemCount(t, root, 2+4+8)
	AssertNoDuplicateIDs(t, root)

	// depth and breadth are clamped to 1
	AssertItemCount(t, QuickTree(0, 0), 1)
}

func TestRandomRespectsMaxChildren(t *testing.T) {
	root := QuickRandom(100, 3)
	AssertItemCount(t, root, 100)
	AssertNoDuplicateIDs(t, root)
	root.Walk(func(it *loader.Item, _ int) bool {
		if len(it.Children) > 3 {
			t.Errorf("%s has %d children", it.ID, len(it.Children))
		}
		return true
	})
}

func TestGroupRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GroupRate = 1
	root := New(cfg).Tree(2, 2)
	for _, c := range root.Children {
		if !c.Group {
			t.Errorf("expected %s to be a group", c.ID)
		}
		for _, gc := range c.Children {
			if gc.Group {
				t.Errorf("expected leaf %s to stay a plain item", gc.ID)
			}
		}
	}
}

func TestEmptyAndSingle(t *testing.T) {
	AssertItemCount(t, Empty(), 0)
	single := Single()
	AssertItemCount(t, single, 1)
	if FindItem(single, "TEST-single") == nil {
		t.Error("expected to find the single item")
	}
	if FindItem(single, "missing") != nil {
		t.Error("expected no item")
	}
}

func TestToItemsRoundTrip(t *testing.T) {
	root := QuickRandom(30, 4)
	items := ToItems(root)
	if len(items) != 30 {
		t.Fatalf("expected 30 flat items, got %d", len(items))
	}
	for _, it := range items {
		if len(it.Children) != 0 {
			t.Fatalf("flat item %s kept children", it.ID)
		}
	}
	var warnings []string
	parsed, err := loader.ParseJSONL(bytes.NewBufferString(ToJSONL(items)), loader.ParseOptions{
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	rebuilt := &loader.Item{ID: root.ID, Label: root.Label, Kind: root.Kind, Children: loader.BuildHierarchy(parsed)}
	rebuilt.Walk(func(it *loader.Item, _ int) bool {
		it.Parent = ""
		return true
	})
	AssertJSONEqual(t, root, rebuilt)
}

func TestWriteOutlineFile(t *testing.T) {
	path := WriteOutlineFile(t, filepath.Join(t.TempDir(), "nested", "outline.jsonl"), QuickTree(2, 2))
	root, err := loader.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	AssertItemCount(t, root, 6)
}

func TestGoldenFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GENERATE_GOLDEN", "1")
	NewGoldenFile(t, dir, "out.golden").Assert("a\nb\n")

	t.Setenv("GENERATE_GOLDEN", "")
	NewGoldenFile(t, dir, "out.golden").Assert("a\nb\n")
}

func TestAssertRowIDs(t *testing.T) {
	m := treetable.New(loader.ItemBuilder{}, QuickTree(1, 3))
	AssertRowIDs(t, m, "TEST-0", "TEST-1", "TEST-2")
	AssertRowsConsistent(t, m)
}

// TestReferenceProjection drives models over generated outlines through
// random expansion and policy changes and compares the row table against
// the naive projection after every step.
func TestReferenceProjection(t *testing.T) {
	filters := []string{"", "status:open", "-kind:bug", "p:<=1", "item 1", "kind:epic"}
	for seed := int64(1); seed <= 12; seed++ {
		t.Run(fmt.Sprintf("seed%d", seed), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Seed = seed
			cfg.StatusMix = []string{"open", "closed", "in_progress"}
			cfg.KindMix = []string{"epic", "task", "bug"}
			cfg.GroupRate = 0.2
			root := New(cfg).Random(60, 4)

			rng := rand.New(rand.NewSource(seed))
			m := treetable.New(loader.ItemBuilder{}, root, treetable.WithRootVisible(seed%2 == 0))
			AssertRowsConsistent(t, m)

			for step := 0; step < 40; step++ {
				rows := m.DisplayedRows()
				switch rng.Intn(6) {
				case 0, 1:
					if len(rows) > 0 {
						n := rows[rng.Intn(len(rows))]
						n.SetExpanded(!n.IsExpanded())
					}
				case 2:
					f, err := query.Parse(filters[rng.Intn(len(filters))])
					if err != nil {
						t.Fatal(err)
					}
					m.SetFilter(f)
				case 3:
					field := query.SortField(rng.Intn(int(query.NumSortFields)))
					m.SetOrder(query.Comparator(field, query.SortDirection(rng.Intn(2))))
				case 4:
					m.SetFilterOptions(rng.Intn(2) == 0, rng.Intn(2) == 0)
				case 5:
					if len(rows) > 0 {
						if err := m.ExpandAll(rows[rng.Intn(len(rows))]); err != nil {
							t.Fatal(err)
						}
					}
				}
				AssertRowsConsistent(t, m)
				if t.Failed() {
					t.Fatalf("diverged at step %d", step)
				}
			}
		})
	}
}
