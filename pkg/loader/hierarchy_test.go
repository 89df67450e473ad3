package loader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ids(items []*Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestBuildHierarchy(t *testing.T) {
	items := []*Item{
		{ID: "c", Parent: "a"},
		{ID: "a"},
		{ID: "b", Parent: "a"},
		{ID: "d", Parent: "b"},
		{ID: "lost", Parent: "nowhere"},
	}
	roots := BuildHierarchy(items)
	require.Equal(t, []string{"a", "lost"}, ids(roots))
	require.Equal(t, []string{"c", "b"}, ids(roots[0].Children))
	require.Equal(t, []string{"d"}, ids(roots[0].Children[1].Children))
}

func TestBuildHierarchy_BreaksCycles(t *testing.T) {
	items := []*Item{
		{ID: "x", Parent: "y"},
		{ID: "y", Parent: "x"},
		{ID: "top"},
	}
	roots := BuildHierarchy(items)
	require.Equal(t, []string{"top", "x"}, ids(roots))
	require.Equal(t, []string{"y"}, ids(roots[1].Children))
	require.Empty(t, roots[1].Children[0].Children)

	total := 0
	for _, r := range roots {
		total += r.Count()
	}
	require.Equal(t, 3, total, "every item is attached exactly once")
}

func TestBuildHierarchy_Empty(t *testing.T) {
	require.Nil(t, BuildHierarchy(nil))
}

func TestItemWalkStops(t *testing.T) {
	root := &Item{ID: "r", Children: []*Item{{ID: "a", Children: []*Item{{ID: "a1"}}}, {ID: "b"}}}
	var seen []string
	root.Walk(func(it *Item, depth int) bool {
		seen = append(seen, it.ID)
		return it.ID != "a1"
	})
	require.Equal(t, []string{"r", "a", "a1"}, seen)
}

func TestItemString(t *testing.T) {
	require.Equal(t, "L", (&Item{ID: "i", Label: "L"}).String())
	require.Equal(t, "i", (&Item{ID: "i"}).String())
}
