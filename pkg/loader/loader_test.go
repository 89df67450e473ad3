package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/treegrid/pkg/loader"
	"github.com/vanderheijden86/treegrid/pkg/treetable"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func labels(items []*loader.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func TestLoadFile_JSONDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tree.json", `{
		"id": "root", "label": "Root",
		"children": [
			{"id": "a", "label": "A", "status": " Open "},
			{"id": "g", "label": "Group", "group": true, "children": [{"id": "b"}]}
		]
	}`)

	root, err := loader.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "root", root.ID)
	require.Equal(t, []string{"A", "Group"}, labels(root.Children))
	require.Equal(t, "open", root.Children[0].Status)
	require.True(t, root.Children[1].IsSynthetic())
	require.Equal(t, "b", root.Children[1].Children[0].Label, "label falls back to id")
	require.Equal(t, 4, root.Count())
}

func TestLoadFile_YAMLList(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tree.yaml", `
- id: a
  label: A
  priority: 2
  children:
    - id: a1
      label: A1
- id: b
  label: B
`)

	root, err := loader.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "tree.yaml", root.ID)
	require.Equal(t, "file", root.Kind)
	require.Equal(t, []string{"A", "B"}, labels(root.Children))
	require.Equal(t, 2, root.Children[0].Priority)
	require.Equal(t, []string{"A1"}, labels(root.Children[0].Children))
}

func TestLoadFile_YAMLWithDocumentMarker(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tree.yml", "---\nid: r\nlabel: R\nchildren:\n  - id: x\n")

	root, err := loader.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "r", root.ID)
	require.Len(t, root.Children, 1)
}

func TestLoadFile_JSONL(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "items.jsonl", strings.Join([]string{
		"\xEF\xBB\xBF" + `{"id":"a","label":"A"}`,
		`{"id":"a1","label":"A1","parent":"a"}`,
		``,
		`{"id":"orphan","label":"O","parent":"missing"}`,
		`{not json}`,
		`{"id":"a2","label":"A2","parent":"a"}`,
	}, "\n"))

	root, err := loader.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "O"}, labels(root.Children))
	require.Equal(t, []string{"A1", "A2"}, labels(root.Children[0].Children))
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := loader.LoadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "reading outline")

	txt := writeFile(t, dir, "notes.txt", "hello")
	_, err = loader.LoadFile(txt)
	require.ErrorIs(t, err, loader.ErrUnsupportedFormat)

	bad := writeFile(t, dir, "bad.json", `{"id": `)
	_, err = loader.LoadFile(bad)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing outline")

	noID := writeFile(t, dir, "noid.json", `{"label": "x"}`)
	_, err = loader.LoadFile(noID)
	require.Error(t, err)
}

func TestLoadFile_EmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.json", "  \n")

	root, err := loader.LoadFile(path)
	require.NoError(t, err)
	require.Empty(t, root.Children)
}

func TestParseJSONL_Warnings(t *testing.T) {
	input := strings.Join([]string{
		`{"id":"a"}`,
		`{"label":"no id"}`,
		`garbage`,
		`{"id":"a","label":"dup"}`,
		`{"id":"self","parent":"self"}`,
	}, "\n")

	var warnings []string
	items, err := loader.ParseJSONL(strings.NewReader(input), loader.ParseOptions{
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Len(t, warnings, 4)
	require.Contains(t, warnings[0], "line 2")
	require.Contains(t, warnings[1], "malformed JSON on line 3")
	require.Contains(t, warnings[2], "duplicate")
	require.Contains(t, warnings[3], "own parent")
}

func TestParseJSONL_LineTooLong(t *testing.T) {
	long := `{"id":"big","label":"` + strings.Repeat("x", 200) + `"}`
	input := long + "\n" + `{"id":"small"}`

	var warnings []string
	items, err := loader.ParseJSONL(strings.NewReader(input), loader.ParseOptions{
		BufferSize:     64,
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "small", items[0].ID)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "line too long")
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"id":"a","label":"A"}`)
	b := writeFile(t, dir, "b.yaml", "id: b\nlabel: B\n")

	root, err := loader.LoadAll(context.Background(), []string{b, a})
	require.NoError(t, err)
	require.Equal(t, loader.WorkspaceID, root.ID)
	require.Equal(t, []string{"B", "A"}, labels(root.Children), "argument order is kept")

	single, err := loader.LoadAll(context.Background(), []string{a})
	require.NoError(t, err)
	require.Equal(t, "a", single.ID)

	_, err = loader.LoadAll(context.Background(), []string{a, filepath.Join(dir, "nope.json")})
	require.Error(t, err)

	_, err = loader.LoadAll(context.Background(), nil)
	require.Error(t, err)
}

func TestItemBuilder_DrivesModel(t *testing.T) {
	root := &loader.Item{ID: "r", Label: "r", Children: []*loader.Item{
		{ID: "a", Label: "a", Children: []*loader.Item{{ID: "a1", Label: "a1"}}},
		{ID: "b", Label: "b"},
	}}
	m := treetable.New(loader.ItemBuilder{}, root)

	require.Equal(t, 2, m.RowCount())
	first := m.RowAt(0)
	require.Equal(t, "a", loader.ItemOf(first).ID)
	require.True(t, first.SetExpanded(true))
	require.Equal(t, 3, m.RowCount())
	require.Equal(t, "a1", loader.ItemOf(m.RowAt(1)).ID)
	require.Nil(t, loader.ItemOf(nil))
}
