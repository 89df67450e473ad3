package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"

	"github.com/vanderheijden86/treegrid/pkg/version"
)

const testOutline = `[
  {"id": "epic", "label": "Epic One", "kind": "epic", "priority": 1, "children": [
    {"id": "t1", "label": "Task One", "kind": "task", "priority": 2},
    {"id": "t2", "label": "Task Two", "kind": "task", "priority": 2}
  ]},
  {"id": "s1", "label": "Standalone", "kind": "task", "status": "closed", "priority": 3}
]`

type result struct {
	out string
	log string
	err error
}

func writeOutline(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "outline.json")
	require.NoError(t, os.WriteFile(path, []byte(testOutline), 0o644))
	return path
}

func execute(t *testing.T, args ...string) result {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.ExecuteContext(context.Background())
	return result{out: out.String(), log: logs.String(), err: err}
}

func jsonRows(t *testing.T, args ...string) []rowRecord {
	t.Helper()
	res := execute(t, append([]string{"rows", "--json"}, args...)...)
	require.NoError(t, res.err)
	var rows []rowRecord
	require.NoError(t, json.Unmarshal([]byte(res.out), &rows))
	return rows
}

func ids(rows []rowRecord) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestRowsTable(t *testing.T) {
	path := writeOutline(t)
	res := execute(t, "rows", path)
	require.NoError(t, res.err)

	for _, want := range []string{"LABEL", "Epic One", "Task One", "Task Two", "Standalone", "▾", "closed"} {
		require.Contains(t, res.out, want)
	}
	require.NotContains(t, res.out, "outline.json")
	require.Contains(t, res.log, "Loaded 4 items from 1 sources")
}

func TestRowsJSON(t *testing.T) {
	path := writeOutline(t)
	rows := jsonRows(t, path)

	require.Equal(t, []string{"epic", "t1", "t2", "s1"}, ids(rows))
	require.Equal(t, 0, rows[0].Level)
	require.True(t, rows[0].Expanded)
	require.False(t, rows[0].Leaf)
	require.Equal(t, 1, rows[1].Level)
	require.True(t, rows[1].Leaf)
	require.Equal(t, 3, rows[3].Row)
}

func TestRowsPolicyFlags(t *testing.T) {
	path := writeOutline(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"filter", []string{"--filter", "status:closed"}, []string{"s1"}},
		{"collapsed", []string{"--depth", "0"}, []string{"epic", "s1"}},
		{"expand all", []string{"--depth", "0", "--expand-all"}, []string{"epic", "t1", "t2", "s1"}},
		{"sort label desc", []string{"--sort", "label", "--desc"}, []string{"s1", "epic", "t2", "t1"}},
		{"ancestors", []string{"--filter", "id:t2", "--ancestors"}, []string{"epic", "t2"}},
		{"children", []string{"--filter", "kind:epic", "--children"}, []string{"epic", "t1", "t2"}},
		{"root", []string{"--root"}, []string{"outline.json", "epic", "s1"}},
		{"root expanded", []string{"--root", "--depth", "2"}, []string{"outline.json", "epic", "t1", "t2", "s1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ids(jsonRows(t, append([]string{path}, tt.args...)...)))
		})
	}
}

func TestRowsContextRows(t *testing.T) {
	rows := jsonRows(t, writeOutline(t), "--filter", "id:t2", "--ancestors")
	require.True(t, rows[0].Context)
	require.False(t, rows[1].Context)
}

func TestRowsInvalidPolicy(t *testing.T) {
	path := writeOutline(t)
	require.Error(t, execute(t, "rows", path, "--filter", "priority:high").err)
	require.Error(t, execute(t, "rows", path, "--sort", "bogus").err)
}

func TestRowsStats(t *testing.T) {
	res := execute(t, "rows", writeOutline(t), "--stats")
	require.NoError(t, res.err)
	require.Contains(t, res.log, "OPERATION")
}

func TestRowsMissingSource(t *testing.T) {
	res := execute(t, "rows", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, res.err)
}

func TestReveal(t *testing.T) {
	path := writeOutline(t)

	res := execute(t, "reveal", path, "t2", "--depth", "0")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "t2 is at row 2")
}

func TestRevealFilteredOut(t *testing.T) {
	path := writeOutline(t)

	res := execute(t, "reveal", path, "t1", "--filter", "kind:epic")
	require.NoError(t, res.err)
	require.Contains(t, res.out, "t1 is hidden by the filter")
	require.Contains(t, res.out, "nearest row: 0 (Epic One)")
	require.Contains(t, res.out, "would need: Task One")
}

func TestRevealUnknownItem(t *testing.T) {
	res := execute(t, "reveal", writeOutline(t), "nope")
	require.ErrorContains(t, res.err, `no item "nope"`)
}

func TestExportThenRows(t *testing.T) {
	path := writeOutline(t)
	db := filepath.Join(t.TempDir(), "items.db")

	res := execute(t, "export", path, db)
	require.NoError(t, res.err)
	require.Contains(t, res.log, "Exported 4 items")

	rows := jsonRows(t, db, "--expand-all")
	require.Equal(t, []string{"epic", "t1", "t2", "s1"}, ids(rows))
	require.Equal(t, "Task Two", rows[2].Label)

	res = execute(t, "export", db, filepath.Join(t.TempDir(), "copy.db"))
	require.Error(t, res.err)
}

func TestVersion(t *testing.T) {
	res := execute(t, "version")
	require.NoError(t, res.err)
	require.Equal(t, "treegrid "+version.Version+"\n", res.out)
}

func TestViewNeedsTerminal(t *testing.T) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		t.Skip("stdout is a terminal")
	}
	res := execute(t, "view", writeOutline(t))
	require.ErrorIs(t, res.err, ErrNoTerminal)
}
