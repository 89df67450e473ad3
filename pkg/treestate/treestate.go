// Package treestate persists the expand/collapse state of a tree model.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "expanded": {
//	    "a-123": true,   // explicitly expanded
//	    "a-456": false   // explicitly collapsed
//	  }
//	}
//
// Only deviations from the default are stored: nodes on the first displayed
// level are expanded by default, deeper nodes collapsed. A missing or
// corrupted file means defaults.
package treestate

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"

	"github.com/vanderheijden86/treegrid/pkg/debug"
	"github.com/vanderheijden86/treegrid/pkg/treetable"
)

// Version is the current schema version.
const Version = 1

// FileName is the state file name inside the state directory.
const FileName = "tree-state.json"

// TreeState is the persisted expansion state keyed by node key.
type TreeState struct {
	Version  int             `json:"version"`
	Expanded map[string]bool `json:"expanded"`
}

// KeyFunc names a node for persistence. Nodes with an empty key are not
// recorded or restored.
type KeyFunc func(n *treetable.Node) string

// New returns an empty state.
func New() *TreeState {
	return &TreeState{Version: Version, Expanded: make(map[string]bool)}
}

// Path returns the state file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// PathFor returns a state file path in dir specific to a set of sources, so
// different outlines keep separate expansion state.
func PathFor(dir string, sources []string) string {
	abs := make([]string, len(sources))
	for i, s := range sources {
		if a, err := filepath.Abs(s); err == nil {
			s = a
		}
		abs[i] = s
	}
	sum := sha256.Sum256([]byte(strings.Join(abs, "\n")))
	name := strings.TrimSuffix(FileName, ".json") + "-" + hex.EncodeToString(sum[:])[:12] + ".json"
	return filepath.Join(dir, name)
}

// level returns the depth of n counted from the first displayed level.
func level(m *treetable.Model, n *treetable.Node) int {
	d := n.Depth()
	if !m.RootVisible() {
		d--
	}
	return d
}

// hiddenRoot reports whether n is the invisible root, which is always open.
func hiddenRoot(m *treetable.Model, n *treetable.Node) bool {
	return n.IsRoot() && !m.RootVisible()
}

func defaultExpanded(m *treetable.Model, n *treetable.Node) bool {
	return level(m, n) < 1
}

// Capture records the expansion flags of every materialized node that
// differ from the default.
func Capture(m *treetable.Model, key KeyFunc) *TreeState {
	state := New()
	var walk func(n *treetable.Node)
	walk = func(n *treetable.Node) {
		if !hiddenRoot(m, n) {
			if k := key(n); k != "" && n.IsExpanded() != defaultExpanded(m, n) {
				state.Expanded[k] = n.IsExpanded()
			}
		}
		for _, c := range n.LoadedChildren() {
			walk(c)
		}
	}
	walk(m.Root())
	return state
}

// Apply sets expansion flags top-down from state, falling back to the
// default for unrecorded nodes. Only nodes that end up expanded have their
// children materialized. Keys in state that match no node are ignored.
func Apply(m *treetable.Model, state *TreeState, key KeyFunc) {
	if state == nil {
		state = New()
	}
	var walk func(n *treetable.Node)
	walk = func(n *treetable.Node) {
		if !hiddenRoot(m, n) {
			want := defaultExpanded(m, n)
			if k := key(n); k != "" {
				if v, ok := state.Expanded[k]; ok {
					want = v
				}
			}
			n.SetExpanded(want)
			if !want {
				return
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(m.Root())
}

// ExpandToLevel expands nodes above the given displayed level and collapses
// the rest, materializing only what ends up expanded. Level 0 is the first
// displayed level; a negative level collapses everything.
func ExpandToLevel(m *treetable.Model, lvl int) {
	var walk func(n *treetable.Node)
	walk = func(n *treetable.Node) {
		if !hiddenRoot(m, n) {
			n.SetExpanded(level(m, n) < lvl)
			if !n.IsExpanded() {
				return
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(m.Root())
}

// Load reads a state file. A missing file yields an empty state; a corrupted
// one is logged and also yields an empty state.
func Load(path string) *TreeState {
	data, err := os.ReadFile(path)
	if err != nil {
		return New()
	}
	var state TreeState
	if err := json.Unmarshal(data, &state); err != nil {
		debug.Log("invalid tree state file %s, using defaults: %v", path, err)
		return New()
	}
	if state.Version != Version {
		debug.Log("tree state %s has version %d, using defaults", path, state.Version)
		return New()
	}
	if state.Expanded == nil {
		state.Expanded = make(map[string]bool)
	}
	return &state
}

// Save writes state to path, creating the directory if needed.
func Save(path string, state *TreeState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal tree state")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create state directory for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write tree state to %s", path)
	}
	return nil
}
