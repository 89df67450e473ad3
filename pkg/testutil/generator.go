// Package testutil provides outline fixture generators and projection
// assertions. All generators produce deterministic output for reproducible
// tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/treegrid/pkg/loader"
)

// GeneratorConfig controls item generation.
type GeneratorConfig struct {
	Seed      int64     // Random seed for determinism (0 = use current time)
	IDPrefix  string    // Prefix for item IDs (default: "TEST")
	BaseTime  time.Time // Base time for created timestamps (default: fixed time)
	StatusMix []string  // Status distribution (nil = all open)
	KindMix   []string  // Kind distribution (nil = all task)
	GroupRate float64   // Share of inner nodes turned into synthetic groups
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:      42, // Deterministic
		IDPrefix:  "TEST",
		BaseTime:  time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		StatusMix: []string{"open"},
		KindMix:   []string{"task"},
	}
}

// Generator creates outline fixtures with various shapes.
type Generator struct {
	cfg  GeneratorConfig
	rng  *rand.Rand
	next int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "TEST"
	}
	if len(cfg.StatusMix) == 0 {
		cfg.StatusMix = []string{"open"}
	}
	if len(cfg.KindMix) == 0 {
		cfg.KindMix = []string{"task"}
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// ============================================================================
// Outline Shapes
// ============================================================================

// Item creates one detached item with the next sequential ID.
func (g *Generator) Item() *loader.Item {
	i := g.next
	g.next++
	return &loader.Item{
		ID:       fmt.Sprintf("%s-%d", g.cfg.IDPrefix, i),
		Label:    fmt.Sprintf("Item %d", i),
		Kind:     g.pick(g.cfg.KindMix),
		Status:   g.pick(g.cfg.StatusMix),
		Priority: g.rng.Intn(5), // P0-P4
		Created:  g.cfg.BaseTime.Add(time.Duration(i) * time.Hour),
	}
}

func (g *Generator) root(shape string) *loader.Item {
	return &loader.Item{ID: g.cfg.IDPrefix, Label: shape, Kind: "file"}
}

// Flat creates a root with n leaf children.
func (g *Generator) Flat(n int) *loader.Item {
	root := g.root("flat")
	for i := 0; i < n; i++ {
		root.Children = append(root.Children, g.Item())
	}
	return root
}

// Chain creates a single path of the given depth below the root.
// Properties: one node per level, the last one is a leaf.
func (g *Generator) Chain(depth int) *loader.Item {
	root := g.root("chain")
	parent := root
	for i := 0; i < depth; i++ {
		it := g.Item()
		parent.Children = []*loader.Item{it}
		parent = it
	}
	return root
}

// Tree creates a full tree with given depth and branching factor.
// Each non-leaf node has `breadth` children.
func (g *Generator) Tree(depth, breadth int) *loader.Item {
	if depth < 1 {
		depth = 1
	}
	if breadth < 1 {
		breadth = 1
	}
	root := g.root("tree")

	// BFS-style generation
	currentLevel := []*loader.Item{root}
	for d := 0; d < depth; d++ {
		var nextLevel []*loader.Item
		for _, parent := range currentLevel {
			for b := 0; b < breadth; b++ {
				child := g.Item()
				parent.Children = append(parent.Children, child)
				nextLevel = append(nextLevel, child)
			}
		}
		currentLevel = nextLevel
	}
	g.groupInner(root)
	return root
}

// Random creates size items attached below uniformly chosen earlier nodes,
// with at most maxChildren children per node.
func (g *Generator) Random(size, maxChildren int) *loader.Item {
	if maxChildren < 1 {
		maxChildren = 1
	}
	root := g.root("random")
	open := []*loader.Item{root}
	for i := 0; i < size; i++ {
		k := g.rng.Intn(len(open))
		parent := open[k]
		child := g.Item()
		parent.Children = append(parent.Children, child)
		if len(parent.Children) >= maxChildren {
			open = append(open[:k], open[k+1:]...)
		}
		open = append(open, child)
	}
	g.groupInner(root)
	return root
}

// groupInner turns a share of inner nodes into synthetic groups.
func (g *Generator) groupInner(root *loader.Item) {
	if g.cfg.GroupRate <= 0 {
		return
	}
	root.Walk(func(it *loader.Item, depth int) bool {
		if depth > 0 && len(it.Children) > 0 && g.rng.Float64() < g.cfg.GroupRate {
			it.Group = true
			it.Kind = ""
			it.Status = ""
		}
		return true
	})
}

// ============================================================================
// Flattening
// ============================================================================

// ToItems flattens an outline below root into a list with Parent links set,
// in depth-first order. The root itself is omitted.
func ToItems(root *loader.Item) []*loader.Item {
	var out []*loader.Item
	var walk func(parent *loader.Item)
	walk = func(parent *loader.Item) {
		for _, c := range parent.Children {
			flat := *c
			flat.Children = nil
			if parent != root {
				flat.Parent = parent.ID
			}
			out = append(out, &flat)
			walk(c)
		}
	}
	walk(root)
	return out
}

// ToJSONL converts items to JSONL format (one JSON object per line).
func ToJSONL(items []*loader.Item) string {
	var sb strings.Builder
	for _, it := range items {
		data, err := json.Marshal(it)
		if err != nil {
			continue
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Helper methods

func (g *Generator) pick(mix []string) string {
	return mix[g.rng.Intn(len(mix))]
}

// ============================================================================
// Convenience Functions
// ============================================================================

// QuickTree creates a tree fixture with default settings.
func QuickTree(depth, breadth int) *loader.Item {
	return NewDefault().Tree(depth, breadth)
}

// QuickRandom creates a random outline with default settings.
func QuickRandom(size, maxChildren int) *loader.Item {
	return NewDefault().Random(size, maxChildren)
}

// Empty returns a root without children for edge case testing.
func Empty() *loader.Item {
	return NewDefault().root("empty")
}

// Single returns a root with one leaf.
func Single() *loader.Item {
	gen := NewDefault()
	root := gen.root("single")
	root.Children = []*loader.Item{{
		ID:       fmt.Sprintf("%s-single", gen.cfg.IDPrefix),
		Label:    "Single Item",
		Kind:     "task",
		Status:   "open",
		Priority: 1,
		Created:  gen.cfg.BaseTime,
	}}
	return root
}
