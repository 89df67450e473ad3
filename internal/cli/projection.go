package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/treegrid/internal/datasource"
	"github.com/vanderheijden86/treegrid/pkg/config"
	"github.com/vanderheijden86/treegrid/pkg/loader"
	"github.com/vanderheijden86/treegrid/pkg/query"
	"github.com/vanderheijden86/treegrid/pkg/treestate"
	"github.com/vanderheijden86/treegrid/pkg/treetable"
)

// policyFlags are the projection options shared by the commands. Flags the
// user sets override the configured view.
type policyFlags struct {
	filter    string
	sort      string
	desc      bool
	root      bool
	ancestors bool
	children  bool
	depth     int
}

func (f *policyFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.filter, "filter", "", "filter expression, e.g. 'status:open -kind:bug'")
	fs.StringVar(&f.sort, "sort", "", "sort field: none, default, label, priority, created, status, kind, id")
	fs.BoolVar(&f.desc, "desc", false, "sort descending")
	fs.BoolVar(&f.root, "root", false, "show the root as a row")
	fs.BoolVar(&f.ancestors, "ancestors", false, "show the ancestors of matching items")
	fs.BoolVar(&f.children, "children", false, "show the children of matching items")
	fs.IntVar(&f.depth, "depth", 1, "number of levels expanded initially")
}

func (f *policyFlags) view(cmd *cobra.Command, base config.ViewConfig) config.ViewConfig {
	fs := cmd.Flags()
	if fs.Changed("filter") {
		base.Filter = f.filter
	}
	if fs.Changed("sort") {
		base.SortField = f.sort
	}
	if fs.Changed("desc") {
		base.SortDescending = f.desc
	}
	if fs.Changed("root") {
		base.RootVisible = f.root
	}
	if fs.Changed("ancestors") {
		base.IncludeAncestors = f.ancestors
	}
	if fs.Changed("children") {
		base.IncludeChildren = f.children
	}
	if fs.Changed("depth") {
		base.ExpandDepth = f.depth
	}
	return base
}

// open resolves args and opens them, logging what was loaded.
func (c *CLI) open(ctx context.Context, args []string) (*datasource.Tree, []datasource.DataSource, error) {
	logger := loggerFromContext(ctx)
	p := newProgress(logger)

	sources, err := datasource.Resolve(args, c.cfg)
	if err != nil {
		return nil, nil, err
	}
	for _, s := range sources {
		logger.Debug("source", "path", s.Path, "type", s.Type, "size", s.Size)
	}
	tree, err := datasource.Open(ctx, sources)
	if err != nil {
		return nil, nil, err
	}
	if tree.Reloadable {
		p.done(fmt.Sprintf("Loaded %d items from %d sources", tree.Root.Count()-1, len(sources)))
	} else {
		p.done(fmt.Sprintf("Opened %s", sources[0].Path))
	}
	return tree, sources, nil
}

// newModel projects tree with the given view and applies its initial
// expansion depth.
func newModel(tree *datasource.Tree, view config.ViewConfig) (*treetable.Model, error) {
	filter, err := query.Parse(view.Filter)
	if err != nil {
		return nil, err
	}
	field, err := query.ParseSortField(view.SortField)
	if err != nil {
		return nil, err
	}
	dir := query.SortAscending
	if view.SortDescending {
		dir = query.SortDescending
	}
	m := treetable.New(tree.Builder, tree.Root,
		treetable.WithRootVisible(view.RootVisible),
		treetable.WithFilterOptions(view.IncludeAncestors, view.IncludeChildren),
		treetable.WithFilter(filter),
		treetable.WithOrder(query.Comparator(field, dir)),
	)
	treestate.ExpandToLevel(m, view.ExpandDepth)
	return m, tree.Err()
}

// findItem searches the tree for an item ID, materializing nodes as needed.
func findItem(m *treetable.Model, id string) *treetable.Node {
	var found *treetable.Node
	var walk func(n *treetable.Node)
	walk = func(n *treetable.Node) {
		for _, c := range n.Children() {
			if found != nil {
				return
			}
			if it := loader.ItemOf(c); it != nil && it.ID == id {
				found = c
				return
			}
			walk(c)
		}
	}
	if it := loader.ItemOf(m.Root()); it != nil && it.ID == id {
		return m.Root()
	}
	walk(m.Root())
	return found
}
