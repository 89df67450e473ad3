package cli

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/treegrid/pkg/loader"
	"github.com/vanderheijden86/treegrid/pkg/treetable"
)

func (c *CLI) revealCommand() *cobra.Command {
	var policy policyFlags
	cmd := &cobra.Command{
		Use:   "reveal SOURCE... ID",
		Short: "Show where an item lands in the projected rows",
		Long: `Expand the path to an item and print its row. When the filter hides the
item, print the nearest displayed row and the rows that would have to be
shown to reach it.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[len(args)-1]

			tree, _, err := c.open(ctx, args[:len(args)-1])
			if err != nil {
				return err
			}
			defer tree.Close()

			m, err := newModel(tree, policy.view(cmd, c.cfg.View))
			if err != nil {
				return err
			}
			n := findItem(m, id)
			if n == nil {
				return errors.Newf("no item %q", id)
			}
			m.ExpandPath(n)

			out := cmd.OutOrStdout()
			if row := m.RowOf(n); row != treetable.NoRow {
				fmt.Fprintf(out, "%s is at row %d\n", id, row)
				return tree.Err()
			}

			fmt.Fprintf(out, "%s is hidden by the filter\n", id)
			if near := m.FindNearestDisplayedRow(n); near != treetable.NoRow {
				fmt.Fprintf(out, "nearest row: %d (%s)\n", near, rowLabel(m.RowAt(near)))
			}
			labels := make([]string, 0)
			for _, r := range m.NecessaryRows(n) {
				labels = append(labels, rowLabel(r))
			}
			fmt.Fprintf(out, "would need: %s\n", strings.Join(labels, " › "))
			return tree.Err()
		},
	}
	policy.register(cmd)
	return cmd
}

func rowLabel(n *treetable.Node) string {
	if n == nil {
		return ""
	}
	if it := loader.ItemOf(n); it != nil {
		return it.String()
	}
	return fmt.Sprint(n.Object())
}
