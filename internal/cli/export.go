package cli

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/treegrid/pkg/loader"
)

func (c *CLI) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export SOURCE... DB",
		Short: "Write outlines into a SQLite database",
		Long: `Load the given outlines and write every item into a SQLite database.
The database can then be browsed lazily with view or rows.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dbPath := args[len(args)-1]

			tree, _, err := c.open(ctx, args[:len(args)-1])
			if err != nil {
				return err
			}
			defer tree.Close()
			if !tree.Reloadable {
				return errors.New("export reads outline files, not databases")
			}

			p := newProgress(loggerFromContext(ctx))
			n, err := loader.ExportSQLite(tree.Root, dbPath)
			if err != nil {
				return errors.Wrapf(err, "exporting to %s", dbPath)
			}
			p.done(fmt.Sprintf("Exported %d items to %s", n, dbPath))
			return nil
		},
	}
}
