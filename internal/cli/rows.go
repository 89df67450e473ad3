package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/treegrid/pkg/loader"
	"github.com/vanderheijden86/treegrid/pkg/metrics"
	"github.com/vanderheijden86/treegrid/pkg/treetable"
)

// rowRecord is the JSON form of one displayed row.
type rowRecord struct {
	Row      int    `json:"row"`
	ID       string `json:"id"`
	Label    string `json:"label"`
	Kind     string `json:"kind,omitempty"`
	Status   string `json:"status,omitempty"`
	Priority int    `json:"priority"`
	Level    int    `json:"level"`
	Expanded bool   `json:"expanded"`
	Leaf     bool   `json:"leaf"`
	Group    bool   `json:"group,omitempty"`
	Context  bool   `json:"context,omitempty"` // shown only for a matching relative
}

func (c *CLI) rowsCommand() *cobra.Command {
	var (
		policy    policyFlags
		expandAll bool
		asJSON    bool
		stats     bool
		width     int
	)
	cmd := &cobra.Command{
		Use:   "rows SOURCE...",
		Short: "Print the projected rows of outlines",
		Long: `Print the rows a tree grid would show for the given sources: files,
directories of outlines, configured source names or favorite numbers.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if stats {
				metrics.ResetAll()
			}

			tree, _, err := c.open(ctx, args)
			if err != nil {
				return err
			}
			defer tree.Close()

			m, err := newModel(tree, policy.view(cmd, c.cfg.View))
			if err != nil {
				return err
			}
			if expandAll {
				if err := m.ExpandAll(m.Root()); err != nil {
					return err
				}
			}
			loggerFromContext(ctx).Debug("projected", "rows", m.RowCount())

			records := rowRecords(m)
			out := cmd.OutOrStdout()
			if asJSON {
				err = writeRowsJSON(out, records)
			} else {
				writeRowsTable(out, records, width)
			}
			if err != nil {
				return err
			}
			if stats {
				writeStats(cmd.ErrOrStderr())
			}
			return tree.Err()
		},
	}
	policy.register(cmd)
	fs := cmd.Flags()
	fs.BoolVar(&expandAll, "expand-all", false, "expand the whole tree")
	fs.BoolVar(&asJSON, "json", false, "print rows as JSON")
	fs.BoolVar(&stats, "stats", false, "print timing statistics to stderr")
	fs.IntVar(&width, "width", 60, "maximum label width in cells")
	return cmd
}

func level(m *treetable.Model, n *treetable.Node) int {
	d := n.Depth()
	if !m.RootVisible() {
		d--
	}
	return d
}

func rowRecords(m *treetable.Model) []rowRecord {
	rows := m.DisplayedRows()
	records := make([]rowRecord, len(rows))
	for i, n := range rows {
		r := rowRecord{
			Row:      i,
			Level:    level(m, n),
			Expanded: n.IsExpanded(),
			Leaf:     n.IsLeaf(),
			Group:    n.IsSynthetic(),
			Context:  !n.IsSynthetic() && !n.Matches(),
		}
		if it := loader.ItemOf(n); it != nil {
			r.ID = it.ID
			r.Label = it.String()
			r.Kind = it.Kind
			r.Status = it.Status
			r.Priority = it.Priority
		} else {
			r.Label = fmt.Sprint(n.Object())
		}
		records[i] = r
	}
	return records
}

func writeRowsJSON(w io.Writer, records []rowRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func indicator(r rowRecord) string {
	switch {
	case r.Leaf:
		return "•"
	case r.Expanded:
		return "▾"
	default:
		return "▸"
	}
}

func writeRowsTable(w io.Writer, records []rowRecord, width int) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Row", "ID", "Kind", "Pri", "Status", "Label"})
	tbl.SetBorder(false)
	tbl.SetAutoWrapText(false)
	tbl.SetAlignment(tablewriter.ALIGN_LEFT)
	tbl.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	for _, r := range records {
		label := strings.Repeat("  ", max(r.Level, 0)) + indicator(r) + " " + r.Label
		if width > 0 {
			label = runewidth.Truncate(label, width, "…")
		}
		kind, pri := r.Kind, "P"+strconv.Itoa(r.Priority)
		if r.Group {
			kind, pri = "group", ""
		}
		if r.Context {
			label += " (context)"
		}
		tbl.Append([]string{strconv.Itoa(r.Row), r.ID, kind, pri, r.Status, label})
	}
	tbl.Render()
}

func writeStats(w io.Writer) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Operation", "Count", "Total ms", "Avg ms", "Max ms"})
	tbl.SetBorder(false)
	for _, s := range metrics.AllTimingStats() {
		tbl.Append([]string{
			s.Name,
			strconv.FormatInt(s.Count, 10),
			fmt.Sprintf("%.3f", s.TotalMs),
			fmt.Sprintf("%.3f", s.AvgMs),
			fmt.Sprintf("%.3f", s.MaxMs),
		})
	}
	tbl.Render()
}
