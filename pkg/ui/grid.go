package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/treegrid/pkg/loader"
	"github.com/vanderheijden86/treegrid/pkg/metrics"
	"github.com/vanderheijden86/treegrid/pkg/treestate"
	"github.com/vanderheijden86/treegrid/pkg/treetable"
)

// Grid renders a window of a treetable.Model's rows and keeps the cursor on
// the same node while rows are inserted or deleted around it.
type Grid struct {
	model    *treetable.Model
	theme    Theme
	cursor   int
	selected *treetable.Node
	offset   int // first rendered row
	width    int
	height   int

	// lost is set when a deletion covered the cursor row; the cursor is
	// re-anchored once the mutation's events have all been delivered.
	lost   bool
	remove func()
}

// NewGrid attaches a grid to m. Call Close to detach it.
func NewGrid(m *treetable.Model, theme Theme) *Grid {
	g := &Grid{model: m, theme: theme}
	g.remove = m.AddRowListener(g.onRows)
	g.selected = m.RowAt(0)
	return g
}

// Close detaches the grid from its model.
func (g *Grid) Close() {
	if g.remove != nil {
		g.remove()
		g.remove = nil
	}
}

// Model returns the projected model.
func (g *Grid) Model() *treetable.Model { return g.model }

// Cursor returns the selected row.
func (g *Grid) Cursor() int { return g.cursor }

// Selected returns the node under the cursor, or nil for an empty table.
func (g *Grid) Selected() *treetable.Node { return g.model.RowAt(g.cursor) }

// SelectedItem returns the item under the cursor, or nil.
func (g *Grid) SelectedItem() *loader.Item { return loader.ItemOf(g.Selected()) }

// SetSize sets the rendering area; height counts the header row.
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.ensureCursorVisible()
}

func (g *Grid) onRows(ev treetable.RowEvent) {
	count := ev.Last - ev.First + 1
	switch ev.Kind {
	case treetable.RowsInserted:
		if g.selected != nil && g.cursor >= ev.First {
			g.cursor += count
		}
	case treetable.RowsDeleted:
		switch {
		case g.cursor > ev.Last:
			g.cursor -= count
		case g.cursor >= ev.First:
			g.lost = true
		}
	case treetable.RowsInvalidated:
		g.lost = true
	}
}

// settle re-anchors the cursor after a mutation has been delivered.
func (g *Grid) settle() {
	if g.lost {
		g.lost = false
		if r := g.model.RowOf(g.selected); r != treetable.NoRow {
			g.cursor = r
		} else if r := g.model.FindNearestDisplayedRow(g.selected); r != treetable.NoRow {
			g.cursor = r
		}
	}
	g.clamp()
	g.selected = g.model.RowAt(g.cursor)
	g.ensureCursorVisible()
}

func (g *Grid) clamp() {
	n := g.model.RowCount()
	if g.cursor >= n {
		g.cursor = n - 1
	}
	if g.cursor < 0 {
		g.cursor = 0
	}
}

// Do runs fn against the model and re-anchors the cursor afterwards. Every
// mutation made while the grid is attached should go through Do.
func (g *Grid) Do(fn func(m *treetable.Model)) {
	fn(g.model)
	g.settle()
}

// ── Navigation ──

func (g *Grid) pageSize() int {
	if g.height <= 2 {
		return 1
	}
	return g.height - 2 // header and position indicator
}

func (g *Grid) moveTo(row int) {
	g.cursor = row
	g.settle()
}

func (g *Grid) MoveUp()   { g.moveTo(g.cursor - 1) }
func (g *Grid) MoveDown() { g.moveTo(g.cursor + 1) }
func (g *Grid) PageUp()   { g.moveTo(g.cursor - g.pageSize()) }
func (g *Grid) PageDown() { g.moveTo(g.cursor + g.pageSize()) }
func (g *Grid) Top()      { g.moveTo(0) }
func (g *Grid) Bottom()   { g.moveTo(g.model.RowCount() - 1) }

// JumpToParent moves to the row of the selected node's parent, if shown.
func (g *Grid) JumpToParent() {
	n := g.Selected()
	if n == nil || n.Parent() == nil {
		return
	}
	if r := g.model.RowOf(n.Parent()); r != treetable.NoRow {
		g.moveTo(r)
	}
}

// Select moves the cursor to n when it is displayed and reports whether it
// did.
func (g *Grid) Select(n *treetable.Node) bool {
	r := g.model.RowOf(n)
	if r == treetable.NoRow {
		return false
	}
	g.moveTo(r)
	return true
}

// ── Expansion ──

// Toggle expands or collapses the selected node.
func (g *Grid) Toggle() {
	n := g.Selected()
	if n == nil {
		return
	}
	g.Do(func(*treetable.Model) { n.SetExpanded(!n.IsExpanded()) })
}

// ExpandOrMoveToChild expands a collapsed node, or steps into an expanded one.
func (g *Grid) ExpandOrMoveToChild() {
	n := g.Selected()
	if n == nil || n.IsLeaf() {
		return
	}
	if !n.IsExpanded() {
		g.Do(func(*treetable.Model) { n.SetExpanded(true) })
		return
	}
	if next := g.model.RowAt(g.cursor + 1); next != nil && next.Parent() == n {
		g.moveTo(g.cursor + 1)
	}
}

// CollapseOrJumpToParent collapses an expanded node, or moves to its parent.
func (g *Grid) CollapseOrJumpToParent() {
	n := g.Selected()
	if n == nil {
		return
	}
	if n.IsExpanded() && !n.IsLeaf() {
		g.Do(func(*treetable.Model) { n.SetExpanded(false) })
		return
	}
	g.JumpToParent()
}

// ExpandAll expands the whole tree.
func (g *Grid) ExpandAll() error {
	var err error
	g.Do(func(m *treetable.Model) { err = m.ExpandAll(m.Root()) })
	return err
}

// CollapseAll collapses every displayed level below the root.
func (g *Grid) CollapseAll() {
	g.Do(func(m *treetable.Model) {
		root := m.Root()
		if m.RootVisible() {
			m.CollapseAll(root)
			return
		}
		for _, c := range root.LoadedChildren() {
			m.CollapseAll(c)
		}
	})
}

// ExpandToLevel expands nodes above the given displayed level and collapses
// the rest.
func (g *Grid) ExpandToLevel(level int) {
	g.Do(func(m *treetable.Model) { treestate.ExpandToLevel(m, level) })
}

// Reveal expands the path to n and selects it. When the filter hides n it
// selects the nearest displayed row instead and returns the nodes that
// would have to be shown for n to appear.
func (g *Grid) Reveal(n *treetable.Node) []*treetable.Node {
	g.Do(func(m *treetable.Model) { m.ExpandPath(n) })
	if g.Select(n) {
		return nil
	}
	if r := g.model.FindNearestDisplayedRow(n); r != treetable.NoRow {
		g.moveTo(r)
	}
	return g.model.NecessaryRows(n)
}

// ── Rendering ──

func (g *Grid) visibleRange() (start, end int) {
	total := g.model.RowCount()
	start = g.offset
	end = start + g.pageSize()
	if end > total {
		end = total
	}
	return start, end
}

func (g *Grid) ensureCursorVisible() {
	page := g.pageSize()
	if g.cursor < g.offset {
		g.offset = g.cursor
	}
	if g.cursor >= g.offset+page {
		g.offset = g.cursor - page + 1
	}
	maxOffset := g.model.RowCount() - page
	if maxOffset < 0 {
		maxOffset = 0
	}
	if g.offset > maxOffset {
		g.offset = maxOffset
	}
	if g.offset < 0 {
		g.offset = 0
	}
}

func (g *Grid) rowWidth() int {
	if g.width <= 0 {
		return 80
	}
	return g.width
}

// View renders the header, the visible rows and a position indicator.
func (g *Grid) View() string {
	defer metrics.Timer(metrics.UIRender)()

	if g.model.RowCount() == 0 {
		return g.renderEmptyState()
	}

	var sb strings.Builder
	sb.WriteString(g.RenderHeader())
	sb.WriteString("\n")

	start, end := g.visibleRange()
	for i := start; i < end; i++ {
		sb.WriteString(g.renderRow(g.model.RowAt(i), i == g.cursor))
		sb.WriteString("\n")
	}

	if g.model.RowCount() > g.pageSize() {
		sb.WriteString(g.theme.MutedText.Render(
			fmt.Sprintf(" %d-%d of %d", start+1, end, g.model.RowCount())))
	}
	return sb.String()
}

func (g *Grid) renderEmptyState() string {
	var sb strings.Builder
	sb.WriteString(g.theme.PrimaryBold.Render("No rows"))
	sb.WriteString("\n\n")
	if g.model.Filter() != nil {
		sb.WriteString(g.theme.MutedText.Render("Nothing matches the filter. Press esc to clear it."))
	} else {
		sb.WriteString(g.theme.MutedText.Render("The outline is empty."))
	}
	return sb.String()
}

// RenderHeader returns the column header row.
func (g *Grid) RenderHeader() string {
	return g.theme.Header.Width(g.rowWidth()).Render("  K PRI STAT  LABEL")
}

// level is the displayed depth of n: 0 for the first displayed level.
func (g *Grid) level(n *treetable.Node) int {
	d := n.Depth()
	if !g.model.RootVisible() {
		d--
	}
	return d
}

func (g *Grid) expandIndicator(n *treetable.Node) string {
	if !n.IsLoaded() && !n.IsExpanded() {
		return "▸"
	}
	if len(n.LoadedChildren()) == 0 {
		return "•"
	}
	if n.IsExpanded() {
		return "▾"
	}
	return "▸"
}

// renderRow renders one row: [indent][expand] [kind] [prio] [status] [label] [id age]
func (g *Grid) renderRow(n *treetable.Node, isSelected bool) string {
	width := g.rowWidth() - 1
	it := loader.ItemOf(n)

	var left strings.Builder
	left.WriteString(strings.Repeat("  ", max(g.level(n), 0)))
	left.WriteString(g.theme.MutedText.Render(g.expandIndicator(n)))
	left.WriteString(" ")

	label := fmt.Sprint(n.Object())
	var id string
	if it != nil {
		label = it.String()
		if !n.IsSynthetic() {
			left.WriteString(RenderKindBadge(it.Kind))
			left.WriteString(" ")
			left.WriteString(RenderPriorityBadge(it.Priority))
			left.WriteString(" ")
			left.WriteString(RenderStatusBadge(it.Status))
			left.WriteString(" ")
		}
		var right []string
		if it.ID != it.Label {
			right = append(right, it.ID)
		}
		if age := FormatTimeRel(it.Created); age != "" {
			right = append(right, age)
		}
		id = strings.Join(right, " ")
	}

	used := lipgloss.Width(left.String())
	avail := width - used
	idWidth := 0
	if id != "" && avail > 20 {
		idWidth = min(lipgloss.Width(id), avail/3) + 1
	}
	labelText := truncate(label, avail-idWidth)

	var labelStyle lipgloss.Style
	switch {
	case n.IsSynthetic():
		labelStyle = g.theme.GroupText
	case !n.Matches():
		labelStyle = g.theme.ContextText
	default:
		labelStyle = g.theme.Base
	}
	row := left.String() + labelStyle.Render(labelText)
	if idWidth > 0 {
		gap := width - lipgloss.Width(row) - (idWidth - 1)
		if gap > 0 {
			row += strings.Repeat(" ", gap)
		}
		row += g.theme.SecondaryText.Render(truncate(id, idWidth-1))
	}

	style := g.theme.Renderer.NewStyle().Width(width).MaxWidth(width)
	if isSelected {
		style = g.theme.Selected.Width(width).MaxWidth(width)
	}
	return style.Render(row)
}
