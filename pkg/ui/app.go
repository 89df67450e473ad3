package ui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/treegrid/pkg/config"
	"github.com/vanderheijden86/treegrid/pkg/debug"
	"github.com/vanderheijden86/treegrid/pkg/loader"
	"github.com/vanderheijden86/treegrid/pkg/query"
	"github.com/vanderheijden86/treegrid/pkg/treestate"
	"github.com/vanderheijden86/treegrid/pkg/treetable"
	"github.com/vanderheijden86/treegrid/pkg/watcher"
)

// FileChangedMsg is sent when a watched outline changes on disk.
type FileChangedMsg struct{}

// ReloadedMsg carries a freshly loaded outline.
type ReloadedMsg struct {
	Root *loader.Item
	Err  error
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// LoadCmd loads paths in the background and sends ReloadedMsg.
func LoadCmd(paths []string) tea.Cmd {
	return func() tea.Msg {
		root, err := loader.LoadAll(context.Background(), paths)
		return ReloadedMsg{Root: root, Err: err}
	}
}

type inputMode int

const (
	inputNone inputMode = iota
	inputFilter
	inputReveal
)

// Options configures a Model.
type Options struct {
	// Paths are the sources, reloaded on change.
	Paths []string
	View  config.ViewConfig
	// StatePath is the expansion state file; empty disables persistence.
	StatePath string
	Watcher   *watcher.Watcher
	Theme     *Theme
	// Builder serves children below the root; loader.ItemBuilder when nil.
	Builder treetable.Builder
}

// Model is the Bubble Tea model of the tree grid.
type Model struct {
	opts  Options
	theme Theme
	keys  KeyMap

	root    *loader.Item
	grid    *Grid
	filter  string
	sortBy  query.SortField
	sortDir query.SortDirection

	input     textinput.Model
	inputMode inputMode

	width, height int
	statusMsg     string
	statusIsError bool
	quitting      bool
}

// NewModel builds the grid over root with the configured projection policy
// and restores saved expansion state.
func NewModel(root *loader.Item, opts Options) (Model, error) {
	var theme Theme
	if opts.Theme != nil {
		theme = *opts.Theme
	} else {
		theme = DefaultTheme(lipgloss.DefaultRenderer())
	}

	sortBy, err := query.ParseSortField(opts.View.SortField)
	if err != nil {
		return Model{}, err
	}
	sortDir := query.SortAscending
	if opts.View.SortDescending {
		sortDir = query.SortDescending
	}
	if _, err := query.Parse(opts.View.Filter); err != nil {
		return Model{}, err
	}

	input := textinput.New()
	input.CharLimit = 256

	m := Model{
		opts:    opts,
		theme:   theme,
		keys:    DefaultKeyMap(),
		filter:  opts.View.Filter,
		sortBy:  sortBy,
		sortDir: sortDir,
		input:   input,
	}
	var state *treestate.TreeState
	if opts.StatePath != "" {
		if _, err := os.Stat(opts.StatePath); err == nil {
			state = treestate.Load(opts.StatePath)
		}
	}
	m.rebuild(root, state, "")
	return m, nil
}

func itemKey(n *treetable.Node) string {
	if n.IsRoot() {
		return ""
	}
	if it := loader.ItemOf(n); it != nil {
		return it.ID
	}
	return ""
}

// rebuild replaces the projected tree, restoring expansion state and the
// selection by item ID.
func (m *Model) rebuild(root *loader.Item, state *treestate.TreeState, selectID string) {
	if m.grid != nil {
		m.grid.Close()
	}
	f, _ := query.Parse(m.filter)
	var builder treetable.Builder = loader.ItemBuilder{}
	if m.opts.Builder != nil {
		builder = m.opts.Builder
	}
	tree := treetable.New(builder, root,
		treetable.WithRootVisible(m.opts.View.RootVisible),
		treetable.WithFilterOptions(m.opts.View.IncludeAncestors, m.opts.View.IncludeChildren),
		treetable.WithFilter(f),
		treetable.WithOrder(query.Comparator(m.sortBy, m.sortDir)),
	)
	m.root = root
	m.grid = NewGrid(tree, m.theme)
	m.grid.Do(func(t *treetable.Model) { treestate.Apply(t, state, itemKey) })
	if state == nil && m.opts.View.ExpandDepth != 1 {
		m.grid.ExpandToLevel(m.opts.View.ExpandDepth)
	}
	if selectID != "" {
		if n := findByID(tree, selectID); n != nil {
			m.grid.Reveal(n)
		}
	}
	m.resize()
}

// findByID searches the tree for an item, materializing it as needed.
func findByID(t *treetable.Model, id string) *treetable.Node {
	var found *treetable.Node
	var walk func(n *treetable.Node)
	walk = func(n *treetable.Node) {
		if found != nil {
			return
		}
		if !n.IsRoot() && itemKey(n) == id {
			found = n
			return
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(t.Root())
	return found
}

// Grid returns the grid component.
func (m Model) Grid() *Grid { return m.grid }

// Init starts watching for file changes.
func (m Model) Init() tea.Cmd {
	if m.opts.Watcher != nil {
		return WatchFileCmd(m.opts.Watcher)
	}
	return nil
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusIsError = isErr
}

func (m *Model) resize() {
	// header of the grid plus status and help lines
	m.grid.SetSize(m.width, m.height-2)
	m.input.Width = max(m.width-12, 10)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case FileChangedMsg:
		cmds := []tea.Cmd{LoadCmd(m.opts.Paths)}
		if m.opts.Watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.opts.Watcher))
		}
		return m, tea.Batch(cmds...)

	case ReloadedMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("Reload failed: %v", msg.Err), true)
			return m, nil
		}
		m.reload(msg.Root)
		m.setStatus(fmt.Sprintf("Reloaded %d items", msg.Root.Count()-1), false)
		return m, nil

	case tea.KeyMsg:
		if m.inputMode != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

// reload swaps in a new outline, keeping expansion and selection.
func (m *Model) reload(root *loader.Item) {
	state := treestate.Capture(m.grid.Model(), itemKey)
	selectID := ""
	if n := m.grid.Selected(); n != nil {
		selectID = itemKey(n)
	}
	m.rebuild(root, state, selectID)
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.inputMode = inputNone
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.inputMode
		m.inputMode = inputNone
		m.input.Blur()
		if mode == inputFilter {
			m.applyFilter(value)
		} else {
			m.revealID(value)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) startInput(mode inputMode, prompt, value string) tea.Cmd {
	m.inputMode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) applyFilter(expr string) {
	f, err := query.Parse(expr)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.filter = expr
	m.grid.Do(func(t *treetable.Model) { t.SetFilter(f) })
	if expr == "" {
		m.setStatus("Filter cleared", false)
	} else {
		m.setStatus(fmt.Sprintf("Filter: %s (%d rows)", expr, m.grid.Model().RowCount()), false)
	}
}

func (m *Model) revealID(id string) {
	if id == "" {
		return
	}
	n := findByID(m.grid.Model(), id)
	if n == nil {
		m.setStatus(fmt.Sprintf("No item %q", id), true)
		return
	}
	need := m.grid.Reveal(n)
	if len(need) == 0 {
		m.setStatus(fmt.Sprintf("Revealed %s", id), false)
		return
	}
	labels := make([]string, len(need))
	for i, x := range need {
		labels[i] = loader.ItemOf(x).String()
	}
	m.setStatus(fmt.Sprintf("%s is filtered out; would need: %s", id, strings.Join(labels, " › ")), true)
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.grid
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.quitting = true
		m.saveState()
		return m, tea.Quit
	case key.Matches(msg, k.Up):
		g.MoveUp()
	case key.Matches(msg, k.Down):
		g.MoveDown()
	case key.Matches(msg, k.PageUp):
		g.PageUp()
	case key.Matches(msg, k.PageDown):
		g.PageDown()
	case key.Matches(msg, k.Top):
		g.Top()
	case key.Matches(msg, k.Bottom):
		g.Bottom()
	case key.Matches(msg, k.Toggle):
		g.Toggle()
	case key.Matches(msg, k.Expand):
		g.ExpandOrMoveToChild()
	case key.Matches(msg, k.Collapse):
		g.CollapseOrJumpToParent()
	case key.Matches(msg, k.ExpandAll):
		if err := g.ExpandAll(); err != nil {
			m.setStatus(err.Error(), true)
		}
	case key.Matches(msg, k.CollapseAll):
		g.CollapseAll()
	case key.Matches(msg, k.Sort):
		m.sortBy = m.sortBy.Next()
		m.applyOrder()
	case key.Matches(msg, k.SortDir):
		m.sortDir = m.sortDir.Toggle()
		m.applyOrder()
	case key.Matches(msg, k.Ancestors):
		m.opts.View.IncludeAncestors = !m.opts.View.IncludeAncestors
		m.applyFilterOptions()
	case key.Matches(msg, k.Children):
		m.opts.View.IncludeChildren = !m.opts.View.IncludeChildren
		m.applyFilterOptions()
	case key.Matches(msg, k.Root):
		m.opts.View.RootVisible = !m.opts.View.RootVisible
		v := m.opts.View.RootVisible
		g.Do(func(t *treetable.Model) { t.SetRootVisible(v) })
		m.setStatus(fmt.Sprintf("Root row: %s", onOff(v)), false)
	case key.Matches(msg, k.Filter):
		return m, m.startInput(inputFilter, "/ ", m.filter)
	case key.Matches(msg, k.ClearFilter):
		if m.filter != "" {
			m.applyFilter("")
		}
	case key.Matches(msg, k.Reveal):
		return m, m.startInput(inputReveal, ": ", "")
	case key.Matches(msg, k.Yank):
		m.yank()
	case key.Matches(msg, k.Reload):
		if len(m.opts.Paths) > 0 {
			return m, LoadCmd(m.opts.Paths)
		}
	}
	return m, nil
}

func (m *Model) applyOrder() {
	c := query.Comparator(m.sortBy, m.sortDir)
	m.grid.Do(func(t *treetable.Model) { t.SetOrder(c) })
	m.setStatus(fmt.Sprintf("Sort: %s %s", m.sortBy, m.sortDir.Indicator()), false)
}

func (m *Model) applyFilterOptions() {
	a, c := m.opts.View.IncludeAncestors, m.opts.View.IncludeChildren
	m.grid.Do(func(t *treetable.Model) { t.SetFilterOptions(a, c) })
	m.setStatus(fmt.Sprintf("Ancestors: %s  Children: %s", onOff(a), onOff(c)), false)
}

func (m *Model) yank() {
	it := m.grid.SelectedItem()
	if it == nil {
		return
	}
	if err := clipboard.WriteAll(it.String()); err != nil {
		m.setStatus(fmt.Sprintf("Clipboard error: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Copied %s to clipboard", it.String()), false)
}

func (m *Model) saveState() {
	if m.opts.StatePath == "" {
		return
	}
	if err := treestate.Save(m.opts.StatePath, treestate.Capture(m.grid.Model(), itemKey)); err != nil {
		debug.Log("saving tree state: %v", err)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// View renders the grid, the status or input line and the key help.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.grid.View())
	sb.WriteString("\n")

	switch {
	case m.inputMode != inputNone:
		sb.WriteString(m.input.View())
	case m.statusIsError:
		sb.WriteString(m.theme.ErrorText.Render(truncate(m.statusMsg, max(m.width, 20))))
	case m.statusMsg != "":
		sb.WriteString(m.theme.MutedText.Render(truncate(m.statusMsg, max(m.width, 20))))
	default:
		sb.WriteString(m.renderPolicy())
	}
	sb.WriteString("\n")
	sb.WriteString(renderHelp(m.theme, m.keys.ShortHelp()))
	return sb.String()
}

func (m Model) renderPolicy() string {
	parts := []string{fmt.Sprintf("sort %s %s", m.sortBy, m.sortDir.Indicator())}
	if m.filter != "" {
		parts = append(parts, "filter "+m.filter)
	}
	if m.opts.View.IncludeAncestors {
		parts = append(parts, "+ancestors")
	}
	if m.opts.View.IncludeChildren {
		parts = append(parts, "+children")
	}
	return m.theme.MutedText.Render(strings.Join(parts, "  "))
}
