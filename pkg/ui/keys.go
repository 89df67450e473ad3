package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the grid key bindings.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Toggle      key.Binding
	Expand      key.Binding
	Collapse    key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Sort        key.Binding
	SortDir     key.Binding
	Ancestors   key.Binding
	Children    key.Binding
	Root        key.Binding
	Filter      key.Binding
	ClearFilter key.Binding
	Reveal      key.Binding
	Yank        key.Binding
	Reload      key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:      key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:         key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Toggle:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "toggle")),
		Expand:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "expand")),
		Collapse:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
		ExpandAll:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "expand all")),
		CollapseAll: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "collapse all")),
		Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort field")),
		SortDir:     key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sort direction")),
		Ancestors:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "ancestors")),
		Children:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "children")),
		Root:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "root row")),
		Filter:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		ClearFilter: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter")),
		Reveal:      key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "go to id")),
		Yank:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy label")),
		Reload:      key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Filter, k.Reveal, k.Sort, k.Ancestors, k.Children, k.Root, k.Yank, k.Quit}
}

// renderHelp renders bindings as "key desc" pairs.
func renderHelp(t Theme, bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, t.PrimaryBold.Render(h.Key)+" "+t.MutedText.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
