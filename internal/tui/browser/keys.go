package browser

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	open        key.Binding
	search      key.Binding
	filterTag   key.Binding
	matchAll    key.Binding
	clearTags   key.Binding
	create      key.Binding
	delete      key.Binding
	submitInput key.Binding
	exitInput   key.Binding
	quit        key.Binding
}

func newKeyMap() *keyMap {
	return &keyMap{
		open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "open"),
		),
		search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		filterTag: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle tag"),
		),
		matchAll: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "match all"),
		),
		clearTags: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "clear tags"),
		),
		create: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		delete: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete"),
		),
		submitInput: key.NewBinding(
			key.WithKeys("enter"),
		),
		exitInput: key.NewBinding(
			key.WithKeys("esc"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k *keyMap) short() []key.Binding {
	return []key.Binding{k.open, k.search, k.filterTag, k.matchAll, k.clearTags, k.create, k.delete}
}
