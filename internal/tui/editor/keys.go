package editor

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	save  key.Binding
	close key.Binding
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save now"),
		),
		close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func (k keyMap) help() string {
	var out string
	for i, b := range []key.Binding{k.save, k.close} {
		if i > 0 {
			out += "  "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
