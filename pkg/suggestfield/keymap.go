package suggestfield

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/robottwo/suggester/pkg/suggester"
)

// KeyMap maps key presses to the key classes the engine distinguishes.
type KeyMap struct {
	Submit   key.Binding
	Cancel   key.Binding
	Delete   key.Binding
	Accept   key.Binding
	Previous key.Binding
	Next     key.Binding
	// Backspace covers every binding that removes text before the cursor.
	Backspace key.Binding
}

var DefaultKeyMap = KeyMap{
	Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
	Delete:    key.NewBinding(key.WithKeys("delete", "ctrl+d")),
	Accept:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "accept")),
	Previous:  key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "previous")),
	Next:      key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next")),
	Backspace: key.NewBinding(key.WithKeys("backspace", "ctrl+h", "ctrl+w", "alt+backspace", "ctrl+u")),
}

// classify returns the engine key class of msg.
func (k KeyMap) classify(msg tea.KeyMsg) suggester.Key {
	switch {
	case key.Matches(msg, k.Submit):
		return suggester.KeyEnter
	case key.Matches(msg, k.Cancel):
		return suggester.KeyEscape
	case key.Matches(msg, k.Delete):
		return suggester.KeyDelete
	case key.Matches(msg, k.Accept):
		return suggester.KeyTab
	case key.Matches(msg, k.Previous):
		return suggester.KeyUp
	case key.Matches(msg, k.Next):
		return suggester.KeyDown
	case key.Matches(msg, k.Backspace):
		return suggester.KeyBackspace
	default:
		return suggester.KeyOther
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Accept, k.Previous, k.Next, k.Cancel, k.Submit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
