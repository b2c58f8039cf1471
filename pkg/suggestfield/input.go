/*
This file is forked from the textinput component from
github.com/charmbracelet/bubbles

# MIT License

# Copyright (c) 2020-2023 Charmbracelet, Inc

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package suggestfield

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/runeutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/rivo/uniseg"
)

// Internal messages for clipboard operations.
type (
	pasteMsg    string
	pasteErrMsg struct{ error }
)

// ValidateFunc is a function that returns an error if the input is invalid.
type ValidateFunc func(string) error

// InputKeyMap holds the editing bindings of the line editor. Keys that drive
// the suggestion list (enter, escape, tab, up, down) are deliberately absent.
type InputKeyMap struct {
	CharacterForward        key.Binding
	CharacterBackward       key.Binding
	WordForward             key.Binding
	WordBackward            key.Binding
	DeleteWordBackward      key.Binding
	DeleteWordForward       key.Binding
	DeleteAfterCursor       key.Binding
	DeleteBeforeCursor      key.Binding
	DeleteCharacterBackward key.Binding
	DeleteCharacterForward  key.Binding
	LineStart               key.Binding
	LineEnd                 key.Binding
	Paste                   key.Binding
	Yank                    key.Binding
	YankPop                 key.Binding
	SwapCharacters          key.Binding
}

// DefaultInputKeyMap is the default set of editing bindings.
var DefaultInputKeyMap = InputKeyMap{
	CharacterForward:        key.NewBinding(key.WithKeys("right", "ctrl+f")),
	CharacterBackward:       key.NewBinding(key.WithKeys("left", "ctrl+b")),
	WordForward:             key.NewBinding(key.WithKeys("alt+right", "ctrl+right", "alt+f")),
	WordBackward:            key.NewBinding(key.WithKeys("alt+left", "ctrl+left", "alt+b")),
	DeleteWordBackward:      key.NewBinding(key.WithKeys("alt+backspace", "ctrl+w")),
	DeleteWordForward:       key.NewBinding(key.WithKeys("alt+delete", "alt+d")),
	DeleteAfterCursor:       key.NewBinding(key.WithKeys("ctrl+k")),
	DeleteBeforeCursor:      key.NewBinding(key.WithKeys("ctrl+u")),
	DeleteCharacterBackward: key.NewBinding(key.WithKeys("backspace", "ctrl+h")),
	DeleteCharacterForward:  key.NewBinding(key.WithKeys("delete", "ctrl+d")),
	LineStart:               key.NewBinding(key.WithKeys("home", "ctrl+a")),
	LineEnd:                 key.NewBinding(key.WithKeys("end", "ctrl+e")),
	Paste:                   key.NewBinding(key.WithKeys("ctrl+v")),
	Yank:                    key.NewBinding(key.WithKeys("ctrl+y")),
	YankPop:                 key.NewBinding(key.WithKeys("alt+y")),
	SwapCharacters:          key.NewBinding(key.WithKeys("ctrl+t")),
}

// Input is a single-line editor that renders a ghost completion after the
// cursor. It never decides the ghost itself; the owner sets it with SetGhost.
type Input struct {
	Err error

	Prompt string
	Cursor cursor.Model

	PromptStyle lipgloss.Style
	TextStyle   lipgloss.Style
	GhostStyle  lipgloss.Style

	// CharLimit is the maximum amount of characters this input element will
	// accept. If 0 or less, there's no limit.
	CharLimit int

	// Width marks the horizontal boundary for this component to render within.
	// Content that exceeds this width will be wrapped.
	// If 0 or less this setting is ignored.
	Width int

	KeyMap InputKeyMap

	Validate ValidateFunc

	focus bool
	pos   int
	value []rune
	ghost []rune

	killRing killRing

	rsan runeutil.Sanitizer
}

// NewInput creates a line editor with default settings.
func NewInput() Input {
	return Input{
		Prompt:     "> ",
		GhostStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Cursor:     cursor.New(),
		KeyMap:     DefaultInputKeyMap,
	}
}

// SetValue sets the value of the text input.
func (m *Input) SetValue(s string) {
	// Clean up any special characters in the input provided by the
	// caller. This avoids bugs due to e.g. tab characters and whatnot.
	runes := m.san().Sanitize([]rune(s))
	err := m.validate(runes)
	m.setValueInternal(runes, err)
}

func (m *Input) setValueInternal(runes []rune, err error) {
	m.Err = err
	m.killRing.interrupt()

	empty := len(m.value) == 0

	if m.CharLimit > 0 && len(runes) > m.CharLimit {
		m.value = runes[:m.CharLimit]
	} else {
		m.value = runes
	}
	if (m.pos == 0 && empty) || m.pos > len(m.value) {
		m.SetCursor(len(m.value))
	}
}

// Value returns the value of the text input.
func (m Input) Value() string {
	return string(m.value)
}

// Position returns the cursor position.
func (m Input) Position() int {
	return m.pos
}

// SetGhost sets the completion rendered after the value. It is only shown
// while the cursor sits at the end of the value.
func (m *Input) SetGhost(s string) {
	m.ghost = []rune(s)
}

// Ghost returns the completion currently rendered after the value.
func (m Input) Ghost() string {
	return string(m.ghost)
}

// SetCursor moves the cursor to the given position. If the position is
// out of bounds the cursor will be moved to the start or end accordingly.
func (m *Input) SetCursor(pos int) {
	m.pos = clamp(pos, 0, len(m.value))
}

// CursorStart moves the cursor to the start of the input field.
func (m *Input) CursorStart() {
	m.SetCursor(0)
}

// CursorEnd moves the cursor to the end of the input field.
func (m *Input) CursorEnd() {
	m.SetCursor(len(m.value))
}

// Focused returns the focus state on the model.
func (m Input) Focused() bool {
	return m.focus
}

// Focus sets the focus state on the model. When the model is in focus it can
// receive keyboard input and the cursor will be shown.
func (m *Input) Focus() tea.Cmd {
	m.focus = true
	return m.Cursor.Focus()
}

// Blur removes the focus state on the model. When the model is blurred it can
// not receive keyboard input and the cursor will be hidden.
func (m *Input) Blur() {
	m.focus = false
	m.Cursor.Blur()
}

// Reset sets the input to its default state with no input.
func (m *Input) Reset() {
	m.value = nil
	m.ghost = nil
	m.SetCursor(0)
}

func (m *Input) san() runeutil.Sanitizer {
	if m.rsan == nil {
		// The input is a single line, so collapse newlines and tabs to
		// single spaces.
		m.rsan = runeutil.NewSanitizer(
			runeutil.ReplaceTabs(" "), runeutil.ReplaceNewlines(" "))
	}
	return m.rsan
}

func (m *Input) insertRunesFromUserInput(v []rune) {
	paste := m.san().Sanitize(v)

	var availSpace int
	if m.CharLimit > 0 {
		availSpace = m.CharLimit - len(m.value)

		// If the char limit's been reached, cancel.
		if availSpace <= 0 {
			return
		}

		// If there's not enough space to paste the whole thing cut the pasted
		// runes down so they'll fit.
		if availSpace < len(paste) {
			paste = paste[:availSpace]
		}
	}

	result := make([]rune, len(m.value)+len(paste))

	copy(result, m.value[:m.pos])
	copy(result[m.pos:], paste)
	copy(result[m.pos+len(paste):], m.value[m.pos:])
	m.pos += len(paste)

	inputErr := m.validate(result)
	m.setValueInternal(result, inputErr)
}

// Update is the Bubble Tea update loop.
func (m Input) Update(msg tea.Msg) (Input, tea.Cmd) {
	if !m.focus {
		return m, nil
	}

	// Remember where the cursor was so a move can reset the blink.
	oldPos := m.pos

	switch msg := msg.(type) {
	case tea.KeyMsg:
		killCommand := key.Matches(msg, m.KeyMap.DeleteBeforeCursor) || key.Matches(msg, m.KeyMap.DeleteAfterCursor) ||
			key.Matches(msg, m.KeyMap.DeleteWordBackward) || key.Matches(msg, m.KeyMap.DeleteWordForward)
		yankCommand := key.Matches(msg, m.KeyMap.Yank) || key.Matches(msg, m.KeyMap.YankPop)

		switch {
		case key.Matches(msg, m.KeyMap.SwapCharacters):
			m.swapCharacters()
		case key.Matches(msg, m.KeyMap.DeleteWordBackward):
			m.deleteWordBackward()
		case key.Matches(msg, m.KeyMap.DeleteCharacterBackward):
			m.Err = nil
			if len(m.value) > 0 && m.pos > 0 {
				newValue := cloneConcatRunes(m.value[:m.pos-1], m.value[m.pos:])
				m.Err = m.validate(newValue)
				m.value = newValue
				m.SetCursor(m.pos - 1)
			}
		case key.Matches(msg, m.KeyMap.WordBackward):
			m.wordBackward()
		case key.Matches(msg, m.KeyMap.CharacterBackward):
			if m.pos > 0 {
				m.SetCursor(m.pos - 1)
			}
		case key.Matches(msg, m.KeyMap.WordForward):
			m.wordForward()
		case key.Matches(msg, m.KeyMap.CharacterForward):
			if m.pos < len(m.value) {
				m.SetCursor(m.pos + 1)
			} else if len(m.ghost) > 0 {
				// At the end of the line, moving right takes the ghost.
				newValue := cloneConcatRunes(m.value, m.ghost)
				m.Err = m.validate(newValue)
				m.value = newValue
				m.ghost = nil
				m.CursorEnd()
			}
		case key.Matches(msg, m.KeyMap.LineStart):
			m.CursorStart()
		case key.Matches(msg, m.KeyMap.DeleteCharacterForward):
			if len(m.value) > 0 && m.pos < len(m.value) {
				newValue := cloneConcatRunes(m.value[:m.pos], m.value[m.pos+1:])
				m.Err = m.validate(newValue)
				m.value = newValue
			}
		case key.Matches(msg, m.KeyMap.LineEnd):
			m.CursorEnd()
		case key.Matches(msg, m.KeyMap.DeleteAfterCursor):
			m.deleteAfterCursor()
		case key.Matches(msg, m.KeyMap.DeleteBeforeCursor):
			m.deleteBeforeCursor()
		case key.Matches(msg, m.KeyMap.Paste):
			return m, Paste
		case key.Matches(msg, m.KeyMap.Yank):
			m.yank()
		case key.Matches(msg, m.KeyMap.YankPop):
			m.yankPop()
		case key.Matches(msg, m.KeyMap.DeleteWordForward):
			m.deleteWordForward()
		case msg.Type == tea.KeyRunes, msg.Type == tea.KeySpace:
			m.insertRunesFromUserInput(msg.Runes)
		}

		// Kills and yanks track their own chains; any other key breaks both.
		if !killCommand && !yankCommand {
			m.killRing.interrupt()
		}

	case pasteMsg:
		m.insertRunesFromUserInput([]rune(msg))

	case pasteErrMsg:
		m.Err = msg
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.Cursor, cmd = m.Cursor.Update(msg)
	cmds = append(cmds, cmd)

	if oldPos != m.pos && m.Cursor.Mode() == cursor.CursorBlink {
		m.Cursor.Blink = false
		cmds = append(cmds, m.Cursor.BlinkCmd())
	}

	return m, tea.Batch(cmds...)
}

// View renders the prompt, the value, the cursor and the ghost completion.
func (m Input) View() string {
	styleText := m.TextStyle.Inline(true).Render
	styleGhost := m.GhostStyle.Inline(true).Render

	value := m.value
	pos := max(0, m.pos)
	v := m.PromptStyle.Render(m.Prompt) + styleText(string(value[:pos]))

	switch {
	case pos < len(value):
		m.Cursor.SetChar(string(value[pos]))
		v += m.Cursor.View()
		v += styleText(string(value[pos+1:]))
	case len(m.ghost) > 0:
		m.Cursor.TextStyle = m.GhostStyle
		m.Cursor.SetChar(string(m.ghost[0]))
		v += m.Cursor.View()
		v += styleGhost(string(m.ghost[1:]))
	default:
		m.Cursor.SetChar(" ")
		v += m.Cursor.View()
	}

	totalWidth := uniseg.StringWidth(v)

	// If a max width is set, we need to respect the horizontal boundary
	if m.Width > 0 {
		if totalWidth <= m.Width {
			// fill empty spaces with the background color
			padding := max(0, m.Width-totalWidth)
			v += styleText(strings.Repeat(" ", padding))
		} else {
			v = wrap.String(v, m.Width)
		}
	}

	return v
}

// validate runs the Validate function on the given rune slice.
func (m Input) validate(v []rune) error {
	if m.Validate != nil {
		return m.Validate(string(v))
	}
	return nil
}

// Blink is a command used to initialize cursor blinking.
func Blink() tea.Msg {
	return cursor.Blink()
}

// Paste is a command for pasting from the clipboard into the text input.
func Paste() tea.Msg {
	str, err := clipboard.ReadAll()
	if err != nil {
		return pasteErrMsg{err}
	}
	return pasteMsg(str)
}
