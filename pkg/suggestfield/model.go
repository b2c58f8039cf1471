// Package suggestfield is the Bubble Tea view for a suggester.Engine: a line
// editor with a ghost completion and a suggestion list below it. It only
// translates terminal events into engine events and engine render
// instructions into terminal output; every decision lives in the engine.
package suggestfield

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robottwo/suggester/pkg/suggester"
)

// SubmittedMsg is emitted when the user presses the submit key.
type SubmittedMsg struct {
	Value string
}

// renderSink collects render instructions between two Update calls. The
// overwrite flag is one-shot in the engine, so it is latched here until the
// model applies it to the editor.
type renderSink struct {
	overwrite bool
	value     string
	next      func(suggester.View)
}

func (s *renderSink) render(view suggester.View) {
	if view.OverwriteField {
		s.overwrite = true
		s.value = view.FieldValue
	}
	if s.next != nil {
		s.next(view)
	}
}

type Model struct {
	KeyMap KeyMap
	Styles Styles

	// ListOffset is the screen row the field is rendered on. Mouse clicks
	// are mapped onto list rows relative to it.
	ListOffset int

	engine *suggester.Engine
	input  Input
	sink   *renderSink
}

// New builds the field and its engine. options.OnRender is still called for
// every render.
func New(source suggester.Source, options suggester.Options) (Model, error) {
	sink := &renderSink{next: options.OnRender}
	options.OnRender = sink.render

	engine, err := suggester.New(source, options)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		KeyMap: DefaultKeyMap,
		Styles: DefaultStyles(),
		engine: engine,
		input:  NewInput(),
		sink:   sink,
	}
	m.input.GhostStyle = m.Styles.Ghost
	return m, nil
}

// Engine exposes the engine driven by this field.
func (m Model) Engine() *suggester.Engine {
	return m.engine
}

// Input exposes the line editor, mainly to adjust its prompt and styles.
func (m *Model) Input() *Input {
	return &m.input
}

func (m Model) Value() string {
	return m.input.Value()
}

// SetValue replaces the field's text as if the user typed it.
func (m *Model) SetValue(s string) tea.Cmd {
	m.input.SetValue(s)
	m.input.CursorEnd()
	cmd := m.engine.KeyUp(suggester.KeyOther, m.input.Value())
	m.sync()
	return cmd
}

// Reset clears the field, typically after a submission.
func (m *Model) Reset() tea.Cmd {
	m.input.Reset()
	cmd := m.engine.KeyUp(suggester.KeyOther, "")
	m.sync()
	return cmd
}

func (m Model) Focused() bool {
	return m.input.Focused()
}

func (m *Model) Focus() tea.Cmd {
	cmds := []tea.Cmd{m.input.Focus(), m.engine.Focus()}
	m.sync()
	return tea.Batch(cmds...)
}

func (m *Model) Blur() {
	m.input.Blur()
	m.engine.Blur()
	m.sync()
}

func (m Model) Init() tea.Cmd {
	return Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.FocusMsg:
		if m.input.Focused() {
			return m, nil
		}
		return m, m.Focus()

	case tea.BlurMsg:
		if !m.input.Focused() {
			return m, nil
		}
		m.Blur()
		return m, nil

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		if !m.input.Focused() {
			return m, nil
		}
		return m.handleKey(msg)
	}

	cmds := []tea.Cmd{m.engine.Update(msg)}
	m.sync()

	// Clipboard pastes and cursor blinks land here.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.input.Value() != m.engine.Text() {
		cmds = append(cmds, m.engine.KeyUp(suggester.KeyOther, m.input.Value()))
		m.sync()
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.KeyMap.classify(msg)

	if m.engine.KeyDown(k) {
		m.sync()
		if k == suggester.KeyEnter {
			value := m.engine.Text()
			return m, func() tea.Msg { return SubmittedMsg{Value: value} }
		}
		return m, nil
	}
	m.sync()

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	cmds = append(cmds, m.engine.KeyUp(k, m.input.Value()))
	m.sync()

	return m, tea.Batch(cmds...)
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}

	view := m.engine.View()
	if !view.ListVisible {
		return nil
	}

	row := msg.Y - m.ListOffset - m.inputHeight()
	if row < 0 || row >= len(view.Slots) || !view.Slots[row].Visible {
		return nil
	}

	m.engine.Pick(view.Slots[row].Label)
	m.sync()

	if !m.input.Focused() {
		return m.Focus()
	}
	return nil
}

// sync applies the latest render instructions to the editor.
func (m *Model) sync() {
	if m.sink.overwrite {
		m.input.SetValue(m.sink.value)
		m.input.CursorEnd()
		m.sink.overwrite = false
	}
	m.input.SetGhost(m.engine.View().Suffix)
}

func (m Model) inputHeight() int {
	return strings.Count(m.input.View(), "\n") + 1
}

func (m Model) View() string {
	field := m.input.View()
	list := m.listView()
	if list == "" {
		return field
	}
	return field + "\n" + list
}
