package suggester

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Key is the class of a key press as far as the engine is concerned.
type Key int

const (
	KeyOther Key = iota
	KeyEnter
	KeyEscape
	KeyDelete
	KeyTab
	KeyUp
	KeyDown
	// KeyBackspace covers every key that removes text before the cursor.
	KeyBackspace
)

var engineIDs = atomic.NewUint64(0)

// Engine is the completion state machine bound to one text field. It is not
// safe for concurrent use; drive it from a single goroutine, normally the
// Bubble Tea update loop.
type Engine struct {
	id      uint64
	source  Source
	options Options
	logger  *zap.Logger

	currentText       string
	lastCommittedText string
	bestSuggestion    string
	suggestions       []Suggestion
	selectedIndex     int
	focused           bool
	listVisible       bool
	lastNotifiedValue string

	// fetchGeneration identifies the most recently scheduled fetch. Only a
	// delivery carrying this generation while pending is set gets applied.
	fetchGeneration int
	pending         bool

	// refetchOnFocus is cleared by a pointer pick so that the focus which
	// follows the pick keeps the picked value's list.
	refetchOnFocus bool

	suffix         string
	impliedMatch   bool
	overwriteField bool
	view           View
}

// New creates an engine for a single field. It fails when source is missing
// or the options are invalid.
func New(source Source, options Options) (*Engine, error) {
	if source == nil {
		return nil, ErrMissingSource
	}
	if fn, ok := source.(SourceFunc); ok && fn == nil {
		return nil, ErrMissingSource
	}
	if fn, ok := source.(CallbackSource); ok && fn == nil {
		return nil, ErrMissingSource
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		id:             engineIDs.Inc(),
		source:         source,
		options:        options,
		logger:         logger,
		selectedIndex:  -1,
		refetchOnFocus: true,
	}
	e.render()
	return e, nil
}

// Focus marks the field as focused. Unless the focus follows a pointer pick,
// it schedules a fetch for the current text and returns the debounce command.
func (e *Engine) Focus() tea.Cmd {
	e.focused = true

	var cmd tea.Cmd
	if e.refetchOnFocus {
		cmd = e.scheduleFetch(e.currentText)
		e.refreshSuggestions()
	}

	e.bestSuggestion = e.currentText
	e.updateCompletion()
	e.notify(e.currentText)
	e.render()
	return cmd
}

// Blur commits the ghost completion into the field and hides the list.
func (e *Engine) Blur() {
	e.focused = false
	e.commit()
	e.render()
}

// KeyDown handles a key before the field's value changes. The return value
// asks the caller to suppress the key's default effect.
func (e *Engine) KeyDown(key Key) bool {
	suppress := false

	switch key {
	case KeyEnter, KeyEscape:
		e.cancelCompletion()
		e.listVisible = false
		suppress = true
	case KeyDelete:
		e.cancelCompletion()
		e.listVisible = false
	case KeyTab:
		if e.suffix != "" {
			e.commit()
			suppress = true
		}
	default:
		e.refetchOnFocus = true
		// The text is about to shrink; the current ghost no longer lines up.
		if key == KeyBackspace {
			e.suffix = ""
			e.impliedMatch = false
		}
	}

	e.render()
	return suppress
}

// KeyUp handles a key after the field's value changed to text. Navigation
// keys cycle the selection when the value is unchanged; any change schedules
// a fetch and returns its debounce command.
func (e *Engine) KeyUp(key Key, text string) tea.Cmd {
	if text == e.currentText {
		switch key {
		case KeyUp:
			if e.listVisible {
				e.selectPrevious()
			}
		case KeyDown:
			if e.listVisible {
				e.selectNext()
			}
		default:
			e.updateCompletion()
		}
		e.render()
		return nil
	}

	e.currentText = text
	e.lastCommittedText = text

	cmd := e.scheduleFetch(text)
	// Overlay against the previous best suggestion until the fetch lands.
	e.updateCompletion()
	if !e.pending {
		e.notify(text)
	}

	e.render()
	return cmd
}

// Pick adopts a label chosen with the pointer.
func (e *Engine) Pick(label string) {
	e.refetchOnFocus = false
	e.adopt(label)
	e.render()
}

func (e *Engine) selectPrevious() {
	if e.selectedIndex >= 0 {
		e.selectedIndex--
	} else {
		e.selectedIndex = len(e.suggestions) - 1
	}
	e.applySelection()
}

func (e *Engine) selectNext() {
	switch {
	case e.selectedIndex >= 0:
		e.selectedIndex++
		if e.selectedIndex >= len(e.suggestions) {
			e.selectedIndex = -1
		}
	case len(e.suggestions) > 0:
		e.selectedIndex = 0
	default:
		e.selectedIndex = -1
	}
	e.applySelection()
}

func (e *Engine) applySelection() {
	if e.selectedIndex < 0 {
		return
	}
	e.impliedMatch = false
	e.adopt(e.suggestions[e.selectedIndex].Label)
}

// adopt makes label both the field value and the best suggestion.
func (e *Engine) adopt(label string) {
	e.bestSuggestion = label
	e.currentText = label
	e.overwriteField = true
	e.updateCompletion()

	if label != e.lastCommittedText {
		e.lastCommittedText = label
		e.notify(label)
	}
}

// commit writes the ghost completion into the field, keeping the typed
// casing of the prefix.
func (e *Engine) commit() {
	if suffix, ok := Complete(e.currentText, e.bestSuggestion); ok && suffix != "" {
		e.currentText += suffix
		e.overwriteField = true
	}
	e.lastCommittedText = e.currentText
	e.refreshSuggestions()
	e.refetchOnFocus = true
}

func (e *Engine) cancelCompletion() {
	e.bestSuggestion = e.currentText
	e.cancelFetch()
	e.updateCompletion()
	e.notify(e.currentText)
}

// refreshSuggestions re-applies the retained list: best suggestion, cleared
// selection, list visibility and overlay.
func (e *Engine) refreshSuggestions() {
	e.listVisible = len(e.suggestions) > 0 && e.focused
	if len(e.suggestions) > 0 {
		e.bestSuggestion = e.suggestions[0].Label
	} else {
		e.bestSuggestion = e.currentText
	}
	e.selectedIndex = -1
	e.updateCompletion()
}

func (e *Engine) updateCompletion() {
	e.suffix = ""
	e.impliedMatch = false
	if !e.focused {
		return
	}

	suffix, ok := Complete(e.currentText, e.bestSuggestion)
	if !ok {
		return
	}
	e.suffix = suffix
	e.impliedMatch = e.selectedIndex < 0 &&
		len(e.suggestions) > 0 &&
		e.suggestions[0].Label == e.bestSuggestion
}

func (e *Engine) notify(text string) {
	value := text + e.suffix
	if value == e.lastNotifiedValue {
		return
	}
	e.lastNotifiedValue = value
	if e.options.OnValueUpdated != nil {
		e.options.OnValueUpdated(value)
	}
}

// Text returns the field value as last observed or written by the engine.
func (e *Engine) Text() string {
	return e.currentText
}

// Value returns the settled value: text plus the displayed ghost completion.
func (e *Engine) Value() string {
	return e.currentText + e.suffix
}

func (e *Engine) Suffix() string {
	return e.suffix
}

func (e *Engine) BestSuggestion() string {
	return e.bestSuggestion
}

// Suggestions returns a copy of the retained suggestion list.
func (e *Engine) Suggestions() []Suggestion {
	return append([]Suggestion(nil), e.suggestions...)
}

// SelectedIndex returns the keyboard selection, -1 when nothing is selected.
func (e *Engine) SelectedIndex() int {
	return e.selectedIndex
}

func (e *Engine) Focused() bool {
	return e.focused
}

func (e *Engine) ListVisible() bool {
	return e.listVisible
}

// Pending reports whether a scheduled fetch has yet to deliver.
func (e *Engine) Pending() bool {
	return e.pending
}

// MaxSuggestions returns the configured list size.
func (e *Engine) MaxSuggestions() int {
	return e.options.MaxSuggestions
}
