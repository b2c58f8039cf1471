package suggester

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// fetchDueMsg fires when the debounce delay of a scheduled fetch elapsed.
type fetchDueMsg struct {
	engine     uint64
	generation int
	text       string
}

// fetchResultMsg carries the outcome of a Source call back to the engine.
type fetchResultMsg struct {
	engine      uint64
	generation  int
	text        string
	suggestions []Suggestion
	err         error
}

// FetchSuggestionsFor invalidates any pending fetch and schedules a new one
// for text. The returned command waits out the debounce delay.
func (e *Engine) FetchSuggestionsFor(text string) tea.Cmd {
	return e.scheduleFetch(text)
}

func (e *Engine) scheduleFetch(text string) tea.Cmd {
	e.fetchGeneration++
	e.pending = true

	id, generation := e.id, e.fetchGeneration
	return tea.Tick(e.options.FetchDelay, func(time.Time) tea.Msg {
		return fetchDueMsg{engine: id, generation: generation, text: text}
	})
}

func (e *Engine) cancelFetch() {
	e.fetchGeneration++
	e.pending = false
}

func (e *Engine) current(generation int) bool {
	return e.pending && generation == e.fetchGeneration
}

// Update consumes the engine's own messages: debounce expiry and fetch
// delivery. Messages belonging to other engines, or to superseded fetches,
// are ignored.
func (e *Engine) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case fetchDueMsg:
		if msg.engine != e.id {
			return nil
		}
		if !e.current(msg.generation) {
			e.logger.Debug("suggester skipping superseded fetch",
				zap.Int("generation", msg.generation),
				zap.Int("currentGeneration", e.fetchGeneration))
			return nil
		}
		return e.fetch(msg.generation, msg.text)

	case fetchResultMsg:
		if msg.engine != e.id {
			return nil
		}
		if !e.current(msg.generation) {
			e.logger.Debug("suggester discarding stale suggestions",
				zap.String("text", msg.text),
				zap.Int("generation", msg.generation),
				zap.Int("currentGeneration", e.fetchGeneration))
			return nil
		}

		e.pending = false
		suggestions := msg.suggestions
		if msg.err != nil {
			e.logger.Warn("suggester fetch failed", zap.String("text", msg.text), zap.Error(msg.err))
			suggestions = nil
		}
		e.reconcile(suggestions)
		e.render()
	}

	return nil
}

func (e *Engine) fetch(generation int, text string) tea.Cmd {
	id, source, timeout := e.id, e.source, e.options.FetchTimeout

	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		suggestions, err := fetchSafely(ctx, source, text)
		return fetchResultMsg{
			engine:      id,
			generation:  generation,
			text:        text,
			suggestions: suggestions,
			err:         err,
		}
	}
}

// Reconcile applies suggestions as the settled result for the current text,
// superseding any fetch still in flight.
func (e *Engine) Reconcile(suggestions []Suggestion) {
	e.cancelFetch()
	e.reconcile(suggestions)
	e.render()
}

func (e *Engine) reconcile(suggestions []Suggestion) {
	if len(suggestions) > e.options.MaxSuggestions {
		suggestions = suggestions[:e.options.MaxSuggestions]
	}
	e.suggestions = append([]Suggestion(nil), suggestions...)
	e.refreshSuggestions()
	e.notify(e.currentText)
}
