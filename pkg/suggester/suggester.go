// Package suggester implements the suggestion and inline-completion state
// machine behind a single-line text field.
//
// The Engine owns all state (current text, best suggestion, suggestion list,
// keyboard selection, pending fetch) and is driven by discrete events from a
// view: focus, blur, key down, key up and pointer picks. Suggestions are
// fetched asynchronously from a Source after a debounce delay. Only the most
// recently scheduled fetch is ever applied; older deliveries are dropped by
// comparing fetch generations.
//
// The engine speaks Bubble Tea: debounce timers and fetches are returned as
// tea.Cmd values and their results come back through Update, which the Bubble
// Tea runtime calls serially. That gives the engine a single-threaded,
// cooperative execution model without locks.
package suggester

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Suggestion is a single candidate delivered by a Source. Icon is empty when
// the candidate has no icon.
type Suggestion struct {
	Label string `json:"label" yaml:"label"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Source looks up suggestions for the text currently in the field. Results
// must already be ordered by relevance. An error is treated exactly like an
// empty result.
type Source interface {
	Fetch(ctx context.Context, text string) ([]Suggestion, error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(ctx context.Context, text string) ([]Suggestion, error)

func (f SourceFunc) Fetch(ctx context.Context, text string) ([]Suggestion, error) {
	return f(ctx, text)
}

// CallbackSource adapts a callback-style lookup, which delivers its results by
// invoking deliver exactly once, possibly from another goroutine. A lookup
// that never delivers is bounded only by the context, so pair it with
// Options.FetchTimeout.
type CallbackSource func(text string, deliver func([]Suggestion))

func (f CallbackSource) Fetch(ctx context.Context, text string) ([]Suggestion, error) {
	results := make(chan []Suggestion, 1)
	f(text, func(suggestions []Suggestion) {
		select {
		case results <- suggestions:
		default:
		}
	})

	select {
	case suggestions := <-results:
		return suggestions, nil
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "suggestions for %q were never delivered", text)
	}
}

// fetchSafely runs the source and turns a panic into an error so a broken
// source can never take the input path down with it.
func fetchSafely(ctx context.Context, source Source, text string) (suggestions []Suggestion, err error) {
	defer func() {
		if r := recover(); r != nil {
			suggestions = nil
			err = errors.Newf("suggestion source panicked: %v", r)
		}
	}()
	return source.Fetch(ctx, text)
}
