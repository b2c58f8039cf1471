package suggester

import (
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const (
	DefaultMaxSuggestions = 8
	DefaultFetchDelay     = 100 * time.Millisecond
)

var (
	ErrMissingSource         = errors.New("suggester: a suggestion source is required")
	ErrInvalidMaxSuggestions = errors.New("suggester: max suggestions must be positive")
	ErrNegativeDelay         = errors.New("suggester: fetch delay must not be negative")
	ErrNegativeTimeout       = errors.New("suggester: fetch timeout must not be negative")
)

type Options struct {
	// MaxSuggestions caps both the retained suggestion count and the number
	// of list slots the view renders.
	MaxSuggestions int

	// FetchDelay is the debounce delay between the last keystroke and the
	// call into the Source.
	FetchDelay time.Duration

	// FetchTimeout bounds a single Source call. Zero leaves fetches
	// unbounded: a source that never returns keeps the last list forever.
	FetchTimeout time.Duration

	// OnValueUpdated receives the settled value (text plus ghost completion)
	// whenever it differs from the last one reported.
	OnValueUpdated func(value string)

	// OnRender receives the render instructions after every state change.
	OnRender func(view View)

	Logger *zap.Logger
}

func NewOptions() Options {
	return Options{
		MaxSuggestions: DefaultMaxSuggestions,
		FetchDelay:     DefaultFetchDelay,
	}
}

func (o Options) validate() error {
	if o.MaxSuggestions <= 0 {
		return errors.Wrapf(ErrInvalidMaxSuggestions, "got %d", o.MaxSuggestions)
	}
	if o.FetchDelay < 0 {
		return errors.Wrapf(ErrNegativeDelay, "got %s", o.FetchDelay)
	}
	if o.FetchTimeout < 0 {
		return errors.Wrapf(ErrNegativeTimeout, "got %s", o.FetchTimeout)
	}
	return nil
}
