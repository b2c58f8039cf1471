// Package source combines suggestion sources into one.
package source

import (
	"context"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/robottwo/suggester/pkg/suggester"
)

// Named pairs a source with the name used in logs.
type Named struct {
	Name   string
	Source suggester.Source
}

// Merged queries every source concurrently and concatenates the results in
// source order, dropping repeated labels and capping the total at Limit. A
// source that fails or panics is logged and skipped; the fetch fails only
// when every source failed.
type Merged struct {
	Sources []Named
	Limit   int
	Logger  *zap.Logger
}

func NewMerged(limit int, logger *zap.Logger, sources ...Named) *Merged {
	if limit <= 0 {
		limit = suggester.DefaultMaxSuggestions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merged{Sources: sources, Limit: limit, Logger: logger}
}

func (m *Merged) Fetch(ctx context.Context, text string) ([]suggester.Suggestion, error) {
	results := make([][]suggester.Suggestion, len(m.Sources))
	errs := make([]error, len(m.Sources))

	var wg sync.WaitGroup
	for i, named := range m.Sources {
		wg.Add(1)
		go func(i int, named Named) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = nil
					errs[i] = errors.Newf("source %s panicked: %v", named.Name, r)
				}
			}()
			results[i], errs[i] = named.Source.Fetch(ctx, text)
		}(i, named)
	}
	wg.Wait()

	var failed *multierror.Error
	failures := 0
	for i, err := range errs {
		if err != nil {
			failures++
			m.Logger.Debug("suggestion source failed",
				zap.String("source", m.Sources[i].Name),
				zap.String("text", text),
				zap.Error(err))
			failed = multierror.Append(failed, err)
		}
	}
	if len(m.Sources) > 0 && failures == len(m.Sources) {
		return nil, failed.ErrorOrNil()
	}

	merged := lo.UniqBy(lo.Flatten(results), func(s suggester.Suggestion) string {
		return s.Label
	})
	if len(merged) > m.Limit {
		merged = merged[:m.Limit]
	}
	return merged, nil
}

// Close closes every source that holds resources.
func (m *Merged) Close() error {
	var result *multierror.Error
	for _, named := range m.Sources {
		if closer, ok := named.Source.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	return result.ErrorOrNil()
}
