// Package fuzzy matches the field text against a list of suggestions as a
// fuzzy pattern rather than a prefix.
package fuzzy

import (
	"context"

	"github.com/sahilm/fuzzy"

	"github.com/robottwo/suggester/pkg/suggester"
)

type labels []suggester.Suggestion

func (l labels) String(i int) string {
	return l[i].Label
}

func (l labels) Len() int {
	return len(l)
}

// Matcher ranks the items returned by Items against the text, best match
// first. Items is called on every fetch so a reloading list stays current.
type Matcher struct {
	Items func() []suggester.Suggestion
	Limit int
}

func New(items func() []suggester.Suggestion, limit int) *Matcher {
	if limit <= 0 {
		limit = suggester.DefaultMaxSuggestions
	}
	return &Matcher{Items: items, Limit: limit}
}

func (m *Matcher) Fetch(ctx context.Context, text string) ([]suggester.Suggestion, error) {
	if text == "" {
		return nil, nil
	}

	items := labels(m.Items())
	matches := fuzzy.FindFrom(text, items)

	suggestions := make([]suggester.Suggestion, 0, min(len(matches), m.Limit))
	for _, match := range matches {
		if len(suggestions) == m.Limit {
			break
		}
		suggestions = append(suggestions, items[match.Index])
	}
	return suggestions, ctx.Err()
}
