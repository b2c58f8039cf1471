package fuzzy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robottwo/suggester/pkg/suggester"
)

func fruitList() []suggester.Suggestion {
	return []suggester.Suggestion{
		{Label: "Grape"},
		{Label: "Banana"},
		{Label: "Pineapple", Icon: "🍍"},
		{Label: "Cherry"},
	}
}

func TestFetch(t *testing.T) {
	m := New(fruitList, 0)

	got, err := m.Fetch(context.Background(), "ape")
	require.NoError(t, err)
	assert.ElementsMatch(t, []suggester.Suggestion{
		{Label: "Grape"},
		{Label: "Pineapple", Icon: "🍍"},
	}, got)

	got, err = m.Fetch(context.Background(), "xyz")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = m.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetch_Limit(t *testing.T) {
	m := New(fruitList, 1)

	got, err := m.Fetch(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFetch_ReadsItemsEachTime(t *testing.T) {
	items := []suggester.Suggestion{{Label: "Apple"}}
	m := New(func() []suggester.Suggestion { return items }, 0)

	got, err := m.Fetch(context.Background(), "kw")
	require.NoError(t, err)
	assert.Empty(t, got)

	items = append(items, suggester.Suggestion{Label: "Kiwi"})
	got, err = m.Fetch(context.Background(), "kw")
	require.NoError(t, err)
	assert.Equal(t, []suggester.Suggestion{{Label: "Kiwi"}}, got)
}

func TestFetch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(fruitList, 0).Fetch(ctx, "ape")
	assert.ErrorIs(t, err, context.Canceled)
}
