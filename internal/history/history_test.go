package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robottwo/suggester/pkg/suggester"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, manager.Close())
	})
	return manager
}

func record(t *testing.T, manager *Manager, values ...string) {
	t.Helper()
	for _, value := range values {
		_, err := manager.Record(context.Background(), value)
		require.NoError(t, err)
	}
}

func TestRecord(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	entry, err := manager.Record(ctx, "apple")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.NotZero(t, entry.ID)
	assert.Equal(t, manager.SessionID(), entry.SessionID)
	_, err = uuid.Parse(entry.SessionID)
	assert.NoError(t, err)

	entry, err = manager.Record(ctx, "   ")
	require.NoError(t, err)
	assert.Nil(t, entry, "blank values are not recorded")
}

func TestRecent(t *testing.T) {
	manager := newTestManager(t)
	record(t, manager, "apple", "banana", "cherry")

	entries, err := manager.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "cherry", entries[0].Value)
	assert.Equal(t, "banana", entries[1].Value)
}

func TestSearch_RanksByUseThenRecency(t *testing.T) {
	manager := newTestManager(t)
	record(t, manager, "Apricot", "apple", "Apple pie", "apple", "banana", "Apple pie", "apple")

	matches, err := manager.Search(context.Background(), "ap", 10)
	require.NoError(t, err)

	var values []string
	for _, match := range matches {
		values = append(values, match.Value)
	}
	assert.Equal(t, []string{"apple", "Apple pie", "Apricot"}, values)
	assert.EqualValues(t, 3, matches[0].Uses)
}

func TestSearch_EscapesWildcards(t *testing.T) {
	manager := newTestManager(t)
	record(t, manager, "100% juice", "100 grams", "a_b", "axb")

	matches, err := manager.Search(context.Background(), "100%", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "100% juice", matches[0].Value)

	matches, err = manager.Search(context.Background(), "a_", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a_b", matches[0].Value)
}

func TestUsage(t *testing.T) {
	manager := newTestManager(t)
	record(t, manager, "apple", "banana", "banana")

	usage, err := manager.Usage(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, "banana", usage[0].Value)
	assert.EqualValues(t, 2, usage[0].Uses)
	assert.False(t, usage[0].LastUsed.IsZero())
	assert.Equal(t, "apple", usage[1].Value)
}

func TestClear(t *testing.T) {
	manager := newTestManager(t)
	record(t, manager, "apple", "banana")

	require.NoError(t, manager.Clear(context.Background()))

	entries, err := manager.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSource(t *testing.T) {
	manager := newTestManager(t)
	record(t, manager, "apple", "apricot", "apricot", "banana")

	source := Source{Manager: manager, Limit: 1}

	suggestions, err := source.Fetch(context.Background(), "AP")
	require.NoError(t, err)
	assert.Equal(t, []suggester.Suggestion{{Label: "apricot"}}, suggestions)

	suggestions, err = source.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}
