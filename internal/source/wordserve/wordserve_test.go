package wordserve

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap/zaptest"

	"github.com/robottwo/suggester/pkg/suggester"
)

// fakeServer answers each request with handle's response until the request
// stream closes.
func fakeServer(t *testing.T, handle func(Request) []Response) (*Client, func()) {
	t.Helper()
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	go func() {
		defer respW.Close()
		dec := msgpack.NewDecoder(reqR)
		enc := msgpack.NewEncoder(respW)
		for {
			var req Request
			if err := dec.Decode(&req); err != nil {
				return
			}
			for _, resp := range handle(req) {
				if err := enc.Encode(&resp); err != nil {
					return
				}
			}
		}
	}()

	client := NewClient(respR, reqW, 3, zaptest.NewLogger(t))
	return client, func() {
		_ = reqW.Close()
		_ = reqR.Close()
	}
}

var words = []string{"amenity", "america", "american", "amend", "amethyst"}

func complete(req Request) []Response {
	var found []Word
	for i, w := range words {
		if strings.HasPrefix(w, req.Prefix) {
			found = append(found, Word{Word: w, Rank: uint16(len(words) - i)})
		}
	}
	return []Response{{ID: req.ID, Suggestions: found, Count: len(found), TimeTaken: 12}}
}

func TestFetch_RanksAndCaps(t *testing.T) {
	var seen []Request
	client, stop := fakeServer(t, func(req Request) []Response {
		seen = append(seen, req)
		return complete(req)
	})
	defer stop()

	got, err := client.Fetch(context.Background(), "am")
	require.NoError(t, err)
	assert.Equal(t, []suggester.Suggestion{
		{Label: "amethyst"},
		{Label: "amend"},
		{Label: "american"},
	}, got)

	require.Len(t, seen, 1)
	assert.Equal(t, "am", seen[0].Prefix)
	assert.Equal(t, 3, seen[0].Limit)
}

func TestFetch_RequestIDsIncrease(t *testing.T) {
	var ids []string
	client, stop := fakeServer(t, func(req Request) []Response {
		ids = append(ids, req.ID)
		return complete(req)
	})
	defer stop()

	for _, prefix := range []string{"a", "am", "ame"} {
		_, err := client.Fetch(context.Background(), prefix)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestFetch_SkipsStaleResponses(t *testing.T) {
	client, stop := fakeServer(t, func(req Request) []Response {
		stale := Response{ID: "stale", Suggestions: []Word{{Word: "wrong", Rank: 1}}}
		return append([]Response{stale}, complete(req)...)
	})
	defer stop()

	got, err := client.Fetch(context.Background(), "amen")
	require.NoError(t, err)
	assert.Equal(t, []suggester.Suggestion{{Label: "amend"}, {Label: "amenity"}}, got)
}

func TestFetch_ErrorResponse(t *testing.T) {
	client, stop := fakeServer(t, func(req Request) []Response {
		return []Response{{ID: req.ID, Error: "prefix too short", Count: 400}}
	})
	defer stop()

	_, err := client.Fetch(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prefix too short")
	assert.Contains(t, err.Error(), "400")
}

func TestFetch_ContextBoundsSilentServer(t *testing.T) {
	client, stop := fakeServer(t, func(Request) []Response { return nil })
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Fetch(ctx, "am")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetch_EmptyText(t *testing.T) {
	client := NewClient(strings.NewReader(""), io.Discard, 0, nil)

	got, err := client.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, client.Close())
}

func TestStart_EmptyCommand(t *testing.T) {
	_, err := Start(context.Background(), nil, 0, nil)
	assert.Error(t, err)
}
