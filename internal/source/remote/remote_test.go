package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robottwo/suggester/pkg/suggester"
)

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com", 0, 0)
	assert.Error(t, err)

	_, err = New("://nope", 0, 0)
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	var gotPath, gotQuery, gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		_ = json.NewEncoder(w).Encode(Response{Suggestions: []suggester.Suggestion{
			{Label: "Apple", Icon: "apple.png"},
			{Label: "Apricot"},
			{Label: "Avocado"},
		}})
	}))
	defer server.Close()

	client, err := New(server.URL+"/api", time.Second, 2)
	require.NoError(t, err)
	defer client.Close()

	got, err := client.Fetch(context.Background(), "a b")
	require.NoError(t, err)

	assert.Equal(t, "/api/suggest", gotPath)
	assert.Equal(t, "a b", gotQuery)
	assert.Equal(t, "2", gotLimit)
	assert.Equal(t, []suggester.Suggestion{
		{Label: "Apple", Icon: "apple.png"},
		{Label: "Apricot"},
	}, got, "results are capped client side too")
}

func TestFetch_EmptyTextSkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client, err := New(server.URL, 0, 0)
	require.NoError(t, err)

	got, err := client.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, called)
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client, err := New(server.URL, time.Second, 0)
			require.NoError(t, err)

			_, err = client.Fetch(context.Background(), "a")
			assert.Error(t, err)
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := New(server.URL, 50*time.Millisecond, 0)
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), "a")
	assert.Error(t, err)
}
