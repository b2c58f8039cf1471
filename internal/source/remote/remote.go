// Package remote fetches suggestions from a suggestion server over HTTP.
package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/robottwo/suggester/pkg/suggester"
)

// Response is the body of GET /suggest.
type Response struct {
	Suggestions []suggester.Suggestion `json:"suggestions"`
}

type Client struct {
	endpoint *url.URL
	http     *http.Client
	limit    int
}

// New targets the /suggest endpoint under baseURL. A zero timeout leaves
// requests bounded only by the fetch context.
func New(baseURL string, timeout time.Duration, limit int) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid remote url %q", baseURL)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.Newf("remote url %q must be http or https", baseURL)
	}
	if limit <= 0 {
		limit = suggester.DefaultMaxSuggestions
	}

	client := cleanhttp.DefaultPooledClient()
	client.Timeout = timeout

	return &Client{
		endpoint: base.JoinPath("suggest"),
		http:     client,
		limit:    limit,
	}, nil
}

func (c *Client) Fetch(ctx context.Context, text string) ([]suggester.Suggestion, error) {
	if text == "" {
		return nil, nil
	}

	u := *c.endpoint
	query := u.Query()
	query.Set("q", text)
	query.Set("limit", strconv.Itoa(c.limit))
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch suggestions for %q", text)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("suggestion server returned %s", resp.Status)
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "failed to decode suggestions")
	}
	if len(body.Suggestions) > c.limit {
		body.Suggestions = body.Suggestions[:c.limit]
	}
	return body.Suggestions, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
