// Package wordserve talks to a wordserve-compatible completion process: a
// stream of msgpack requests on its stdin answered by msgpack responses on
// its stdout.
//
// Request:
//
//	{"id": "3", "p": "ame", "l": 8}
//
// Response, ranked best first:
//
//	{"id": "3", "s": [{"w": "amenity", "r": 1}, {"w": "america", "r": 2}], "c": 2, "t": 145}
//
// or, on failure:
//
//	{"id": "3", "e": "prefix too short", "c": 400}
package wordserve

import (
	"context"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/robottwo/suggester/pkg/suggester"
)

type Request struct {
	ID     string `msgpack:"id"`
	Prefix string `msgpack:"p"`
	Limit  int    `msgpack:"l,omitempty"`
}

type Word struct {
	Word string `msgpack:"w"`
	Rank uint16 `msgpack:"r"`
}

// Response covers both the completion and the error shape; Code shares the
// "c" key with Count.
type Response struct {
	ID          string `msgpack:"id"`
	Suggestions []Word `msgpack:"s,omitempty"`
	Count       int    `msgpack:"c"`
	TimeTaken   int64  `msgpack:"t,omitempty"`
	Error       string `msgpack:"e,omitempty"`
}

type Client struct {
	limit  int
	logger *zap.Logger
	nextID atomic.Uint64

	// mu serializes request/response exchanges on the stream.
	mu  sync.Mutex
	enc *msgpack.Encoder
	dec *msgpack.Decoder

	closeFn func() error
}

// NewClient speaks the protocol over an existing stream.
func NewClient(r io.Reader, w io.Writer, limit int, logger *zap.Logger) *Client {
	if limit <= 0 {
		limit = suggester.DefaultMaxSuggestions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		limit:   limit,
		logger:  logger,
		enc:     msgpack.NewEncoder(w),
		dec:     msgpack.NewDecoder(r),
		closeFn: func() error { return nil },
	}
}

// Start launches command and talks to it over its stdin and stdout. The
// process is stopped when ctx is done or Close is called.
func Start(ctx context.Context, command []string, limit int, logger *zap.Logger) (*Client, error) {
	if len(command) == 0 {
		return nil, errors.New("wordserve command is empty")
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open wordserve stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open wordserve stdout")
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to start %s", command[0])
	}

	client := NewClient(stdout, stdin, limit, logger)
	client.logger.Info("wordserve started", zap.Strings("command", command), zap.Int("pid", cmd.Process.Pid))

	var once sync.Once
	client.closeFn = func() error {
		var err error
		once.Do(func() {
			_ = stdin.Close()
			err = cmd.Wait()
		})
		return err
	}
	return client, nil
}

func (c *Client) Fetch(ctx context.Context, text string) ([]suggester.Suggestion, error) {
	if text == "" {
		return nil, nil
	}

	type result struct {
		resp Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := c.exchange(Request{
			ID:     strconv.FormatUint(c.nextID.Inc(), 10),
			Prefix: text,
			Limit:  c.limit,
		})
		done <- result{resp, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "wordserve did not answer for %q", text)
	}
	if res.err != nil {
		return nil, res.err
	}
	if res.resp.Error != "" {
		return nil, errors.Newf("wordserve: %s (code %d)", res.resp.Error, res.resp.Count)
	}

	words := res.resp.Suggestions
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].Rank < words[j].Rank
	})
	if len(words) > c.limit {
		words = words[:c.limit]
	}

	suggestions := make([]suggester.Suggestion, 0, len(words))
	for _, w := range words {
		suggestions = append(suggestions, suggester.Suggestion{Label: w.Word})
	}
	return suggestions, nil
}

// exchange writes req and reads responses until the one carrying req.ID
// arrives. Answers to abandoned requests are skipped on the way.
func (c *Client) exchange(req Request) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.enc.Encode(&req); err != nil {
		return Response{}, errors.Wrap(err, "failed to send wordserve request")
	}

	for {
		var resp Response
		if err := c.dec.Decode(&resp); err != nil {
			return Response{}, errors.Wrap(err, "failed to read wordserve response")
		}
		if resp.ID == req.ID {
			return resp, nil
		}
		c.logger.Debug("wordserve skipping stale response", zap.String("id", resp.ID), zap.String("want", req.ID))
	}
}

// Close stops the process started by Start.
func (c *Client) Close() error {
	return c.closeFn()
}
