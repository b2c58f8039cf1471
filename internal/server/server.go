// Package server exposes a suggestion source over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/robottwo/suggester/internal/source/remote"
	"github.com/robottwo/suggester/pkg/suggester"
)

const shutdownTimeout = 5 * time.Second

type SuggestQuery struct {
	Text  string `form:"q"`
	Limit int    `form:"limit"`
}

type Server struct {
	source   suggester.Source
	maxLimit int
	timeout  time.Duration
	logger   *zap.Logger
}

// New serves source. maxLimit caps the limit a client may ask for; timeout
// bounds each lookup when positive.
func New(source suggester.Source, maxLimit int, timeout time.Duration, logger *zap.Logger) *Server {
	if maxLimit <= 0 {
		maxLimit = suggester.DefaultMaxSuggestions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		source:   source,
		maxLimit: maxLimit,
		timeout:  timeout,
		logger:   logger,
	}
}

func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/suggest", s.suggest)

	return r
}

func (s *Server) suggest(c *gin.Context) {
	var query SuggestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if query.Limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must not be negative"})
		return
	}
	if query.Limit == 0 || query.Limit > s.maxLimit {
		query.Limit = s.maxLimit
	}

	ctx := c.Request.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	suggestions, err := s.source.Fetch(ctx, query.Text)
	if err != nil {
		s.logger.Warn("suggestion lookup failed", zap.String("q", query.Text), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "suggestion lookup failed"})
		return
	}
	if suggestions == nil {
		suggestions = []suggester.Suggestion{}
	}
	if len(suggestions) > query.Limit {
		suggestions = suggestions[:query.Limit]
	}

	c.JSON(http.StatusOK, remote.Response{Suggestions: suggestions})
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("elapsed", time.Since(start)))
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("suggestion server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrapf(err, "failed to serve on %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down server")
	}
	return nil
}
