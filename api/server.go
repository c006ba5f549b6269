package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/lyricmind/core"
	"github.com/poiesic/lyricmind/ingestion"
)

const (
	defaultMaxBodyBytes = 32 << 20
	shutdownTimeout     = 10 * time.Second
)

var (
	// ErrIngesterRequired is returned when an ingester is not provided.
	ErrIngesterRequired = errors.New("ingester required")

	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")
)

// Ingester embeds songs from files or direct requests.
// *ingestion.Pipeline satisfies it.
type Ingester interface {
	EmbedBulk(ctx context.Context, req ingestion.BulkRequest) (*ingestion.BulkResponse, error)
	EmbedSongs(ctx context.Context, requests []core.SongRequest) (int, error)
}

// Searcher finds songs similar to a query.
// *search.Searcher satisfies it.
type Searcher interface {
	FindSimilar(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error)
}

// Server serves the lyricmind HTTP API.
type Server struct {
	ingester     Ingester
	searcher     Searcher
	maxBodyBytes int64
	logger       *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMaxBodyBytes limits the size of request bodies.
// Default is 32MB.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) error {
		if n <= 0 {
			return errors.New("max body bytes must be positive")
		}
		s.maxBodyBytes = n
		return nil
	}
}

// New creates a Server.
func New(ingester Ingester, searcher Searcher, opts ...Option) (*Server, error) {
	if ingester == nil {
		return nil, ErrIngesterRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	s := &Server{
		ingester:     ingester,
		searcher:     searcher,
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "api")
	return s, nil
}

// Handler returns the routed handler with request ids attached.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/lyricmind/v1/embeddings/bulk-songs", s.handleBulkSongs)
	mux.HandleFunc("POST /api/lyricmind/v1/embeddings/songs", s.handleSongs)
	mux.HandleFunc("GET /api/lyricmind/v1/songs/search", s.handleSearch)
	mux.HandleFunc("GET /health", handleHealth)
	return s.withRequestID(mux)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
