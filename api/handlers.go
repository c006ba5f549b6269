package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/lyricmind/core"
	"github.com/poiesic/lyricmind/dataset"
	"github.com/poiesic/lyricmind/ingestion"
)

const (
	requestIDHeader = "X-Request-Id"

	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// errBadRequest marks request validation failures.
var errBadRequest = errors.New("bad request")

type requestIDKey struct{}

// embedResponse is the body returned by both embedding routes.
type embedResponse struct {
	Embedded int `json:"numberOfEmbeddedSongs"`
	Skipped  int `json:"skippedRows"`
}

// searchHit is one song in a search response.
type searchHit struct {
	SongID      core.ID `json:"songId"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	Album       string  `json:"album"`
	Genre       string  `json:"genre"`
	ReleaseYear int     `json:"releaseYear"`
	Score       float32 `json:"score"`
}

func (s *Server) handleBulkSongs(w http.ResponseWriter, r *http.Request) {
	var req ingestion.BulkRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	resp, err := s.ingester.EmbedBulk(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, embedResponse{Embedded: resp.Embedded, Skipped: resp.Skipped})
}

func (s *Server) handleSongs(w http.ResponseWriter, r *http.Request) {
	var requests []core.SongRequest
	if err := s.decode(w, r, &requests); err != nil {
		s.fail(w, r, err)
		return
	}

	for i, req := range requests {
		requests[i] = req.WithDefaults()
	}

	embedded, err := s.ingester.EmbedSongs(r.Context(), requests)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, embedResponse{Embedded: embedded})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.fail(w, r, fmt.Errorf("%w: q is required", errBadRequest))
		return
	}

	limit := defaultSearchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.fail(w, r, fmt.Errorf("%w: limit must be a positive integer", errBadRequest))
			return
		}
		limit = min(n, maxSearchLimit)
	}

	results, err := s.searcher.FindSimilar(r.Context(), query, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	hits := make([]searchHit, 0, len(results))
	for _, result := range results {
		hits = append(hits, searchHit{
			SongID:      result.Song.Id,
			Title:       result.Song.Title,
			Artist:      result.Song.Artist,
			Album:       result.Song.Album,
			Genre:       result.Song.Genre,
			ReleaseYear: result.Song.ReleaseYear,
			Score:       result.Score,
		})
	}
	writeJSON(w, http.StatusOK, hits)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body of at most maxBodyBytes into v.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %w", errBadRequest, err)
	}
	return nil
}

// fail logs err and writes it with the status it maps to.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	logger := s.logger.With("requestId", requestID(r.Context()), "method", r.Method, "path", r.URL.Path)
	if code >= http.StatusInternalServerError {
		logger.Error("request failed", "status", code, "err", err)
	} else {
		logger.Warn("request rejected", "status", code, "err", err)
	}
	writeError(w, code, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, ingestion.ErrInvalidArgument),
		errors.Is(err, dataset.ErrMissingColumn),
		errors.Is(err, dataset.ErrEmptySource):
		return http.StatusBadRequest
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// withRequestID attaches a request id to the context, the response and
// the access log.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		s.logger.Debug("request", "requestId", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

