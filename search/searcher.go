package search

import (
	"context"
	"log/slog"
	"sort"
	"strconv"

	"github.com/poiesic/lyricmind/core"
	"github.com/poiesic/lyricmind/storage"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

const (
	// DefaultMinSimilarity is the lowest similarity a hit may have.
	DefaultMinSimilarity = 0.60

	verbatimBoost = 0.3
)

// Searcher provides semantic search over stored songs.
type Searcher struct {
	store         vectorstores.VectorStore
	songs         storage.SongRepository
	minSimilarity float32
	filters       map[string]string
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinSimilarity sets the similarity threshold for hits.
// Default is DefaultMinSimilarity.
func WithMinSimilarity(score float32) Option {
	return func(s *Searcher) error {
		if score < 0 || score > 1 {
			return ErrInvalidSimilarity
		}
		s.minSimilarity = score
		return nil
	}
}

// WithFilters restricts hits to songs whose document metadata matches every
// entry, e.g. {"genre": "Rock"}.
func WithFilters(filters map[string]string) Option {
	return func(s *Searcher) error {
		s.filters = filters
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(store vectorstores.VectorStore, songs storage.SongRepository, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrVectorStoreRequired
	}
	if songs == nil {
		return nil, ErrSongRepositoryRequired
	}

	s := &Searcher{
		store:         store,
		songs:         songs,
		minSimilarity: DefaultMinSimilarity,
		logger:        slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.logger = s.logger.With("component", "searcher")
	return s, nil
}

// FindSimilar searches for songs similar to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, nil)
}

// FindSimilarWithMonitor searches for songs similar to the query with monitoring.
// The monitor receives callbacks at each stage of the search process.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)
	if maxHits <= 0 {
		monitor.Finish(nil)
		return []*core.SearchResult{}, nil
	}

	options := []vectorstores.Option{vectorstores.WithScoreThreshold(s.minSimilarity)}
	if len(s.filters) > 0 {
		options = append(options, vectorstores.WithFilters(s.filters))
	}

	docs, err := s.store.SimilaritySearch(ctx, query, maxHits, options...)
	if err != nil {
		s.logger.Error("error querying for similar songs", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterSimilaritySearch(docs)

	// Best score per song; a song may have been embedded under more than one document.
	scores := make(map[core.ID]float32, len(docs))
	ids := make([]core.ID, 0, len(docs))
	for _, doc := range docs {
		id, ok := songID(doc)
		if !ok {
			s.logger.Warn("document has no song id", "metadata", doc.Metadata)
			continue
		}
		if score, seen := scores[id]; seen {
			scores[id] = max(score, doc.Score)
			continue
		}
		scores[id] = doc.Score
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		monitor.Finish(nil)
		return []*core.SearchResult{}, nil
	}

	songs, err := s.songs.GetSongs(ctx, ids...)
	if err != nil {
		s.logger.Error("error retrieving songs", "songCount", len(ids), "err", err)
		return nil, err
	}
	monitor.AfterSongRetrieval(songs)

	results := make([]*core.SearchResult, 0, len(songs))
	for _, song := range songs {
		if song == nil {
			continue
		}

		score := scores[song.Id]
		if containsAllQueryWords(song.Title+" "+song.Artist+" "+song.Lyrics, query) {
			score += verbatimBoost
			monitor.VerbatimHit(song)
		}

		results = append(results, &core.SearchResult{
			Song:  song,
			Score: score,
		})
	}

	// Sort by score descending
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}

// songID reads the songId metadata value, which is a core.ID on documents
// built in process and a decimal string on documents read back from a store.
func songID(doc schema.Document) (core.ID, bool) {
	switch v := doc.Metadata[core.MetaSongID].(type) {
	case core.ID:
		return v, true
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return core.ID(id), true
	default:
		return 0, false
	}
}
