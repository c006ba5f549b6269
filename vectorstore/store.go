package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lyricmind/ai"
	"github.com/poiesic/lyricmind/core"
	"github.com/poiesic/lyricmind/storage"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

const (
	// DefaultBatchSize is the number of texts sent to the embedder per call.
	DefaultBatchSize = 32
)

// Store embeds song documents and keeps their vectors in an embedding repository.
type Store struct {
	embedder      ai.Embedder
	repo          storage.EmbeddingRepository
	pool          *ants.Pool
	batchSize     int
	maxTokens     int
	truncator     *truncator
	minSimilarity float32
	logger        *slog.Logger
}

var _ vectorstores.VectorStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithBatchSize sets how many texts are embedded per embedder call.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(s *Store) error {
		if size < 1 {
			size = 1
		}
		s.batchSize = size
		return nil
	}
}

// WithPoolSize sets the number of concurrent embedder calls.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Store) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if s.pool != nil {
			s.pool.Release()
		}
		s.pool = pool
		return nil
	}
}

// WithMaxTokens truncates document contents to n cl100k_base tokens before
// embedding. Zero disables truncation.
func WithMaxTokens(n int) Option {
	return func(s *Store) error {
		s.maxTokens = max(n, 0)
		return nil
	}
}

// WithMinSimilarity sets the score threshold used when a search does not
// pass vectorstores.WithScoreThreshold.
func WithMinSimilarity(score float32) Option {
	return func(s *Store) error {
		if score < 0 || score > 1 {
			return ErrInvalidScoreThreshold
		}
		s.minSimilarity = score
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a Store. Call Release when done to stop the worker pool.
func New(embedder ai.Embedder, repo storage.EmbeddingRepository, opts ...Option) (*Store, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	s := &Store{
		embedder:  embedder,
		repo:      repo,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}

	if s.pool == nil {
		pool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
		if err != nil {
			return nil, err
		}
		s.pool = pool
	}

	if s.maxTokens > 0 {
		t, err := newTruncator(s.maxTokens)
		if err != nil {
			s.Release()
			return nil, err
		}
		s.truncator = t
	}

	s.logger = s.logger.With("component", "vectorstore")
	return s, nil
}

// Release stops the worker pool.
func (s *Store) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// AddDocuments embeds docs and stores them in one AddEmbeddings call.
// Either every document is stored or none is. The returned IDs are the
// decimal embedding IDs in document order.
func (s *Store) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	opts := getOptions(options...)

	if opts.Deduplicater != nil {
		kept := docs[:0:0]
		for _, doc := range docs {
			if !opts.Deduplicater(ctx, doc) {
				kept = append(kept, doc)
			}
		}
		docs = kept
	}
	if len(docs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.PageContent
		if s.truncator != nil {
			texts[i] = s.truncator.Truncate(texts[i])
		}
	}

	vectors, err := s.embedAll(ctx, s.embedderFor(opts), texts)
	if err != nil {
		return nil, err
	}

	records := make([]*core.SongEmbedding, len(docs))
	for i, doc := range docs {
		records[i] = newSongEmbedding(doc, NormalizeVector(vectors[i]))
	}

	if _, err := s.repo.AddEmbeddings(ctx, records...); err != nil {
		return nil, err
	}

	ids := make([]string, len(records))
	for i, record := range records {
		ids[i] = record.Id.String()
	}

	s.logger.Debug("added documents", "count", len(records))
	return ids, nil
}

// SimilaritySearch returns up to numDocuments documents most similar to query.
// Filters, when given, must be a metadata map; every entry must match.
func (s *Store) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	opts := getOptions(options...)
	if numDocuments <= 0 {
		return nil, nil
	}

	threshold := s.minSimilarity
	if opts.ScoreThreshold != 0 {
		if opts.ScoreThreshold < 0 || opts.ScoreThreshold > 1 {
			return nil, ErrInvalidScoreThreshold
		}
		threshold = opts.ScoreThreshold
	}

	filters, err := metadataFilters(opts.Filters)
	if err != nil {
		return nil, err
	}

	vector, err := s.embedderFor(opts).EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	// Filtering happens after ranking, so fetch everything above the threshold.
	limit := numDocuments
	if len(filters) > 0 {
		limit = 0
	}
	matches, err := s.repo.FindSimilar(ctx, NormalizeVector(vector), threshold, limit)
	if err != nil {
		return nil, err
	}

	docs := make([]schema.Document, 0, min(len(matches), numDocuments))
	for _, match := range matches {
		if !matchesFilters(match.Embedding.Metadata, filters) {
			continue
		}
		docs = append(docs, toDocument(match))
		if len(docs) == numDocuments {
			break
		}
	}
	return docs, nil
}

// embedAll embeds texts in batches on the worker pool, preserving order.
func (s *Store) embedAll(ctx context.Context, embedder ai.Embedder, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for start := 0; start < len(texts); start += s.batchSize {
		end := min(start+s.batchSize, len(texts))
		batch := texts[start:end]
		offset := start

		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				setErr(ctx.Err())
				return
			}
			result, err := embedder.EmbedDocuments(ctx, batch)
			if err != nil {
				s.logger.Error("failed to embed batch", "offset", offset, "size", len(batch), "err", err)
				setErr(err)
				return
			}
			if len(result) != len(batch) {
				setErr(fmt.Errorf("%w: got %d, want %d", ErrVectorCount, len(result), len(batch)))
				return
			}
			copy(vectors[offset:], result)
		})
		if err != nil {
			wg.Done()
			setErr(err)
			break
		}
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// embedderFor prefers an embedder passed through vectorstores.WithEmbedder.
func (s *Store) embedderFor(opts vectorstores.Options) ai.Embedder {
	if opts.Embedder != nil {
		return opts.Embedder
	}
	return s.embedder
}

func getOptions(options ...vectorstores.Option) vectorstores.Options {
	opts := vectorstores.Options{}
	for _, opt := range options {
		opt(&opts)
	}
	return opts
}

// newSongEmbedding converts a document into its stored form. The ID comes
// from the songId metadata value when present so re-adding a song replaces
// its previous embedding.
func newSongEmbedding(doc schema.Document, vector []float32) *core.SongEmbedding {
	metadata := make(map[string]string, len(doc.Metadata))
	for k, v := range doc.Metadata {
		metadata[k] = fmt.Sprint(v)
	}

	record := &core.SongEmbedding{
		Content:  doc.PageContent,
		Vector:   vector,
		Metadata: metadata,
	}

	if songID, ok := metadata[core.MetaSongID]; ok && songID != "" {
		record.Id = core.IDFromContent(songID)
		if id, err := strconv.ParseUint(songID, 10, 64); err == nil {
			record.SongId = core.ID(id)
		}
	} else {
		record.Id = core.IDFromContent(doc.PageContent)
	}
	return record
}

func toDocument(match *core.SimilarityMatch) schema.Document {
	metadata := make(map[string]any, len(match.Embedding.Metadata))
	for k, v := range match.Embedding.Metadata {
		metadata[k] = v
	}
	return schema.Document{
		PageContent: match.Embedding.Content,
		Metadata:    metadata,
		Score:       match.Score,
	}
}

func metadataFilters(filters any) (map[string]string, error) {
	switch f := filters.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return f, nil
	case map[string]any:
		out := make(map[string]string, len(f))
		for k, v := range f {
			out[k] = fmt.Sprint(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedFilter, filters)
	}
}

func matchesFilters(metadata, filters map[string]string) bool {
	for k, want := range filters {
		if metadata[k] != want {
			return false
		}
	}
	return true
}
