package vectorstore

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/poiesic/lyricmind/ai/mock"
	"github.com/poiesic/lyricmind/core"
	"github.com/poiesic/lyricmind/storage"
	"github.com/poiesic/lyricmind/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

func newTestStore(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) (*Store, storage.EmbeddingRepository) {
	t.Helper()
	songRepo, embeddingRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	store, err := New(embedder, embeddingRepo, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Release()
		embeddingRepo.Close()
		songRepo.Close()
		backend.Close()
	})
	return store, embeddingRepo
}

func songDoc(id, title, lyrics string) schema.Document {
	return schema.Document{
		PageContent: "Title: " + title + "\nArtist: Test\nLyrics: " + lyrics + "\n",
		Metadata: map[string]any{
			core.MetaSongID: id,
			core.MetaTitle:  title,
			core.MetaGenre:  "Pop",
		},
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = New(mock.NewMockEmbedder(), nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
}

func TestNew_InvalidMinSimilarity(t *testing.T) {
	_, embeddingRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	_, err = New(mock.NewMockEmbedder(), embeddingRepo, WithMinSimilarity(1.5))
	assert.ErrorIs(t, err, ErrInvalidScoreThreshold)
}

func TestAddDocuments_BatchesAndStores(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store, repo := newTestStore(t, embedder, WithBatchSize(2), WithPoolSize(3))
	ctx := context.Background()

	docs := []schema.Document{
		songDoc("1", "One", "a"),
		songDoc("2", "Two", "b"),
		songDoc("3", "Three", "c"),
		songDoc("4", "Four", "d"),
		songDoc("5", "Five", "e"),
	}

	ids, err := store.AddDocuments(ctx, docs)
	require.NoError(t, err)
	require.Len(t, ids, 5)

	assert.Equal(t, 3, embedder.CallCount())
	assert.Equal(t, 5, embedder.TextCount())

	count, err := repo.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	stored, err := repo.GetEmbedding(ctx, core.IDFromContent("3"))
	require.NoError(t, err)
	assert.Equal(t, core.ID(3), stored.SongId)
	assert.Equal(t, docs[2].PageContent, stored.Content)
	assert.Equal(t, "Three", stored.Metadata[core.MetaTitle])
	assert.InDeltaSlice(t, mock.Vector(docs[2].PageContent), stored.Vector, 1e-6)
}

func TestAddDocuments_ReAddReplaces(t *testing.T) {
	store, repo := newTestStore(t, mock.NewMockEmbedder())
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []schema.Document{songDoc("9", "Old", "old words")})
	require.NoError(t, err)
	_, err = store.AddDocuments(ctx, []schema.Document{songDoc("9", "New", "new words")})
	require.NoError(t, err)

	count, err := repo.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := repo.GetEmbedding(ctx, core.IDFromContent("9"))
	require.NoError(t, err)
	assert.Equal(t, "New", stored.Metadata[core.MetaTitle])
}

func TestAddDocuments_WithoutSongIDKeyedByContent(t *testing.T) {
	store, repo := newTestStore(t, mock.NewMockEmbedder())
	ctx := context.Background()

	ids, err := store.AddDocuments(ctx, []schema.Document{{PageContent: "free text"}})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	_, err = repo.GetEmbedding(ctx, core.IDFromContent("free text"))
	assert.NoError(t, err)
}

func TestAddDocuments_EmbedderFailureStoresNothing(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var calls atomic.Int32
	embedder.EmbedDocumentsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) == 2 {
			return nil, errors.New("backend down")
		}
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.Vector(text)
		}
		return out, nil
	}
	store, repo := newTestStore(t, embedder, WithBatchSize(1), WithPoolSize(1))
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []schema.Document{
		songDoc("1", "One", "a"),
		songDoc("2", "Two", "b"),
		songDoc("3", "Three", "c"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")

	count, err := repo.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAddDocuments_VectorCountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedDocumentsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}
	store, _ := newTestStore(t, embedder)

	_, err := store.AddDocuments(context.Background(), []schema.Document{
		songDoc("1", "One", "a"),
		songDoc("2", "Two", "b"),
	})
	assert.ErrorIs(t, err, ErrVectorCount)
}

func TestAddDocuments_Empty(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store, _ := newTestStore(t, embedder)

	ids, err := store.AddDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Zero(t, embedder.CallCount())
}

func TestAddDocuments_Deduplicater(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store, repo := newTestStore(t, embedder)
	ctx := context.Background()

	skipTwo := vectorstores.WithDeduplicater(func(ctx context.Context, doc schema.Document) bool {
		return doc.Metadata[core.MetaSongID] == "2"
	})
	ids, err := store.AddDocuments(ctx, []schema.Document{songDoc("1", "One", "a"), songDoc("2", "Two", "b")}, skipTwo)
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	count, err := repo.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSimilaritySearch(t *testing.T) {
	store, _ := newTestStore(t, mock.NewMockEmbedder())
	ctx := context.Background()

	docs := []schema.Document{
		songDoc("1", "One", "first"),
		songDoc("2", "Two", "second"),
		songDoc("3", "Three", "third"),
	}
	_, err := store.AddDocuments(ctx, docs)
	require.NoError(t, err)

	// The mock embeds identical text to identical vectors.
	results, err := store.SimilaritySearch(ctx, docs[1].PageContent, 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 2)
	assert.Equal(t, "2", results[0].Metadata[core.MetaSongID])
	assert.InDelta(t, 1.0, results[0].Score, 1e-4)

	exact, err := store.SimilaritySearch(ctx, docs[1].PageContent, 10, vectorstores.WithScoreThreshold(0.9999))
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, docs[1].PageContent, exact[0].PageContent)
}

func TestSimilaritySearch_Filters(t *testing.T) {
	store, _ := newTestStore(t, mock.NewMockEmbedder())
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []schema.Document{
		songDoc("1", "One", "first"),
		songDoc("2", "Two", "second"),
	})
	require.NoError(t, err)

	results, err := store.SimilaritySearch(ctx, "anything", 5,
		vectorstores.WithFilters(map[string]any{core.MetaTitle: "Two"}))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Two", results[0].Metadata[core.MetaTitle])

	_, err = store.SimilaritySearch(ctx, "anything", 5, vectorstores.WithFilters("title=Two"))
	assert.ErrorIs(t, err, ErrUnsupportedFilter)
}

func TestSimilaritySearch_InvalidThreshold(t *testing.T) {
	store, _ := newTestStore(t, mock.NewMockEmbedder())

	_, err := store.SimilaritySearch(context.Background(), "q", 5, vectorstores.WithScoreThreshold(2))
	assert.ErrorIs(t, err, ErrInvalidScoreThreshold)
}

func TestSimilaritySearch_ZeroDocuments(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store, _ := newTestStore(t, embedder)

	results, err := store.SimilaritySearch(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, embedder.CallCount())
}

// upperEmbedder is a langchaingo embedder that records what it saw.
type upperEmbedder struct {
	seen atomic.Int32
}

func (e *upperEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.seen.Add(int32(len(texts)))
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = mock.Vector(strings.ToUpper(text))
	}
	return out, nil
}

func (e *upperEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.seen.Add(1)
	return mock.Vector(strings.ToUpper(text)), nil
}

func TestAddDocuments_WithEmbedderOption(t *testing.T) {
	defaultEmbedder := mock.NewMockEmbedder()
	store, _ := newTestStore(t, defaultEmbedder)
	override := &upperEmbedder{}

	_, err := store.AddDocuments(context.Background(),
		[]schema.Document{songDoc("1", "One", "a")},
		vectorstores.WithEmbedder(override))
	require.NoError(t, err)

	assert.Equal(t, int32(1), override.seen.Load())
	assert.Zero(t, defaultEmbedder.CallCount())
}
