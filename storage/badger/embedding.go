package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lyricmind/core"
	"github.com/poiesic/lyricmind/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) (*EmbeddingRepository, error) {
	return &EmbeddingRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *EmbeddingRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *EmbeddingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindSimilar delegates to the backend.
func (r *EmbeddingRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// AddEmbeddings upserts embeddings all-or-nothing, splitting large batches
// across transactions. Embeddings without an ID are keyed by their content.
func (r *EmbeddingRepository) AddEmbeddings(ctx context.Context, embeddings ...*core.SongEmbedding) ([]*core.SongEmbedding, error) {
	for _, embedding := range embeddings {
		if err := core.ValidateSongEmbedding(embedding); err != nil {
			return nil, err
		}
	}

	writes := make([]kv, 0, len(embeddings))
	now := time.Now().UTC()
	for _, embedding := range embeddings {
		if embedding.Id == 0 {
			embedding.Id = core.IDFromContent(embedding.Content)
		}
		if embedding.InsertedAt.IsZero() {
			embedding.InsertedAt = now
		}
		writes = append(writes, kv{key: makeEmbeddingKey(embedding.Id), value: storage.MarshalSongEmbedding(embedding)})
	}

	if err := r.backend.writeAll(ctx, writes); err != nil {
		return nil, err
	}

	return embeddings, nil
}

// GetEmbedding retrieves an embedding by ID.
func (r *EmbeddingRepository) GetEmbedding(ctx context.Context, id core.ID) (*core.SongEmbedding, error) {
	var result *core.SongEmbedding
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalSongEmbedding(val)
			return err
		})
	}, false)
	return result, err
}

// CountEmbeddings returns the number of stored embeddings.
func (r *EmbeddingRepository) CountEmbeddings(ctx context.Context) (int, error) {
	return r.backend.countPrefix(embeddingPrefix)
}
