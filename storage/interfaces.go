package storage

import (
	"context"

	"github.com/poiesic/lyricmind/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// SongRepository provides operations for managing songs.
type SongRepository interface {
	Repository
	// SaveSongs persists one or more songs atomically.
	// Songs with ID=0 get a new ID from the song sequence; songs with an
	// ID are overwritten. Sets InsertedAt if unset and always sets UpdatedAt.
	// Returns the songs with IDs and timestamps populated.
	SaveSongs(ctx context.Context, songs ...*core.Song) ([]*core.Song, error)

	// GetSong retrieves a single song by ID.
	// Returns ErrNotFound if the song doesn't exist.
	GetSong(ctx context.Context, id core.ID) (*core.Song, error)

	// GetSongs retrieves multiple songs by their IDs.
	// Returns only the songs that exist (no error for missing songs).
	GetSongs(ctx context.Context, ids ...core.ID) ([]*core.Song, error)

	// ListSongs returns up to limit songs with ID greater than after, in ID order.
	ListSongs(ctx context.Context, after core.ID, limit int) ([]*core.Song, error)

	// CountSongs returns the number of stored songs.
	CountSongs(ctx context.Context) (int, error)

	// DeleteSongs removes songs by their IDs.
	// Returns ErrNotFound if any song doesn't exist.
	DeleteSongs(ctx context.Context, ids ...core.ID) error
}

// EmbeddingRepository provides operations for managing song embeddings.
type EmbeddingRepository interface {
	Repository
	// AddEmbeddings upserts embeddings keyed by their ID, all or nothing.
	AddEmbeddings(ctx context.Context, embeddings ...*core.SongEmbedding) ([]*core.SongEmbedding, error)

	// GetEmbedding retrieves an embedding by ID.
	// Returns ErrNotFound if the embedding doesn't exist.
	GetEmbedding(ctx context.Context, id core.ID) (*core.SongEmbedding, error)

	// FindSimilar finds embeddings similar to the given vector.
	// Returns matches with similarity >= minSimilarity, up to limit results,
	// ordered by score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error)

	// CountEmbeddings returns the number of stored embeddings.
	CountEmbeddings(ctx context.Context) (int, error)
}
