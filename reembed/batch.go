package reembed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/lyricmind/core"
	"github.com/poiesic/lyricmind/ingestion"
)

// BatchProcessor re-embeds batches of songs.
type BatchProcessor struct {
	documents      ingestion.DocumentAdder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for each batch
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(documents ingestion.DocumentAdder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		documents:      documents,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process rebuilds the documents for songs and adds them to the vector store.
// Embeddings are keyed by song, so existing vectors are replaced.
func (bp *BatchProcessor) Process(ctx context.Context, songs []*core.Song) error {
	if len(songs) == 0 {
		return nil
	}

	docs := ingestion.NewDocuments(songs)

	var ids []string
	err := RetryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		ids, err = bp.documents.AddDocuments(ctx, docs)
		if isInvalidRecord(err) {
			return Permanent(err)
		}
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if isInvalidRecord(err) {
		return fmt.Errorf("batch rejected: %w", err)
	}
	if err != nil {
		return fmt.Errorf("%w: %d attempts: %w", ErrRetriesExhausted, bp.maxRetries, err)
	}

	if len(ids) != len(docs) {
		return fmt.Errorf("%w: expected %d, got %d", ErrDocumentCount, len(docs), len(ids))
	}

	return nil
}

// isInvalidRecord reports validation failures, which fail the same way on
// every attempt.
func isInvalidRecord(err error) bool {
	return errors.Is(err, core.ErrInvalidSong) ||
		errors.Is(err, core.ErrInvalidSongEmbedding) ||
		errors.Is(err, core.ErrEmptyContent) ||
		errors.Is(err, core.ErrEmptyVector)
}
