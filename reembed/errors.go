package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrRetriesExhausted is returned when every attempt of an operation failed.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrDocumentCount is returned when the vector store stores fewer documents than it was given.
	ErrDocumentCount = errors.New("document count mismatch")

	// ErrSongsSkipped is returned when Run skipped failed batches.
	ErrSongsSkipped = errors.New("songs skipped")
)
