package ingestion

import "errors"

var (
	// ErrSongSaverRequired is returned when a song store is not provided.
	ErrSongSaverRequired = errors.New("song saver required")

	// ErrDocumentAdderRequired is returned when a vector store is not provided.
	ErrDocumentAdderRequired = errors.New("document adder required")

	// ErrInvalidArgument is returned for empty batches and bad file names,
	// before any song is saved or embedded.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPersistence wraps failures of the song store.
	ErrPersistence = errors.New("persistence failed")

	// ErrEmbeddingBackend wraps failures of the vector store.
	ErrEmbeddingBackend = errors.New("embedding backend failed")

	// ErrSourceRead wraps failures reading a bulk source.
	ErrSourceRead = errors.New("failed to read source")
)
