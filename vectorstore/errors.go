package vectorstore

import "errors"

var (
	// ErrEmbedderRequired is returned when creating a store without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrRepositoryRequired is returned when creating a store without an embedding repository.
	ErrRepositoryRequired = errors.New("embedding repository is required")

	// ErrVectorCount is returned when the embedder returns a different number of vectors than texts.
	ErrVectorCount = errors.New("embedder returned wrong number of vectors")

	// ErrInvalidScoreThreshold is returned for thresholds outside [0, 1].
	ErrInvalidScoreThreshold = errors.New("score threshold must be between 0 and 1")

	// ErrUnsupportedFilter is returned for filters that are not metadata maps.
	ErrUnsupportedFilter = errors.New("filters must be map[string]any or map[string]string")
)
