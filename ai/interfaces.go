package ai

import "context"

// Embedder turns song documents and search queries into vectors.
//
// The method set matches langchaingo's embeddings.Embedder, so any
// langchaingo embedder can be used wherever an Embedder is expected.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedDocuments returns one vector per text, in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery returns the vector for a search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
