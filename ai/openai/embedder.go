package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/poiesic/lyricmind/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	// ErrEmptyEmbedding indicates the service returned no vector for a query.
	ErrEmptyEmbedding = errors.New("embedding service returned no vectors")

	// ErrEmbeddingCount indicates the service returned a different number of vectors than texts.
	ErrEmbeddingCount = errors.New("embedding count mismatch")
)

var (
	_ ai.Embedder         = (*Embedder)(nil)
	_ embeddings.Embedder = (*Embedder)(nil)
)

// Embedder embeds song documents through an OpenAI-compatible API.
type Embedder struct {
	client embeddings.Embedder
	model  string
	logger *slog.Logger
}

// NewEmbedder validates config and connects a langchaingo client to the
// configured host. No request is made until the first embedding call.
func NewEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	llm, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.Model),
		openai.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	// Lyrics are multi-line; newlines are noise to most embedding models.
	client, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &Embedder{
		client: client,
		model:  config.Model,
		logger: slog.Default().With("component", "openai-embedder", "model", config.Model),
	}, nil
}

// EmbedDocuments embeds texts in one request and checks that a vector came
// back for every text.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	e.logger.Debug("embedding documents", "count", len(texts))

	vectors, err := e.client.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to embed documents", "count", len(texts), "err", err)
		return nil, err
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingCount, len(vectors), len(texts))
	}
	return vectors, nil
}

// EmbedQuery embeds a search query.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("embedding query", "length", len(text))

	vector, err := e.client.EmbedQuery(ctx, text)
	if err != nil {
		e.logger.Error("failed to embed query", "err", err)
		return nil, err
	}
	if len(vector) == 0 {
		e.logger.Warn("embedder returned empty result")
		return nil, ErrEmptyEmbedding
	}
	return vector, nil
}

// Model returns the configured model name.
func (e *Embedder) Model() string {
	return e.model
}
