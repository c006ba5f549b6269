package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync/atomic"

	"github.com/poiesic/lyricmind/ai"
)

// DefaultDimensions is the length of vectors produced by the default behavior.
const DefaultDimensions = 384

var _ ai.Embedder = (*MockEmbedder)(nil)

// MockEmbedder is a test double for ai.Embedder.
// Behavior can be replaced through the function fields.
type MockEmbedder struct {
	// EmbedQueryFunc replaces the default behavior of EmbedQuery.
	EmbedQueryFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedDocumentsFunc replaces the default behavior of EmbedDocuments.
	EmbedDocumentsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount atomic.Int64
	textCount atomic.Int64
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedQuery returns Vector(text) unless EmbedQueryFunc is set.
func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	m.callCount.Add(1)
	m.textCount.Add(1)

	if m.EmbedQueryFunc != nil {
		return m.EmbedQueryFunc(ctx, text)
	}
	return Vector(text), nil
}

// EmbedDocuments returns Vector for every text unless EmbedDocumentsFunc is set.
func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount.Add(1)
	m.textCount.Add(int64(len(texts)))

	if m.EmbedDocumentsFunc != nil {
		return m.EmbedDocumentsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = Vector(text)
	}
	return vectors, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	return int(m.callCount.Load())
}

// TextCount returns the total number of texts embedded.
func (m *MockEmbedder) TextCount() int {
	return int(m.textCount.Load())
}

// Reset clears the counters and injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount.Store(0)
	m.textCount.Store(0)
	m.EmbedQueryFunc = nil
	m.EmbedDocumentsFunc = nil
}

// Vector returns the unit vector the default behavior produces for text.
// The same text always produces the same vector.
func Vector(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, DefaultDimensions)
	for i := range vector {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
