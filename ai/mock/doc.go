// Package mock provides a test double for ai.Embedder.
//
// The default behavior returns deterministic unit vectors derived from an
// FNV hash of the text, so identical texts always score 1.0 against each other.
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedDocumentsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("backend down")
//	}
//	count := embedder.CallCount()
package mock
