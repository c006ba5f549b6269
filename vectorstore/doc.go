// Package vectorstore is a langchaingo vectorstores.VectorStore backed by
// badger.
//
// AddDocuments embeds page contents through an ai.Embedder in sub-batches
// spread over an ants worker pool, normalizes every vector to unit length and
// writes the whole batch in one transaction. Documents that carry a songId
// metadata value are keyed by it, so adding a song again replaces its
// embedding. SimilaritySearch ranks stored embeddings by cosine similarity.
package vectorstore
