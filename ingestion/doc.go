// Package ingestion turns song requests into persisted songs and embedded
// documents.
//
// A Pipeline saves a whole batch of songs with one SongSaver call, builds
// one document per saved song and hands all documents to a DocumentAdder in
// one call. Either step failing fails the batch, and songs already saved for
// it are deleted again. EmbedBulk first loads a CSV
// file from the data directory through a dataset.Generator; malformed rows
// are skipped and reported in the response.
//
// Each call runs synchronously. Callers bound it with a context deadline.
package ingestion
