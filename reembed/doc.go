// Package reembed rebuilds the vector store from the songs already in the
// database, typically after switching embedding models.
//
// Songs are read in ID order in batches, turned back into documents and
// handed to the vector store with retry and exponential backoff. Progress is
// written to a caller supplied writer.
package reembed
