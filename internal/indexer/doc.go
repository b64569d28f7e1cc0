// Package indexer orchestrates the ingestion pipeline.
//
// For each document it extracts markdown, chunks it with contextual
// prefixes, scores chunk quality, embeds the chunks in batches, writes
// the vectors to the vector store, and records the document and its
// chunks in the SQLite catalog. Documents whose content hash matches
// the catalog are skipped unless a run is forced.
//
// Documents are processed concurrently with a bounded worker pool. A
// failure in one document is recorded in the run statistics and does
// not abort the rest of the run.
package indexer
