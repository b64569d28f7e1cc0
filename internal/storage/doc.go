// Package storage provides SQLite persistence for the ingestion catalog.
//
// It records which documents have been ingested, the chunks produced for
// each document, and which chunks have embeddings. The catalog is what
// makes re-ingestion incremental: a document whose content hash is
// unchanged can be skipped without re-chunking or re-embedding.
//
// Vectors themselves are not stored here. They live in the vector store;
// this package only tracks provider, model, and dimension per chunk.
package storage
