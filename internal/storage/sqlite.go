package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) querier() querier {
	return t.tx
}

func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Document operations

func upsertDocument(ctx context.Context, q querier, doc *DocumentRecord) error {
	query := `
		INSERT INTO documents (title, file_path, total_pages, content_hash, total_chunks, ingested_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET
			file_path = excluded.file_path,
			total_pages = excluded.total_pages,
			content_hash = excluded.content_hash,
			total_chunks = excluded.total_chunks,
			ingested_at = excluded.ingested_at,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = now
	}
	result, err := q.ExecContext(ctx, query,
		doc.Title, doc.FilePath, doc.TotalPages, doc.ContentHash[:],
		doc.TotalChunks, doc.IngestedAt, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil && id > 0 {
		doc.ID = id
	}
	doc.UpdatedAt = now
	return nil
}

func getDocument(ctx context.Context, q querier, title string) (*DocumentRecord, error) {
	query := `
		SELECT id, title, file_path, total_pages, content_hash, total_chunks,
		       ingested_at, created_at, updated_at
		FROM documents
		WHERE title = ?
	`
	var doc DocumentRecord
	var hash []byte
	var ingestedAt sql.NullTime
	err := q.QueryRowContext(ctx, query, title).Scan(
		&doc.ID, &doc.Title, &doc.FilePath, &doc.TotalPages, &hash,
		&doc.TotalChunks, &ingestedAt, &doc.CreatedAt, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	copy(doc.ContentHash[:], hash)
	if ingestedAt.Valid {
		doc.IngestedAt = ingestedAt.Time
	}
	return &doc, nil
}

func listDocuments(ctx context.Context, q querier) ([]*DocumentRecord, error) {
	query := `
		SELECT id, title, file_path, total_pages, content_hash, total_chunks,
		       ingested_at, created_at, updated_at
		FROM documents
		ORDER BY title
	`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []*DocumentRecord
	for rows.Next() {
		var doc DocumentRecord
		var hash []byte
		var ingestedAt sql.NullTime
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.FilePath, &doc.TotalPages,
			&hash, &doc.TotalChunks, &ingestedAt, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		copy(doc.ContentHash[:], hash)
		if ingestedAt.Valid {
			doc.IngestedAt = ingestedAt.Time
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

func deleteDocument(ctx context.Context, q querier, title string) error {
	result, err := q.ExecContext(ctx, "DELETE FROM documents WHERE title = ?", title)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Chunk operations

func upsertChunk(ctx context.Context, q querier, chunk *ChunkRecord) error {
	query := `
		INSERT INTO chunks (chunk_id, document_title, content, contextual_prefix,
			source_type, chapter, section, page, chunk_index, content_hash,
			quality_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			content = excluded.content,
			contextual_prefix = excluded.contextual_prefix,
			source_type = excluded.source_type,
			chapter = excluded.chapter,
			section = excluded.section,
			page = excluded.page,
			chunk_index = excluded.chunk_index,
			content_hash = excluded.content_hash,
			quality_score = excluded.quality_score
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		chunk.ChunkID, chunk.DocumentTitle, chunk.Content, chunk.ContextualPrefix,
		chunk.SourceType, chunk.Chapter, chunk.Section, chunk.Page,
		chunk.ChunkIndex, chunk.ContentHash[:], chunk.QualityScore, now)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return fmt.Errorf("document %s not found: %w", chunk.DocumentTitle, ErrNotFound)
		}
		return fmt.Errorf("failed to upsert chunk: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil && id > 0 {
		chunk.ID = id
	}
	chunk.CreatedAt = now
	return nil
}

func getChunk(ctx context.Context, q querier, chunkID string) (*ChunkRecord, error) {
	query := `
		SELECT id, chunk_id, document_title, content, contextual_prefix,
		       source_type, chapter, section, page, chunk_index, content_hash,
		       quality_score, created_at
		FROM chunks
		WHERE chunk_id = ?
	`
	var chunk ChunkRecord
	var hash []byte
	err := q.QueryRowContext(ctx, query, chunkID).Scan(
		&chunk.ID, &chunk.ChunkID, &chunk.DocumentTitle, &chunk.Content,
		&chunk.ContextualPrefix, &chunk.SourceType, &chunk.Chapter,
		&chunk.Section, &chunk.Page, &chunk.ChunkIndex, &hash,
		&chunk.QualityScore, &chunk.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chunk: %w", err)
	}
	copy(chunk.ContentHash[:], hash)
	return &chunk, nil
}

func listChunksByDocument(ctx context.Context, q querier, title string) ([]*ChunkRecord, error) {
	query := `
		SELECT id, chunk_id, document_title, content, contextual_prefix,
		       source_type, chapter, section, page, chunk_index, content_hash,
		       quality_score, created_at
		FROM chunks
		WHERE document_title = ?
		ORDER BY chunk_index
	`
	rows, err := q.QueryContext(ctx, query, title)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chunks []*ChunkRecord
	for rows.Next() {
		var chunk ChunkRecord
		var hash []byte
		if err := rows.Scan(&chunk.ID, &chunk.ChunkID, &chunk.DocumentTitle,
			&chunk.Content, &chunk.ContextualPrefix, &chunk.SourceType,
			&chunk.Chapter, &chunk.Section, &chunk.Page, &chunk.ChunkIndex,
			&hash, &chunk.QualityScore, &chunk.CreatedAt); err != nil {
			return nil, err
		}
		copy(chunk.ContentHash[:], hash)
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}

func deleteChunksByDocument(ctx context.Context, q querier, title string) error {
	_, err := q.ExecContext(ctx, "DELETE FROM chunks WHERE document_title = ?", title)
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// Embedding operations

func upsertEmbedding(ctx context.Context, q querier, emb *EmbeddingRecord) error {
	query := `
		INSERT INTO embeddings (chunk_id, provider, model, dimension, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			provider = excluded.provider,
			model = excluded.model,
			dimension = excluded.dimension
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		emb.ChunkID, emb.Provider, emb.Model, emb.Dimension, now)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return fmt.Errorf("chunk %s not found: %w", emb.ChunkID, ErrNotFound)
		}
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil && id > 0 {
		emb.ID = id
	}
	emb.CreatedAt = now
	return nil
}

func getEmbedding(ctx context.Context, q querier, chunkID string) (*EmbeddingRecord, error) {
	query := `
		SELECT id, chunk_id, provider, model, dimension, created_at
		FROM embeddings
		WHERE chunk_id = ?
	`
	var emb EmbeddingRecord
	err := q.QueryRowContext(ctx, query, chunkID).Scan(
		&emb.ID, &emb.ChunkID, &emb.Provider, &emb.Model, &emb.Dimension, &emb.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding: %w", err)
	}
	return &emb, nil
}

// Storage interface implementations on *SQLiteStorage

func (s *SQLiteStorage) UpsertDocument(ctx context.Context, doc *DocumentRecord) error {
	return upsertDocument(ctx, s.querier(), doc)
}

func (s *SQLiteStorage) GetDocument(ctx context.Context, title string) (*DocumentRecord, error) {
	return getDocument(ctx, s.querier(), title)
}

func (s *SQLiteStorage) ListDocuments(ctx context.Context) ([]*DocumentRecord, error) {
	return listDocuments(ctx, s.querier())
}

func (s *SQLiteStorage) DeleteDocument(ctx context.Context, title string) error {
	return deleteDocument(ctx, s.querier(), title)
}

func (s *SQLiteStorage) UpsertChunk(ctx context.Context, chunk *ChunkRecord) error {
	return upsertChunk(ctx, s.querier(), chunk)
}

func (s *SQLiteStorage) GetChunk(ctx context.Context, chunkID string) (*ChunkRecord, error) {
	return getChunk(ctx, s.querier(), chunkID)
}

func (s *SQLiteStorage) ListChunksByDocument(ctx context.Context, title string) ([]*ChunkRecord, error) {
	return listChunksByDocument(ctx, s.querier(), title)
}

func (s *SQLiteStorage) DeleteChunksByDocument(ctx context.Context, title string) error {
	return deleteChunksByDocument(ctx, s.querier(), title)
}

func (s *SQLiteStorage) UpsertEmbedding(ctx context.Context, emb *EmbeddingRecord) error {
	return upsertEmbedding(ctx, s.querier(), emb)
}

func (s *SQLiteStorage) GetEmbedding(ctx context.Context, chunkID string) (*EmbeddingRecord, error) {
	return getEmbedding(ctx, s.querier(), chunkID)
}

// Storage interface implementations on *sqliteTx

func (t *sqliteTx) UpsertDocument(ctx context.Context, doc *DocumentRecord) error {
	return upsertDocument(ctx, t.querier(), doc)
}

func (t *sqliteTx) GetDocument(ctx context.Context, title string) (*DocumentRecord, error) {
	return getDocument(ctx, t.querier(), title)
}

func (t *sqliteTx) ListDocuments(ctx context.Context) ([]*DocumentRecord, error) {
	return listDocuments(ctx, t.querier())
}

func (t *sqliteTx) DeleteDocument(ctx context.Context, title string) error {
	return deleteDocument(ctx, t.querier(), title)
}

func (t *sqliteTx) UpsertChunk(ctx context.Context, chunk *ChunkRecord) error {
	return upsertChunk(ctx, t.querier(), chunk)
}

func (t *sqliteTx) GetChunk(ctx context.Context, chunkID string) (*ChunkRecord, error) {
	return getChunk(ctx, t.querier(), chunkID)
}

func (t *sqliteTx) ListChunksByDocument(ctx context.Context, title string) ([]*ChunkRecord, error) {
	return listChunksByDocument(ctx, t.querier(), title)
}

func (t *sqliteTx) DeleteChunksByDocument(ctx context.Context, title string) error {
	return deleteChunksByDocument(ctx, t.querier(), title)
}

func (t *sqliteTx) UpsertEmbedding(ctx context.Context, emb *EmbeddingRecord) error {
	return upsertEmbedding(ctx, t.querier(), emb)
}

func (t *sqliteTx) GetEmbedding(ctx context.Context, chunkID string) (*EmbeddingRecord, error) {
	return getEmbedding(ctx, t.querier(), chunkID)
}

func (t *sqliteTx) Close() error {
	return nil
}

func (t *sqliteTx) BeginTx(_ context.Context) (Tx, error) {
	return nil, fmt.Errorf("nested transactions are not supported")
}
