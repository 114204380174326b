package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/swiftbeard/ragserver/internal/apperr"
	"github.com/swiftbeard/ragserver/internal/storage/models"
	"github.com/swiftbeard/ragserver/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		content_type TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		chunk_count INTEGER NOT NULL,
		uploaded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_uploaded ON documents(uploaded_at);

	CREATE TABLE IF NOT EXISTS query_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query_text TEXT NOT NULL,
		answer TEXT NOT NULL,
		top_k INTEGER NOT NULL,
		source_count INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		execution_time_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_query_created ON query_history(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// InsertDocument persists the metadata row and returns the generated id.
// The row is written before the chunks reach the vector index so a
// document is never listed without its chunks having had a chance to be
// indexed.
func (c *Client) InsertDocument(doc *models.DocumentMetadata) (int64, error) {
	query := `
		INSERT INTO documents (filename, content_type, file_size, chunk_count, uploaded_at)
		VALUES (?, ?, ?, ?, ?)
	`

	res, err := c.db.Exec(
		query,
		doc.Filename,
		doc.ContentType,
		doc.FileSize,
		doc.ChunkCount,
		doc.UploadedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read generated id: %w", err)
	}

	doc.ID = id
	logger.Debug("Document inserted",
		zap.Int64("doc_id", id),
		zap.String("filename", doc.Filename),
		zap.Int("chunk_count", doc.ChunkCount),
	)
	return id, nil
}

func (c *Client) GetDocument(id int64) (*models.DocumentMetadata, error) {
	query := `SELECT id, filename, content_type, file_size, chunk_count, uploaded_at FROM documents WHERE id = ?`

	var doc models.DocumentMetadata
	var uploadedAt int64

	err := c.db.QueryRow(query, id).Scan(
		&doc.ID,
		&doc.Filename,
		&doc.ContentType,
		&doc.FileSize,
		&doc.ChunkCount,
		&uploadedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("document %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.UploadedAt = time.Unix(uploadedAt, 0)
	return &doc, nil
}

func (c *Client) ListDocuments() ([]models.DocumentMetadata, error) {
	query := `SELECT id, filename, content_type, file_size, chunk_count, uploaded_at FROM documents ORDER BY uploaded_at DESC, id DESC`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.DocumentMetadata
	for rows.Next() {
		var doc models.DocumentMetadata
		var uploadedAt int64

		err := rows.Scan(&doc.ID, &doc.Filename, &doc.ContentType, &doc.FileSize, &doc.ChunkCount, &uploadedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		doc.UploadedAt = time.Unix(uploadedAt, 0)
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// DeleteDocument removes the metadata row only. The chunks previously
// indexed for this document remain searchable; the vector index offers
// no metadata-filtered delete, a documented limitation.
func (c *Client) DeleteDocument(id int64) error {
	res, err := c.db.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.NotFoundf("document %d", id)
	}

	logger.Info("Document metadata deleted", zap.Int64("doc_id", id))
	return nil
}

func (c *Client) CountDocuments() (int64, error) {
	var count int64
	err := c.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

func (c *Client) InsertQueryRecord(record *models.QueryRecord) (int64, error) {
	query := `
		INSERT INTO query_history (query_text, answer, top_k, source_count, created_at, execution_time_ms)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := c.db.Exec(
		query,
		record.Query,
		record.Answer,
		record.TopK,
		record.SourceCount,
		record.Timestamp.Unix(),
		record.ExecutionTimeMs,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert query record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read generated id: %w", err)
	}

	record.ID = id
	logger.Info("Query recorded",
		zap.Int64("query_id", id),
		zap.Int("top_k", record.TopK),
		zap.Int("source_count", record.SourceCount),
		zap.Int64("latency_ms", record.ExecutionTimeMs),
	)
	return id, nil
}

func (c *Client) GetQueryRecord(id int64) (*models.QueryRecord, error) {
	query := `SELECT id, query_text, answer, top_k, source_count, created_at, execution_time_ms FROM query_history WHERE id = ?`

	var r models.QueryRecord
	var createdAt int64

	err := c.db.QueryRow(query, id).Scan(
		&r.ID,
		&r.Query,
		&r.Answer,
		&r.TopK,
		&r.SourceCount,
		&createdAt,
		&r.ExecutionTimeMs,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("query record %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get query record: %w", err)
	}

	r.Timestamp = time.Unix(createdAt, 0)
	return &r, nil
}

func (c *Client) ListQueryHistory() ([]models.QueryRecord, error) {
	return c.queryHistoryRows(`
		SELECT id, query_text, answer, top_k, source_count, created_at, execution_time_ms
		FROM query_history
		ORDER BY created_at DESC, id DESC
	`)
}

func (c *Client) ListRecentQueryHistory(limit int) ([]models.QueryRecord, error) {
	return c.queryHistoryRows(`
		SELECT id, query_text, answer, top_k, source_count, created_at, execution_time_ms
		FROM query_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
}

func (c *Client) ListQueryHistoryBetween(start, end time.Time) ([]models.QueryRecord, error) {
	return c.queryHistoryRows(`
		SELECT id, query_text, answer, top_k, source_count, created_at, execution_time_ms
		FROM query_history
		WHERE created_at BETWEEN ? AND ?
		ORDER BY created_at DESC, id DESC
	`, start.Unix(), end.Unix())
}

func (c *Client) queryHistoryRows(query string, args ...any) ([]models.QueryRecord, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []models.QueryRecord
	for rows.Next() {
		var r models.QueryRecord
		var createdAt int64

		err := rows.Scan(&r.ID, &r.Query, &r.Answer, &r.TopK, &r.SourceCount, &createdAt, &r.ExecutionTimeMs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.Timestamp = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}

func (c *Client) CountQueryHistory() (int64, error) {
	var count int64
	err := c.db.QueryRow(`SELECT COUNT(*) FROM query_history`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count query history: %w", err)
	}
	return count, nil
}

func (c *Client) CountQueryHistorySince(since time.Time) (int64, error) {
	var count int64
	err := c.db.QueryRow(`SELECT COUNT(*) FROM query_history WHERE created_at > ?`, since.Unix()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent query history: %w", err)
	}
	return count, nil
}

func (c *Client) DeleteQueryRecord(id int64) error {
	res, err := c.db.Exec(`DELETE FROM query_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete query record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.NotFoundf("query record %d", id)
	}

	return nil
}

func (c *Client) DeleteAllQueryHistory() error {
	_, err := c.db.Exec(`DELETE FROM query_history`)
	if err != nil {
		return fmt.Errorf("failed to delete query history: %w", err)
	}

	logger.Info("Query history cleared")
	return nil
}
