package models

import "time"

// DocumentMetadata is one row per successfully ingested document. Rows
// are immutable after insert; delete removes the row only, the indexed
// chunks stay behind (see storage/sqlite).
type DocumentMetadata struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	FileSize    int64     `json:"file_size"`
	ChunkCount  int       `json:"chunk_count"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// QueryRecord is one row per answered query.
type QueryRecord struct {
	ID              int64     `json:"id"`
	Query           string    `json:"query"`
	Answer          string    `json:"answer"`
	TopK            int       `json:"top_k"`
	SourceCount     int       `json:"source_count"`
	Timestamp       time.Time `json:"timestamp"`
	ExecutionTimeMs int64     `json:"execution_time_ms"`
}
