// Package vector defines the contract with the similarity-search index.
// The index is an opaque capability: store chunks, search by query text.
// Entries are never deleted through this interface.
package vector

import "context"

// Tag keys every indexed chunk must carry.
const (
	TagDocumentID = "document_id"
	TagFilename   = "filename"
)

// Tags is the key-value metadata attached to a chunk.
type Tags map[string]string

// GetOrDefault returns the value for key, or def when the key is absent
// or empty.
func (t Tags) GetOrDefault(key, def string) string {
	if v, ok := t[key]; ok && v != "" {
		return v
	}
	return def
}

// Merge copies src entries into t without discarding existing keys that
// src does not mention. Keys present in src overwrite.
func (t Tags) Merge(src Tags) {
	for k, v := range src {
		t[k] = v
	}
}

// Chunk is the unit stored in the index.
type Chunk struct {
	ID   string
	Text string
	Tags Tags
}

// SearchResult is one ranked hit. Score is nil when the backing index
// surfaces no distance for the result.
type SearchResult struct {
	Text  string
	Tags  Tags
	Score *float64
}

// Index is the opaque store/search capability over embedded chunks.
type Index interface {
	Insert(ctx context.Context, chunks []Chunk) error
	Search(ctx context.Context, query string, topK int) ([]SearchResult, error)
}
