package query

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/swiftbeard/ragserver/internal/apperr"
	"github.com/swiftbeard/ragserver/internal/metrics"
	"github.com/swiftbeard/ragserver/internal/prompt"
	"github.com/swiftbeard/ragserver/internal/storage/models"
	"github.com/swiftbeard/ragserver/internal/vector"
	"github.com/swiftbeard/ragserver/pkg/logger"
)

// Retrieval breadth bounds. Caller-supplied topK is clamped into
// [MinTopK, MaxTopK] before anything is retrieved.
const (
	DefaultTopK = 4
	MinTopK     = 1
	MaxTopK     = 20
)

// Citation content is cut at this many characters.
const citationContentLimit = 200

// ClampTopK resolves the retrieval breadth: nil falls back to the
// default, out-of-range values are pulled to the nearest bound.
func ClampTopK(topK *int) int {
	if topK == nil {
		return DefaultTopK
	}
	if *topK < MinTopK {
		return MinTopK
	}
	if *topK > MaxTopK {
		return MaxTopK
	}
	return *topK
}

// Generator is the opaque completion capability.
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// HistoryStore records answered queries.
type HistoryStore interface {
	InsertQueryRecord(record *models.QueryRecord) (int64, error)
}

// SourceCitation is the provenance of one retrieved chunk, returned to
// the caller alongside the answer.
type SourceCitation struct {
	DocumentID      string   `json:"document_id"`
	Filename        string   `json:"filename"`
	Content         string   `json:"content"`
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
}

type Response struct {
	Answer      string           `json:"answer"`
	Sources     []SourceCitation `json:"sources"`
	SourceCount int              `json:"source_count"`
}

// Engine runs the retrieve, augment, generate, cite, log pipeline.
type Engine struct {
	index     vector.Index
	generator Generator
	store     HistoryStore
	template  prompt.Template
}

func NewEngine(index vector.Index, generator Generator, store HistoryStore, template prompt.Template) *Engine {
	return &Engine{
		index:     index,
		generator: generator,
		store:     store,
		template:  template,
	}
}

// Answer retrieves the topK most relevant chunks, conditions the
// generator on them, and records the exchange. A failed retrieval or
// generation propagates without writing history.
func (e *Engine) Answer(ctx context.Context, question string, topK *int) (*Response, error) {
	k := ClampTopK(topK)
	start := time.Now()

	results, err := e.index.Search(ctx, question, k)
	if err != nil {
		metrics.QueryTotal.WithLabelValues("error").Inc()
		return nil, apperr.Upstreamf("vector search failed: %v", err)
	}
	metrics.VectorResultsCount.Observe(float64(len(results)))

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	information := strings.Join(texts, "\n")

	answer, err := e.generator.Complete(ctx, e.template.Render(information), question)
	if err != nil {
		metrics.QueryTotal.WithLabelValues("error").Inc()
		return nil, apperr.Upstreamf("generation failed: %v", err)
	}

	sources := buildCitations(results)

	elapsed := time.Since(start)
	record := &models.QueryRecord{
		Query:           question,
		Answer:          answer,
		TopK:            k,
		SourceCount:     len(sources),
		Timestamp:       time.Now(),
		ExecutionTimeMs: elapsed.Milliseconds(),
	}
	if _, err := e.store.InsertQueryRecord(record); err != nil {
		metrics.QueryTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.QueryTotal.WithLabelValues("success").Inc()
	metrics.QueryDuration.Observe(elapsed.Seconds())

	logger.Info("Query answered",
		zap.Int("top_k", k),
		zap.Int("source_count", len(sources)),
		zap.Int64("latency_ms", elapsed.Milliseconds()),
	)

	return &Response{
		Answer:      answer,
		Sources:     sources,
		SourceCount: len(sources),
	}, nil
}

// buildCitations maps retrieved chunks 1:1 into citations, preserving
// retrieval order. Chunks from the same document are not merged.
func buildCitations(results []vector.SearchResult) []SourceCitation {
	sources := make([]SourceCitation, 0, len(results))
	for _, r := range results {
		sources = append(sources, SourceCitation{
			DocumentID:      r.Tags.GetOrDefault(vector.TagDocumentID, "unknown"),
			Filename:        r.Tags.GetOrDefault(vector.TagFilename, "unknown"),
			Content:         truncateContent(r.Text),
			SimilarityScore: r.Score,
		})
	}
	return sources
}

func truncateContent(text string) string {
	runes := []rune(text)
	if len(runes) > citationContentLimit {
		return string(runes[:citationContentLimit]) + "..."
	}
	return text
}
