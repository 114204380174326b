package ingestion

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swiftbeard/ragserver/internal/apperr"
	"github.com/swiftbeard/ragserver/internal/chunker"
	"github.com/swiftbeard/ragserver/internal/metrics"
	"github.com/swiftbeard/ragserver/internal/parser"
	"github.com/swiftbeard/ragserver/internal/storage/models"
	"github.com/swiftbeard/ragserver/internal/vector"
	"github.com/swiftbeard/ragserver/pkg/logger"
)

// DocumentParser converts raw bytes into text segments.
type DocumentParser interface {
	Parse(data []byte, filename, contentType string) ([]parser.Segment, error)
}

// MetadataStore persists document metadata rows.
type MetadataStore interface {
	InsertDocument(doc *models.DocumentMetadata) (int64, error)
}

// Processor runs the ingestion pipeline: parse, chunk, persist
// metadata, tag, index. The metadata row is committed before the index
// insert; if indexing then fails the row stays behind. The two stores
// share no transaction and the gap is not reconciled here.
type Processor struct {
	parser  DocumentParser
	chunker *chunker.Chunker
	store   MetadataStore
	index   vector.Index
}

type IngestResult struct {
	ChunkCount int
	Filename   string
}

func NewProcessor(p DocumentParser, c *chunker.Chunker, store MetadataStore, index vector.Index) *Processor {
	return &Processor{
		parser:  p,
		chunker: c,
		store:   store,
		index:   index,
	}
}

func (p *Processor) Ingest(ctx context.Context, data []byte, filename, contentType string) (*IngestResult, error) {
	if len(data) == 0 {
		return nil, apperr.Validationf("file is empty")
	}

	logger.Info("Ingesting document",
		zap.String("filename", filename),
		zap.String("content_type", contentType),
		zap.Int("size", len(data)),
	)

	segments, err := p.parser.Parse(data, filename, contentType)
	if err != nil {
		metrics.IngestTotal.WithLabelValues("error").Inc()
		return nil, apperr.IOf("failed to parse %s: %v", filename, err)
	}

	chunks := p.buildChunks(segments)
	logger.Debug("Document chunked",
		zap.String("filename", filename),
		zap.Int("segments", len(segments)),
		zap.Int("chunks", len(chunks)),
	)

	doc := &models.DocumentMetadata{
		Filename:    filename,
		ContentType: contentType,
		FileSize:    int64(len(data)),
		ChunkCount:  len(chunks),
		UploadedAt:  time.Now(),
	}

	docID, err := p.store.InsertDocument(doc)
	if err != nil {
		metrics.IngestTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	docTags := vector.Tags{
		vector.TagDocumentID: strconv.FormatInt(docID, 10),
		vector.TagFilename:   filename,
	}
	for i := range chunks {
		chunks[i].Tags.Merge(docTags)
	}

	if err := p.index.Insert(ctx, chunks); err != nil {
		// The metadata row is already committed; the document will be
		// listed with no searchable chunks until re-uploaded.
		logger.Error("Index insert failed after metadata commit",
			zap.Int64("doc_id", docID),
			zap.String("filename", filename),
			zap.Error(err),
		)
		metrics.IngestTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.IngestTotal.WithLabelValues("success").Inc()
	metrics.ChunksIndexed.Add(float64(len(chunks)))

	logger.Info("Document ingested",
		zap.Int64("doc_id", docID),
		zap.String("filename", filename),
		zap.Int("chunks", len(chunks)),
	)

	return &IngestResult{
		ChunkCount: len(chunks),
		Filename:   filename,
	}, nil
}

// buildChunks splits each segment and carries the segment number along
// as a tag, preserving segment and split order.
func (p *Processor) buildChunks(segments []parser.Segment) []vector.Chunk {
	var chunks []vector.Chunk
	for _, seg := range segments {
		for _, text := range p.chunker.Split(seg.Text) {
			chunks = append(chunks, vector.Chunk{
				ID:   uuid.New().String(),
				Text: text,
				Tags: vector.Tags{"page": strconv.Itoa(seg.Number)},
			})
		}
	}
	return chunks
}
