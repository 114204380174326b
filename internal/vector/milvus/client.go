package milvus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/swiftbeard/ragserver/internal/apperr"
	"github.com/swiftbeard/ragserver/internal/vector"
	"github.com/swiftbeard/ragserver/pkg/logger"
	"github.com/swiftbeard/ragserver/pkg/utils"
)

// Embedder turns text into vectors. Satisfied by the llm client.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingCache is consulted before embedding a search query. Optional.
type EmbeddingCache interface {
	GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, textHash string, embedding []float32, ttl time.Duration) error
}

type Client struct {
	client         client.Client
	embedder       Embedder
	cache          EmbeddingCache
	collectionName string
	vectorDim      int
}

const embeddingCacheTTL = 24 * time.Hour

func NewClient(endpoint, collectionName string, vectorDim int, embedder Embedder, cache EmbeddingCache) (*Client, error) {
	c, err := client.NewGrpcClient(
		context.Background(),
		endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Client{
		client:         c,
		embedder:       embedder,
		cache:          cache,
		collectionName: collectionName,
		vectorDim:      vectorDim,
	}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

func (m *Client) CreateCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if has {
		logger.Info("Collection already exists", zap.String("collection", m.collectionName))
		return nil
	}

	schema := &entity.Schema{
		CollectionName: m.collectionName,
		Description:    "Document chunk embeddings",
		Fields: []*entity.Field{
			{
				Name:       "chunk_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.vectorDim),
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "4096",
				},
			},
			{
				Name:     "document_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "filename",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "tags",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "2048",
				},
			},
		},
	}

	err = m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.L2, 1024)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	err = m.client.CreateIndex(ctx, m.collectionName, "embedding", idx, false)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = m.client.LoadCollection(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", m.collectionName))

	return nil
}

// Insert embeds and stores all chunks as one batch. The required
// document_id and filename tags go into their own columns; any extra
// tags are kept as JSON so nothing the caller attached is dropped.
func (m *Client) Insert(ctx context.Context, chunks []vector.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := m.embedder.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return apperr.Upstreamf("failed to embed chunks: %v", err)
	}
	if len(embeddings) != len(chunks) {
		return apperr.Upstreamf("embedding count mismatch: got %d, expected %d", len(embeddings), len(chunks))
	}

	chunkIDs := make([]string, len(chunks))
	docIDs := make([]string, len(chunks))
	filenames := make([]string, len(chunks))
	extraTags := make([]string, len(chunks))

	for i, chunk := range chunks {
		chunkIDs[i] = chunk.ID
		docIDs[i] = chunk.Tags.GetOrDefault(vector.TagDocumentID, "")
		filenames[i] = chunk.Tags.GetOrDefault(vector.TagFilename, "")
		extraTags[i] = encodeExtraTags(chunk.Tags)
	}

	_, err = m.client.Insert(
		ctx,
		m.collectionName,
		"",
		entity.NewColumnVarChar("chunk_id", chunkIDs),
		entity.NewColumnFloatVector("embedding", m.vectorDim, embeddings),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("document_id", docIDs),
		entity.NewColumnVarChar("filename", filenames),
		entity.NewColumnVarChar("tags", extraTags),
	)
	if err != nil {
		return apperr.Upstreamf("failed to insert chunks: %v", err)
	}

	err = m.client.Flush(ctx, m.collectionName, false)
	if err != nil {
		return apperr.Upstreamf("failed to flush: %v", err)
	}

	logger.Info("Chunks inserted into vector index", zap.Int("count", len(chunks)))

	return nil
}

func (m *Client) Search(ctx context.Context, query string, topK int) ([]vector.SearchResult, error) {
	embedding, err := m.queryEmbedding(ctx, query)
	if err != nil {
		return nil, apperr.Upstreamf("failed to embed query: %v", err)
	}

	sp, _ := entity.NewIndexIvfFlatSearchParam(16)

	searchResult, err := m.client.Search(
		ctx,
		m.collectionName,
		[]string{},
		"",
		[]string{"chunk_id", "text", "document_id", "filename", "tags"},
		[]entity.Vector{entity.FloatVector(embedding)},
		"embedding",
		entity.L2,
		topK,
		sp,
	)
	if err != nil {
		return nil, apperr.Upstreamf("failed to search: %v", err)
	}

	results := make([]vector.SearchResult, 0)
	for _, sr := range searchResult {
		for i := 0; i < sr.ResultCount; i++ {
			textCol := sr.Fields.GetColumn("text")
			docIDCol := sr.Fields.GetColumn("document_id")
			filenameCol := sr.Fields.GetColumn("filename")
			tagsCol := sr.Fields.GetColumn("tags")

			text, _ := textCol.Get(i)
			docID, _ := docIDCol.Get(i)
			filename, _ := filenameCol.Get(i)
			tagsJSON, _ := tagsCol.Get(i)

			tags := decodeExtraTags(tagsJSON.(string))
			if s, ok := docID.(string); ok && s != "" {
				tags[vector.TagDocumentID] = s
			}
			if s, ok := filename.(string); ok && s != "" {
				tags[vector.TagFilename] = s
			}

			score := float64(sr.Scores[i])
			results = append(results, vector.SearchResult{
				Text:  text.(string),
				Tags:  tags,
				Score: &score,
			})
		}
	}

	logger.Debug("Vector search completed",
		zap.Int("top_k", topK),
		zap.Int("results", len(results)),
	)

	return results, nil
}

func (m *Client) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.cache == nil {
		return m.embedder.GenerateEmbedding(ctx, query)
	}

	hash := utils.HashString(query)
	if cached, ok, err := m.cache.GetEmbedding(ctx, hash); err == nil && ok {
		return cached, nil
	}

	embedding, err := m.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := m.cache.SetEmbedding(ctx, hash, embedding, embeddingCacheTTL); err != nil {
		logger.Warn("Failed to cache query embedding", zap.Error(err))
	}

	return embedding, nil
}

func encodeExtraTags(tags vector.Tags) string {
	extra := make(map[string]string)
	for k, v := range tags {
		if k == vector.TagDocumentID || k == vector.TagFilename {
			continue
		}
		extra[k] = v
	}
	if len(extra) == 0 {
		return "{}"
	}

	data, err := json.Marshal(extra)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func decodeExtraTags(raw string) vector.Tags {
	tags := vector.Tags{}
	if raw == "" {
		return tags
	}
	var extra map[string]string
	if err := json.Unmarshal([]byte(raw), &extra); err != nil {
		return tags
	}
	for k, v := range extra {
		tags[k] = v
	}
	return tags
}
