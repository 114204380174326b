package sqlite

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftbeard/ragserver/internal/apperr"
	"github.com/swiftbeard/ragserver/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.InitSchema())
	return client
}

func sampleDocument(filename string) *models.DocumentMetadata {
	return &models.DocumentMetadata{
		Filename:    filename,
		ContentType: "text/plain",
		FileSize:    1024,
		ChunkCount:  3,
		UploadedAt:  time.Now(),
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	client := newTestClient(t)

	doc := sampleDocument("report.pdf")
	id, err := client.InsertDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)

	got, err := client.GetDocument(id)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got.Filename)
	assert.Equal(t, "text/plain", got.ContentType)
	assert.Equal(t, int64(1024), got.FileSize)
	assert.Equal(t, 3, got.ChunkCount)
	assert.Equal(t, doc.UploadedAt.Unix(), got.UploadedAt.Unix())
}

func TestGetDocumentNotFound(t *testing.T) {
	client := newTestClient(t)

	_, err := client.GetDocument(999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListDocumentsNewestFirst(t *testing.T) {
	client := newTestClient(t)

	for _, name := range []string{"first.txt", "second.txt", "third.txt"} {
		_, err := client.InsertDocument(sampleDocument(name))
		require.NoError(t, err)
	}

	docs, err := client.ListDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 3)

	// Same-second uploads fall back to insertion order, newest first.
	assert.Equal(t, "third.txt", docs[0].Filename)
	assert.Equal(t, "second.txt", docs[1].Filename)
	assert.Equal(t, "first.txt", docs[2].Filename)
}

func TestDeleteDocument(t *testing.T) {
	client := newTestClient(t)

	id, err := client.InsertDocument(sampleDocument("doomed.txt"))
	require.NoError(t, err)

	require.NoError(t, client.DeleteDocument(id))

	_, err = client.GetDocument(id)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	err = client.DeleteDocument(id)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCountDocuments(t *testing.T) {
	client := newTestClient(t)

	count, err := client.CountDocuments()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = client.InsertDocument(sampleDocument("one.txt"))
	require.NoError(t, err)
	_, err = client.InsertDocument(sampleDocument("two.txt"))
	require.NoError(t, err)

	count, err = client.CountDocuments()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func insertRecordAt(t *testing.T, client *Client, query string, ts time.Time) int64 {
	t.Helper()

	id, err := client.InsertQueryRecord(&models.QueryRecord{
		Query:           query,
		Answer:          "an answer",
		TopK:            4,
		SourceCount:     2,
		Timestamp:       ts,
		ExecutionTimeMs: 150,
	})
	require.NoError(t, err)
	return id
}

func TestQueryRecordRoundTrip(t *testing.T) {
	client := newTestClient(t)

	now := time.Now()
	id := insertRecordAt(t, client, "what is a raft?", now)

	got, err := client.GetQueryRecord(id)
	require.NoError(t, err)
	assert.Equal(t, "what is a raft?", got.Query)
	assert.Equal(t, "an answer", got.Answer)
	assert.Equal(t, 4, got.TopK)
	assert.Equal(t, 2, got.SourceCount)
	assert.Equal(t, now.Unix(), got.Timestamp.Unix())
	assert.Equal(t, int64(150), got.ExecutionTimeMs)
}

func TestListRecentQueryHistory(t *testing.T) {
	client := newTestClient(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		insertRecordAt(t, client, "question", base.Add(time.Duration(i)*time.Minute))
	}

	records, err := client.ListRecentQueryHistory(2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest two, newest first.
	assert.Equal(t, base.Add(4*time.Minute).Unix(), records[0].Timestamp.Unix())
	assert.Equal(t, base.Add(3*time.Minute).Unix(), records[1].Timestamp.Unix())
}

func TestListQueryHistoryBetween(t *testing.T) {
	client := newTestClient(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		insertRecordAt(t, client, "question", base.Add(time.Duration(i)*time.Minute))
	}

	records, err := client.ListQueryHistoryBetween(base.Add(time.Minute), base.Add(3*time.Minute))
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestCountQueryHistorySince(t *testing.T) {
	client := newTestClient(t)

	base := time.Now().Add(-time.Hour)
	insertRecordAt(t, client, "old", base)
	insertRecordAt(t, client, "new", base.Add(30*time.Minute))

	count, err := client.CountQueryHistorySince(base.Add(10 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDeleteQueryRecord(t *testing.T) {
	client := newTestClient(t)

	id := insertRecordAt(t, client, "question", time.Now())
	require.NoError(t, client.DeleteQueryRecord(id))

	err := client.DeleteQueryRecord(id)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeleteAllQueryHistory(t *testing.T) {
	client := newTestClient(t)

	for i := 0; i < 3; i++ {
		insertRecordAt(t, client, "question", time.Now())
	}

	require.NoError(t, client.DeleteAllQueryHistory())

	count, err := client.CountQueryHistory()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Clearing an already empty table succeeds.
	require.NoError(t, client.DeleteAllQueryHistory())
}
