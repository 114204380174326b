package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftbeard/ragserver/internal/apperr"
	"github.com/swiftbeard/ragserver/internal/query"
)

type mockQueryService struct {
	answerFunc func(ctx context.Context, question string, topK *int) (*query.Response, error)
}

func (m *mockQueryService) Answer(ctx context.Context, question string, topK *int) (*query.Response, error) {
	return m.answerFunc(ctx, question, topK)
}

func newQueryApp(svc QueryService) *fiber.App {
	app := fiber.New()
	app.Post("/api/v1/query", NewQueryHandler(svc).HandleQuery)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestHandleQuerySuccess(t *testing.T) {
	var gotQuestion string
	var gotTopK *int

	svc := &mockQueryService{
		answerFunc: func(ctx context.Context, question string, topK *int) (*query.Response, error) {
			gotQuestion = question
			gotTopK = topK
			return &query.Response{
				Answer:      "the answer",
				Sources:     []query.SourceCitation{{DocumentID: "1", Filename: "a.txt", Content: "snippet"}},
				SourceCount: 1,
			}, nil
		},
	}

	resp := postJSON(t, newQueryApp(svc), "/api/v1/query", `{"query": "what is up?", "top_k": 7}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "the answer", body["answer"])
	assert.Equal(t, float64(1), body["source_count"])

	assert.Equal(t, "what is up?", gotQuestion)
	require.NotNil(t, gotTopK)
	assert.Equal(t, 7, *gotTopK)
}

func TestHandleQueryOmittedTopK(t *testing.T) {
	var gotTopK *int
	called := false

	svc := &mockQueryService{
		answerFunc: func(ctx context.Context, question string, topK *int) (*query.Response, error) {
			called = true
			gotTopK = topK
			return &query.Response{Answer: "ok", Sources: []query.SourceCitation{}}, nil
		},
	}

	resp := postJSON(t, newQueryApp(svc), "/api/v1/query", `{"query": "hello"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, called)
	assert.Nil(t, gotTopK)
}

func TestHandleQueryEmptyQuery(t *testing.T) {
	called := false
	svc := &mockQueryService{
		answerFunc: func(ctx context.Context, question string, topK *int) (*query.Response, error) {
			called = true
			return nil, nil
		},
	}

	resp := postJSON(t, newQueryApp(svc), "/api/v1/query", `{"query": ""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, called)
}

func TestHandleQueryMalformedBody(t *testing.T) {
	svc := &mockQueryService{
		answerFunc: func(ctx context.Context, question string, topK *int) (*query.Response, error) {
			return nil, nil
		},
	}

	resp := postJSON(t, newQueryApp(svc), "/api/v1/query", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleQueryUpstreamFailure(t *testing.T) {
	svc := &mockQueryService{
		answerFunc: func(ctx context.Context, question string, topK *int) (*query.Response, error) {
			return nil, apperr.Upstreamf("generation failed")
		},
	}

	resp := postJSON(t, newQueryApp(svc), "/api/v1/query", `{"query": "q"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "generation failed")
}
