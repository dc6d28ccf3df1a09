package rag

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"salesagent-backend/internal/ai"
	"salesagent-backend/internal/cache"
	"salesagent-backend/internal/validation"
)

type stubCompleter struct {
	reply    string
	messages []ai.Message
}

func (s *stubCompleter) Complete(_ context.Context, messages []ai.Message, _ ai.CompletionOptions) (string, error) {
	s.messages = messages
	return s.reply, nil
}

type stubEmbedder struct {
	err error
}

func (s stubEmbedder) Embed(_ context.Context, texts []string) ([]Embedding, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Embedding, len(texts))
	for i := range texts {
		out[i] = Embedding{Values: []float32{0.1, 0.2}, TokenCount: 2}
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func do(t *testing.T, fn http.HandlerFunc, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	fn(rec, req)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestUnconfiguredAnswers503(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil, 0, validation.New(), testLogger())

	rec, out := do(t, h.Search, http.MethodPost, "/rag/search", `{"corpusName":"c1","query":"q"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Vertex AI RAG is not configured", out["error"])

	rec, _ = do(t, h.ListCorpora, http.MethodGet, "/rag/corpus", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, out = do(t, h.CreateCorpus, http.MethodPost, "/rag/corpus", `{"projectId":"p1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Vertex AI RAG is not configured. Set GOOGLE_CLOUD_PROJECT_ID.", out["error"])

	rec, out = do(t, h.Analyze, http.MethodPost, "/rag/analyze", `{"corpusName":"c1","query":"q"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "XAI_API_KEY not configured", out["error"])

	rec, _ = do(t, h.Embeddings, http.MethodPost, "/rag/embeddings", `{"text":"hallo"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMissingFieldsAnswer400(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil, 0, validation.New(), testLogger())

	_, out := do(t, h.Search, http.MethodPost, "/rag/search", `{"query":"q"}`)
	assert.Equal(t, "corpusName is required", out["error"])

	_, out = do(t, h.Context, http.MethodPost, "/rag/context", `{"corpusName":"c1"}`)
	assert.Equal(t, "query is required", out["error"])

	rec, out := do(t, h.ImportDocument, http.MethodPost, "/rag/documents", `{"corpusName":"c1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "gcsUri is required (gs://bucket/path/to/file)", out["error"])

	_, out = do(t, h.ListDocuments, http.MethodGet, "/rag/documents", "")
	assert.Equal(t, "corpusName query parameter is required", out["error"])

	_, out = do(t, h.DeleteCorpus, http.MethodDelete, "/rag/corpus", "")
	assert.Equal(t, "Corpus name is required", out["error"])

	_, out = do(t, h.Analyze, http.MethodPost, "/rag/analyze", `{"corpusName":"c1"}`)
	assert.Equal(t, "corpusName and query are required", out["error"])
}

func vertexSearchServer(t *testing.T, calls *int, payload string) *Client {
	t.Helper()
	return newTestClient(t, &countingVertex{fakeVertex: fakeVertex{retrieveJSON: payload}, calls: calls})
}

type countingVertex struct {
	fakeVertex
	calls *int
}

func (c *countingVertex) RetrieveContexts(ctx context.Context, req *aiplatformpb.RetrieveContextsRequest) (*aiplatformpb.RetrieveContextsResponse, error) {
	*c.calls++
	return c.fakeVertex.RetrieveContexts(ctx, req)
}

func TestSearchReshapesAndCaches(t *testing.T) {
	calls := 0
	client := vertexSearchServer(t, &calls, `{"contexts":{"contexts":[{"sourceUri":"gs://b/a.pdf","text":"Budget","score":0.912},{"sourceUri":"gs://b/b.pdf","text":"Rest","score":0.1}]}}`)
	lru, err := cache.NewLRU(16)
	require.NoError(t, err)
	h := NewHandler(client, nil, nil, lru, time.Minute, validation.New(), testLogger())

	body := `{"corpusName":"c1","query":"Budget","minScore":0.5}`
	rec, out := do(t, h.Search, http.MethodPost, "/rag/search", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, float64(1), out["totalResults"])
	results := out["results"].([]interface{})
	first := results[0].(map[string]interface{})
	assert.Equal(t, "91.2%", first["scorePercent"])
	assert.Equal(t, "gs://b/a.pdf", first["source"])

	rec, out = do(t, h.Search, http.MethodPost, "/rag/search", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), out["totalResults"])
	assert.Equal(t, 1, calls)
}

func TestContextDefaults(t *testing.T) {
	calls := 0
	client := vertexSearchServer(t, &calls, `{"contexts":{"contexts":[{"text":"A","score":0.6},{"text":"B","score":0.45}]}}`)
	h := NewHandler(client, nil, nil, nil, time.Minute, validation.New(), testLogger())

	rec, out := do(t, h.Context, http.MethodPost, "/rag/context", `{"corpusName":"c1","query":"q"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["hasContext"])
	assert.Equal(t, "[Source 1] (Relevance: 60.0%)\nA", out["context"])
}

func TestAnalyzeNoChunks404(t *testing.T) {
	calls := 0
	client := vertexSearchServer(t, &calls, `{}`)
	h := NewHandler(client, nil, &stubCompleter{reply: "x"}, nil, 0, validation.New(), testLogger())

	rec, out := do(t, h.Analyze, http.MethodPost, "/rag/analyze", `{"corpusName":"c1","query":"q"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No relevant content found in corpus", out["error"])
}

func TestAnalyzeBuildsPromptAndSources(t *testing.T) {
	calls := 0
	long := strings.Repeat("a", 250)
	client := vertexSearchServer(t, &calls, `{"contexts":{"contexts":[{"sourceUri":"gs://b/a.pdf","text":"`+long+`","score":0.8},{"sourceUri":"gs://b/b.pdf","text":"kurz","score":0.4}]}}`)
	completer := &stubCompleter{reply: "Ergebnis:\n```json\n{\"summary\":\"ok\"}\n```"}
	h := NewHandler(client, nil, completer, nil, 0, validation.New(), testLogger())

	rec, out := do(t, h.Analyze, http.MethodPost, "/rag/analyze", `{"corpusName":"c1","query":"Was ist das Budget?","analysisType":"compliance"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ai.RolePrompts["compliance"], completer.messages[0].Content)
	assert.Contains(t, completer.messages[1].Content, "[Document 2] (Relevance: 40.0%)\nkurz")
	assert.Contains(t, completer.messages[1].Content, "ANFRAGE:\nWas ist das Budget?")

	assert.Equal(t, map[string]interface{}{"summary": "ok"}, out["structuredData"])
	sources := out["sources"].([]interface{})
	preview := sources[0].(map[string]interface{})["content"].(string)
	assert.Equal(t, strings.Repeat("a", 200)+"...", preview)
	meta := out["metadata"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["sourcesUsed"])
	assert.InDelta(t, 0.6, meta["avgRelevance"].(float64), 1e-9)
}

func TestAnalyzeCustomPrompt(t *testing.T) {
	calls := 0
	client := vertexSearchServer(t, &calls, `{"contexts":{"contexts":[{"text":"x","score":0.8}]}}`)
	completer := &stubCompleter{reply: "kein json"}
	h := NewHandler(client, nil, completer, nil, 0, validation.New(), testLogger())

	_, out := do(t, h.Analyze, http.MethodPost, "/rag/analyze", `{"corpusName":"c1","query":"q","analysisType":"custom","customPrompt":"Sei knapp."}`)
	assert.Equal(t, "Sei knapp.", completer.messages[0].Content)
	assert.Nil(t, out["structuredData"])
}

func TestUpstreamFailureIs500(t *testing.T) {
	client := newTestClient(t, &fakeVertex{err: status.Error(codes.Unavailable, "backend down")})
	h := NewHandler(client, nil, nil, nil, 0, validation.New(), testLogger())
	rec, out := do(t, h.Search, http.MethodPost, "/rag/search", `{"corpusName":"c1","query":"q"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Search failed", out["error"])
}

func TestEmbeddings(t *testing.T) {
	h := NewHandler(nil, stubEmbedder{}, nil, nil, 0, validation.New(), testLogger())
	rec, out := do(t, h.Embeddings, http.MethodPost, "/rag/embeddings", `{"texts":["a","b"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["embeddings"], 2)

	rec, _ = do(t, h.Embeddings, http.MethodPost, "/rag/embeddings", `{"texts":[" "]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = NewHandler(nil, stubEmbedder{err: errors.New("quota")}, nil, nil, 0, validation.New(), testLogger())
	rec, _ = do(t, h.Embeddings, http.MethodPost, "/rag/embeddings", `{"text":"a"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
