package ai

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesagent-backend/internal/validation"
)

func newTestHandler(c Completer) *Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(newTestService(c, nil), validation.New(), log)
}

func call(t *testing.T, fn http.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ai/task", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	fn(rec, req)
	var out map[string]interface{}
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestEndpointsAnswerWithoutCredential(t *testing.T) {
	h := newTestHandler(nil)
	cases := []struct {
		name   string
		fn     http.HandlerFunc
		body   string
		fields []string
	}{
		{"analyze-rfp", h.AnalyzeRFP, `{"projectId":"p1","documentId":"d1"}`,
			[]string{"summary", "requirements", "deadlines", "budgetHints", "gaps", "matchScore", "recommendedResources"}},
		{"generate-agenda", h.GenerateAgenda, `{"projectId":"p1"}`,
			[]string{"id", "projectId", "agenda", "createdAt", "updatedAt"}},
		{"generate-chapter-content", h.GenerateChapterContent, `{"projectId":"p1","chapterId":"c1","chapterTitle":"Unser Team"}`,
			[]string{"content"}},
		{"generate-cover-letter", h.GenerateCoverLetter, `{"projectId":"p1"}`,
			[]string{"letter"}},
		{"generate-proposal-structure", h.GenerateProposalStructure, `{"projectId":"p1","templateId":"standard"}`,
			[]string{"id", "projectId", "templateId", "chapters", "status", "version", "createdAt", "updatedAt"}},
		{"extract-insights", h.ExtractInsights, `{"projectId":"p1","notes":"Kunde will Azure"}`,
			[]string{"insights", "actionItems"}},
		{"compliance-check", h.CheckCompliance, `{"projectId":"p1"}`,
			[]string{"checks"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, out := call(t, tc.fn, tc.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, string(OutcomeFallback), rec.Header().Get(OutcomeHeader))
			for _, f := range tc.fields {
				assert.Contains(t, out, f)
			}
		})
	}
}

func TestGenerateQuestionsScenario(t *testing.T) {
	h := newTestHandler(nil)
	req := httptest.NewRequest(http.MethodPost, "/ai/generate-questions",
		strings.NewReader(`{"projectId":"p1","analysis":{"requirements":["Cloud migration"]}}`))
	rec := httptest.NewRecorder()
	h.GenerateQuestions(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var questions []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &questions))
	require.Len(t, questions, 4)
	ids := map[string]bool{}
	for _, q := range questions {
		assert.Equal(t, "p1", q["projectId"])
		assert.Equal(t, "pending", q["status"])
		id, _ := q["id"].(string)
		assert.NotEmpty(t, id)
		ids[id] = true
	}
	assert.Len(t, ids, 4)
}

func TestAnalyzeRFPScenario(t *testing.T) {
	h := newTestHandler(nil)
	rec, out := call(t, h.AnalyzeRFP, `{"projectId":"p1","documentId":"d1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(82), out["matchScore"])
	resources, ok := out["recommendedResources"].([]interface{})
	require.True(t, ok)
	assert.Len(t, resources, 2)
}

func TestProposalStructureShape(t *testing.T) {
	h := newTestHandler(nil)
	_, out := call(t, h.GenerateProposalStructure, `{"projectId":"p1"}`)
	assert.Equal(t, "draft", out["status"])
	assert.Equal(t, float64(1), out["version"])
	chapters, ok := out["chapters"].([]interface{})
	require.True(t, ok)
	assert.Len(t, chapters, 10)
	first := chapters[0].(map[string]interface{})
	assert.Equal(t, "pending", first["status"])
	assert.Equal(t, "", first["content"])
}

func TestMissingRequiredFields(t *testing.T) {
	h := newTestHandler(nil)
	cases := []struct {
		name string
		fn   http.HandlerFunc
		body string
	}{
		{"analyze-rfp without document", h.AnalyzeRFP, `{"projectId":"p1"}`},
		{"questions without project", h.GenerateQuestions, `{}`},
		{"chapter without title", h.GenerateChapterContent, `{"projectId":"p1","chapterId":"c1"}`},
		{"insights without notes", h.ExtractInsights, `{"projectId":"p1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, out := call(t, tc.fn, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Missing required fields", out["error"])
			assert.NotEmpty(t, out["details"])
		})
	}
}

func TestMissingFieldsSkipModel(t *testing.T) {
	completer := &fakeCompleter{reply: "{}"}
	h := newTestHandler(completer)
	rec, _ := call(t, h.AnalyzeRFP, `{"documentId":"d1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, completer.calls)
}

func TestInvalidJSON(t *testing.T) {
	h := newTestHandler(nil)
	rec, out := call(t, h.ExtractInsights, `{"projectId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid json", out["error"])
}

func TestUnknownFieldsAccepted(t *testing.T) {
	h := newTestHandler(nil)
	rec, _ := call(t, h.GenerateCoverLetter, `{"projectId":"p1","proposal":{"chapters":[],"extra":true},"ui":"panel"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestModelOutcomeHeader(t *testing.T) {
	h := newTestHandler(&fakeCompleter{reply: "Sehr geehrte Frau Meier,"})
	rec, out := call(t, h.GenerateCoverLetter, `{"projectId":"p1","analysis":{"summary":"Cloud"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(OutcomeAI), rec.Header().Get(OutcomeHeader))
	assert.Equal(t, "Sehr geehrte Frau Meier,", out["letter"])
}
