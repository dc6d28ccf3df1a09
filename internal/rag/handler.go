package rag

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"salesagent-backend/internal/ai"
	"salesagent-backend/internal/cache"
	"salesagent-backend/internal/httpx"
	"salesagent-backend/internal/metrics"
	"salesagent-backend/internal/middleware"
	"salesagent-backend/internal/transport"
	"salesagent-backend/internal/validation"
)

const (
	msgNotConfigured    = "Vertex AI RAG is not configured"
	msgKeyNotConfigured = "XAI_API_KEY not configured"
	sourcePreviewLen    = 200
)

type SearchRequest struct {
	CorpusName string   `json:"corpusName" validate:"required"`
	Query      string   `json:"query" validate:"required"`
	TopK       int      `json:"topK" validate:"gte=0,lte=100"`
	MinScore   *float64 `json:"minScore"`
}

type ContextRequest struct {
	CorpusName string   `json:"corpusName" validate:"required"`
	Query      string   `json:"query" validate:"required"`
	MaxChunks  int      `json:"maxChunks" validate:"gte=0,lte=100"`
	MinScore   *float64 `json:"minScore"`
}

type AnalyzeRequest struct {
	CorpusName   string `json:"corpusName" validate:"required"`
	Query        string `json:"query" validate:"required"`
	AnalysisType string `json:"analysisType"`
	CustomPrompt string `json:"customPrompt"`
}

type CreateCorpusRequest struct {
	ProjectID   string `json:"projectId" validate:"required"`
	Description string `json:"description"`
}

type ImportRequest struct {
	CorpusName  string            `json:"corpusName" validate:"required"`
	GCSURI      string            `json:"gcsUri" validate:"required,gsuri"`
	DisplayName string            `json:"displayName"`
	Metadata    map[string]string `json:"metadata"`
}

type EmbeddingsRequest struct {
	Text  string   `json:"text"`
	Texts []string `json:"texts"`
}

// fieldMessages is the error text per missing or malformed field.
var fieldMessages = map[string]string{
	"CorpusName": "corpusName is required",
	"Query":      "query is required",
	"ProjectID":  "projectId is required",
	"GCSURI":     "gcsUri is required (gs://bucket/path/to/file)",
	"TopK":       "topK must be between 0 and 100",
	"MaxChunks":  "maxChunks must be between 0 and 100",
}

type SearchResult struct {
	Content      string  `json:"content"`
	Source       string  `json:"source"`
	Score        float64 `json:"score"`
	ScorePercent string  `json:"scorePercent"`
}

type Handler struct {
	client    *Client
	embedder  Embedder
	completer ai.Completer
	cache     cache.Cache
	ttl       time.Duration
	val       *validation.Validator
	log       *slog.Logger
}

// NewHandler wires the proxy. A nil client answers 503 on every route; a
// nil completer disables analyze and a nil embedder disables embeddings.
func NewHandler(client *Client, embedder Embedder, completer ai.Completer, store cache.Cache, ttl time.Duration, val *validation.Validator, log *slog.Logger) *Handler {
	if store == nil {
		store = cache.NewNoop()
	}
	return &Handler{
		client:    client,
		embedder:  embedder,
		completer: completer,
		cache:     store,
		ttl:       ttl,
		val:       val,
		log:       log,
	}
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req SearchRequest
	if !h.decode(w, r, "rag search", &req) {
		return
	}
	if !h.requireClient(w, log, "rag search") {
		return
	}
	if req.TopK == 0 {
		req.TopK = defaultTopK
	}
	minScore := 0.0
	if req.MinScore != nil {
		minScore = *req.MinScore
	}

	key := cache.Key("rag:search", req.CorpusName, req.Query, strconv.Itoa(req.TopK), strconv.FormatFloat(minScore, 'f', -1, 64))
	if h.serveCached(w, r, key) {
		log.Info("rag search: cache hit")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	chunks, err := h.client.Search(ctx, req.CorpusName, req.Query, req.TopK)
	if err != nil {
		log.Error("rag search: upstream error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Search failed", nil)
		return
	}
	chunks = FilterByScore(chunks, minScore)

	results := make([]SearchResult, 0, len(chunks))
	for _, ch := range chunks {
		results = append(results, SearchResult{
			Content:      ch.Content,
			Source:       ch.Source,
			Score:        ch.Score,
			ScorePercent: ScorePercent(ch.Score),
		})
	}
	log.Info("rag search: ok", slog.Int("count", len(results)))
	h.writeCached(w, r, key, map[string]interface{}{
		"success":      true,
		"query":        req.Query,
		"results":      results,
		"totalResults": len(results),
	})
}

func (h *Handler) Context(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req ContextRequest
	if !h.decode(w, r, "rag context", &req) {
		return
	}
	if !h.requireClient(w, log, "rag context") {
		return
	}
	if req.MaxChunks == 0 {
		req.MaxChunks = 3
	}
	minScore := 0.5
	if req.MinScore != nil {
		minScore = *req.MinScore
	}

	key := cache.Key("rag:context", req.CorpusName, req.Query, strconv.Itoa(req.MaxChunks), strconv.FormatFloat(minScore, 'f', -1, 64))
	if h.serveCached(w, r, key) {
		log.Info("rag context: cache hit")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	text, err := h.client.RelevantContext(ctx, req.CorpusName, req.Query, req.MaxChunks, minScore)
	if err != nil {
		log.Error("rag context: upstream error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to get context", nil)
		return
	}
	log.Info("rag context: ok", slog.Bool("has_context", text != ""))
	h.writeCached(w, r, key, map[string]interface{}{
		"success":    true,
		"query":      req.Query,
		"context":    text,
		"hasContext": text != "",
	})
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req AnalyzeRequest
	if err := httpx.DecodeLenientJSON(r.Body, &req); err != nil {
		log.Warn("rag analyze: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("rag analyze: validation error")
		transport.WriteError(w, http.StatusBadRequest, "corpusName and query are required", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}
	if h.completer == nil {
		log.Warn("rag analyze: completion key missing")
		transport.WriteError(w, http.StatusServiceUnavailable, msgKeyNotConfigured, nil)
		return
	}
	if !h.requireClient(w, log, "rag analyze") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	chunks, err := h.client.Search(ctx, req.CorpusName, req.Query, defaultTopK)
	if err != nil {
		log.Error("rag analyze: upstream error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Analysis failed", nil)
		return
	}
	if len(chunks) == 0 {
		log.Info("rag analyze: no chunks", slog.String("corpus", req.CorpusName))
		transport.WriteError(w, http.StatusNotFound, "No relevant content found in corpus", nil)
		return
	}

	reply, err := h.completer.Complete(ctx, []ai.Message{
		{Role: ai.RoleSystem, Content: ai.SystemPromptFor(req.AnalysisType, req.CustomPrompt)},
		{Role: ai.RoleUser, Content: ai.DocumentAnalysisMessage(FormatChunks(chunks, "Document"), req.Query)},
	}, ai.CompletionOptions{Temperature: ai.Temperature(0.3)})
	if err != nil {
		log.Error("rag analyze: completion error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Analysis failed", nil)
		return
	}

	var structured json.RawMessage
	if raw, ok := ai.ExtractJSON(reply); ok {
		structured = raw
	}

	sources := make([]map[string]interface{}, 0, len(chunks))
	total := 0.0
	for _, ch := range chunks {
		total += ch.Score
		sources = append(sources, map[string]interface{}{
			"content": preview(ch.Content),
			"source":  ch.Source,
			"score":   ch.Score,
		})
	}

	log.Info("rag analyze: ok", slog.Int("sources", len(chunks)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"query":          req.Query,
		"analysisType":   req.AnalysisType,
		"response":       reply,
		"structuredData": structured,
		"sources":        sources,
		"metadata": map[string]interface{}{
			"sourcesUsed":  len(chunks),
			"avgRelevance": total / float64(len(chunks)),
		},
	})
}

func (h *Handler) CreateCorpus(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req CreateCorpusRequest
	if !h.decode(w, r, "rag corpus create", &req) {
		return
	}
	if h.client == nil {
		log.Warn("rag corpus create: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, msgNotConfigured+". Set GOOGLE_CLOUD_PROJECT_ID.", nil)
		return
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "RAG corpus for project " + req.ProjectID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	corpus, err := h.client.CreateCorpus(ctx, ProjectCorpusDisplayName(req.ProjectID), description)
	if err != nil {
		log.Error("rag corpus create: upstream error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to create corpus", nil)
		return
	}
	log.Info("rag corpus create: ok", slog.String("corpus", corpus.Name))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"corpus": map[string]interface{}{
			"name":        corpus.Name,
			"displayName": corpus.DisplayName,
			"description": corpus.Description,
			"createdAt":   corpus.CreateTime,
		},
	})
}

func (h *Handler) ListCorpora(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	if !h.requireClient(w, log, "rag corpus list") {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	corpora, err := h.client.ListCorpora(ctx)
	if err != nil {
		log.Error("rag corpus list: upstream error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to list corpora", nil)
		return
	}
	items := make([]map[string]interface{}, 0, len(corpora))
	for _, c := range corpora {
		items = append(items, map[string]interface{}{
			"name":        c.Name,
			"displayName": c.DisplayName,
			"description": c.Description,
			"createdAt":   c.CreateTime,
			"updatedAt":   c.UpdateTime,
		})
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"corpora": items,
	})
}

func (h *Handler) DeleteCorpus(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		transport.WriteError(w, http.StatusBadRequest, "Corpus name is required", nil)
		return
	}
	if !h.requireClient(w, log, "rag corpus delete") {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := h.client.DeleteCorpus(ctx, name); err != nil {
		log.Error("rag corpus delete: upstream error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to delete corpus", nil)
		return
	}
	log.Info("rag corpus delete: ok", slog.String("corpus", name))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Corpus " + name + " deleted successfully",
	})
}

func (h *Handler) ImportDocument(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req ImportRequest
	if !h.decode(w, r, "rag document import", &req) {
		return
	}
	if !h.requireClient(w, log, "rag document import") {
		return
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = req.GCSURI[strings.LastIndex(req.GCSURI, "/")+1:]
	}
	if displayName == "" {
		displayName = "document"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	file, err := h.client.ImportFile(ctx, req.CorpusName, req.GCSURI, displayName)
	if err != nil {
		log.Error("rag document import: upstream error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to ingest document", nil)
		return
	}
	log.Info("rag document import: started", slog.String("operation", file.Name))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"document": map[string]interface{}{
			"name":        file.Name,
			"displayName": file.DisplayName,
			"status":      file.Status,
		},
		"message": "Document ingestion started. It may take a few minutes to process.",
	})
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	corpusName := strings.TrimSpace(r.URL.Query().Get("corpusName"))
	if corpusName == "" {
		transport.WriteError(w, http.StatusBadRequest, "corpusName query parameter is required", nil)
		return
	}
	if !h.requireClient(w, log, "rag document list") {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	files, err := h.client.ListFiles(ctx, corpusName)
	if err != nil {
		log.Error("rag document list: upstream error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to list documents", nil)
		return
	}
	items := make([]map[string]interface{}, 0, len(files))
	for _, f := range files {
		items = append(items, map[string]interface{}{
			"name":        f.Name,
			"displayName": f.DisplayName,
			"status":      f.Status,
			"createdAt":   f.CreateTime,
			"updatedAt":   f.UpdateTime,
		})
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"documents": items,
	})
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		transport.WriteError(w, http.StatusBadRequest, "Document name is required", nil)
		return
	}
	if !h.requireClient(w, log, "rag document delete") {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := h.client.DeleteFile(ctx, name); err != nil {
		log.Error("rag document delete: upstream error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to delete document", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Document " + name + " deleted successfully",
	})
}

func (h *Handler) Embeddings(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req EmbeddingsRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("rag embeddings: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	texts := make([]string, 0, len(req.Texts)+1)
	if strings.TrimSpace(req.Text) != "" {
		texts = append(texts, req.Text)
	}
	for _, t := range req.Texts {
		if strings.TrimSpace(t) != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		transport.WriteError(w, http.StatusBadRequest, "text or texts is required", nil)
		return
	}
	if h.embedder == nil {
		log.Warn("rag embeddings: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, msgNotConfigured, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	embeddings, err := h.embedder.Embed(ctx, texts)
	if err != nil {
		log.Error("rag embeddings: upstream error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to generate embeddings", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"embeddings": embeddings,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, area string, req interface{}) bool {
	log := h.logWithRequest(r)
	if err := httpx.DecodeLenientJSON(r.Body, req); err != nil {
		log.Warn(area + ": invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		errs := h.val.ValidationErrors(err)
		message := "validation error"
		if len(errs) > 0 {
			if m, ok := fieldMessages[errs[0].Field()]; ok {
				message = m
			}
		}
		log.Warn(area+": validation error", slog.String("message", message))
		transport.WriteError(w, http.StatusBadRequest, message, httpx.ValidationDetails(errs))
		return false
	}
	return true
}

func (h *Handler) requireClient(w http.ResponseWriter, log *slog.Logger, area string) bool {
	if h.client != nil {
		return true
	}
	log.Warn(area + ": not configured")
	transport.WriteError(w, http.StatusServiceUnavailable, msgNotConfigured, nil)
	return false
}

func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	cached, ok, err := h.cache.Get(r.Context(), key)
	hit := err == nil && ok
	metrics.IncrementCacheLookup(hit)
	if !hit {
		return false
	}
	transport.WriteRawJSON(w, http.StatusOK, cached)
	return true
}

func (h *Handler) writeCached(w http.ResponseWriter, r *http.Request, key string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		transport.WriteJSON(w, http.StatusOK, payload)
		return
	}
	if h.ttl > 0 {
		if err := h.cache.Set(r.Context(), key, body, h.ttl); err != nil {
			h.logWithRequest(r).Warn("rag cache: set failed", slog.String("error", err.Error()))
		}
	}
	transport.WriteRawJSON(w, http.StatusOK, body)
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) > sourcePreviewLen {
		runes = runes[:sourcePreviewLen]
	}
	return string(runes) + "..."
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
