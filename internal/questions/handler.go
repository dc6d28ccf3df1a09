package questions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"salesagent-backend/internal/ai"
	"salesagent-backend/internal/httpx"
	"salesagent-backend/internal/middleware"
	"salesagent-backend/internal/projects"
	"salesagent-backend/internal/transport"
	"salesagent-backend/internal/validation"
)

const maxSheetBytes = 5 << 20

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		val:     val,
		log:     log,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := ListFilter{
		Persona: r.URL.Query().Get("persona"),
		Status:  r.URL.Query().Get("status"),
	}
	items, err := h.service.List(ctx, chi.URLParam(r, "id"), filter)
	if err != nil {
		h.writeError(w, r, "questions list", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

func (h *Handler) Append(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req AppendRequest
	if !h.decode(w, r, "questions append", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, err := h.service.Append(ctx, chi.URLParam(r, "id"), req.Questions)
	if err != nil {
		h.writeError(w, r, "questions append", err)
		return
	}
	log.Info("questions append: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusCreated, map[string]interface{}{"items": items})
}

type generateRequest struct {
	CorpusName string `json:"corpusName"`
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req generateRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeLenientJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
			log.Warn("questions generate: invalid json")
			transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	items, outcome, err := h.service.Generate(ctx, chi.URLParam(r, "id"), strings.TrimSpace(req.CorpusName))
	if err != nil {
		h.writeError(w, r, "questions generate", err)
		return
	}
	log.Info("questions generate: ok", slog.Int("count", len(items)), slog.String("outcome", string(outcome)))
	w.Header().Set(ai.OutcomeHeader, string(outcome))
	transport.WriteJSON(w, http.StatusCreated, map[string]interface{}{"items": items})
}

func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	var req PatchRequest
	if !h.decode(w, r, "questions patch", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Patch(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "qid"), req)
	if err != nil {
		h.writeError(w, r, "questions patch", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, item)
}

// SubmitAnswers takes either a JSON body or a multipart upload of the
// exported sheet with the answer column filled in.
func (h *Handler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	projectID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	var answers []AnswerInput
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			log.Warn("questions answers: missing file")
			transport.WriteError(w, http.StatusBadRequest, "file is required", nil)
			return
		}
		defer file.Close()

		current, err := h.service.List(ctx, projectID, ListFilter{})
		if err != nil {
			h.writeError(w, r, "questions answers", err)
			return
		}
		answers, err = ParseAnswerSheet(io.LimitReader(file, maxSheetBytes), current)
		if err != nil {
			log.Warn("questions answers: invalid sheet", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
	} else {
		var req AnswersRequest
		if !h.decode(w, r, "questions answers", &req) {
			return
		}
		answers = req.Answers
	}

	result, err := h.service.SubmitAnswers(ctx, projectID, answers)
	if err != nil {
		h.writeError(w, r, "questions answers", err)
		return
	}
	log.Info("questions answers: ok",
		slog.Int("updated", len(result.Updated)),
		slog.Int("unknown", len(result.Unknown)),
	)
	transport.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	projectID := strings.TrimSpace(chi.URLParam(r, "id"))
	items, err := h.service.List(ctx, projectID, ListFilter{})
	if err != nil {
		h.writeError(w, r, "questions export", err)
		return
	}
	body, err := ExportCSV(items)
	if err != nil {
		h.writeError(w, r, "questions export", err)
		return
	}
	transport.WriteAttachment(w, "text/csv; charset=utf-8", ExportFilename(projectID), body)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, area string, dst interface{}) bool {
	log := h.logWithRequest(r)
	if err := httpx.DecodeJSON(r.Body, dst); err != nil {
		log.Warn(area + ": invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return false
	}
	if err := h.val.Struct(dst); err != nil {
		log.Warn(area + ": validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, area string, err error) {
	switch {
	case errors.Is(err, projects.ErrNotFound):
		transport.WriteError(w, http.StatusNotFound, "project not found", nil)
	case errors.Is(err, ErrNotFound):
		transport.WriteError(w, http.StatusNotFound, "question not found", nil)
	default:
		h.logWithRequest(r).Error(area+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
	}
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
