package meetings

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salesagent-backend/internal/ai"
	"salesagent-backend/internal/httpx"
	"salesagent-backend/internal/middleware"
	"salesagent-backend/internal/projects"
	"salesagent-backend/internal/transport"
	"salesagent-backend/internal/validation"
)

const aiTimeout = 90 * time.Second

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

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "meeting get", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	var req PutRequest
	if !h.decode(w, r, "meeting put", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Put(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeError(w, r, "meeting put", err)
		return
	}
	h.logWithRequest(r).Info("meeting put: ok", slog.String("project_id", item.ProjectID), slog.Int("agenda", len(item.Agenda)))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) PatchNotes(w http.ResponseWriter, r *http.Request) {
	var req NotesRequest
	if !h.decode(w, r, "meeting notes", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.PatchNotes(ctx, chi.URLParam(r, "id"), req.Notes)
	if err != nil {
		h.writeError(w, r, "meeting notes", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) GenerateAgenda(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
	defer cancel()

	item, outcome, err := h.service.GenerateAgenda(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "meeting agenda", err)
		return
	}
	h.logWithRequest(r).Info("meeting agenda: ok", slog.String("outcome", string(outcome)))
	w.Header().Set(ai.OutcomeHeader, string(outcome))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) ExtractInsights(w http.ResponseWriter, r *http.Request) {
	var req InsightsRequest
	if r.ContentLength != 0 && !h.decode(w, r, "meeting insights", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
	defer cancel()

	item, outcome, err := h.service.ExtractInsights(ctx, chi.URLParam(r, "id"), req.Notes)
	if err != nil {
		h.writeError(w, r, "meeting insights", err)
		return
	}
	h.logWithRequest(r).Info("meeting insights: ok",
		slog.String("outcome", string(outcome)),
		slog.Int("insights", len(item.Insights)),
		slog.Int("action_items", len(item.ActionItems)),
	)
	w.Header().Set(ai.OutcomeHeader, string(outcome))
	transport.WriteJSON(w, http.StatusOK, item)
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
		transport.WriteError(w, http.StatusNotFound, "meeting not found", nil)
	case errors.Is(err, ErrNoNotes):
		transport.WriteError(w, http.StatusBadRequest, "notes are required", nil)
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
