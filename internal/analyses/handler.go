package analyses

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salesagent-backend/internal/httpx"
	"salesagent-backend/internal/middleware"
	"salesagent-backend/internal/models"
	"salesagent-backend/internal/projects"
	"salesagent-backend/internal/transport"
	"salesagent-backend/internal/validation"
)

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
		h.writeError(w, r, "analysis get", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req models.RFPAnalysis
	if err := httpx.DecodeLenientJSON(r.Body, &req); err != nil {
		log.Warn("analysis put: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("analysis put: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Put(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeError(w, r, "analysis put", err)
		return
	}
	log.Info("analysis put: ok", slog.String("project_id", item.ProjectID), slog.Int("match_score", item.MatchScore))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, area string, err error) {
	switch {
	case errors.Is(err, projects.ErrNotFound):
		transport.WriteError(w, http.StatusNotFound, "project not found", nil)
	case errors.Is(err, ErrNotFound):
		transport.WriteError(w, http.StatusNotFound, "analysis not found", nil)
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
