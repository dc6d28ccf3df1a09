package projects

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"salesagent-backend/internal/httpx"
	"salesagent-backend/internal/middleware"
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	q := r.URL.Query()
	limit, offset, err := httpx.ParseLimitOffset(q, 50, 200)
	if err != nil {
		log.Warn("projects list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	filter := ListFilter{
		Status:     q.Get("status"),
		CustomerID: q.Get("customerId"),
	}
	if q.Get("mine") == "true" {
		if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
			filter.CreatedBy = p.UserID
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, total, err := h.service.List(ctx, filter, limit, offset)
	if err != nil {
		log.Error("projects list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, "projects get", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateRequest
	if !h.decode(w, r, "projects create", &req) {
		return
	}

	var createdBy string
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		createdBy = p.UserID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.service.Create(ctx, req, createdBy)
	if err != nil {
		log.Error("projects create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("projects create: ok", slog.String("project_id", item.ID))
	transport.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if !h.decode(w, r, "projects update", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.service.Update(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeServiceError(w, r, "projects update", err)
		return
	}
	h.logWithRequest(r).Info("projects update: ok", slog.String("project_id", item.ID))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(ctx, id); err != nil {
		h.writeServiceError(w, r, "projects delete", err)
		return
	}
	h.logWithRequest(r).Info("projects delete: ok", slog.String("project_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Advance(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, "projects advance", err)
		return
	}
	h.logWithRequest(r).Info("projects advance: ok",
		slog.String("project_id", item.ID),
		slog.String("step", string(item.CurrentStep)),
		slog.String("status", item.Status),
	)
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Jump(w http.ResponseWriter, r *http.Request) {
	var req JumpRequest
	if !h.decode(w, r, "projects jump", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Jump(ctx, chi.URLParam(r, "id"), req.Step)
	if err != nil {
		h.writeServiceError(w, r, "projects jump", err)
		return
	}
	h.logWithRequest(r).Info("projects jump: ok",
		slog.String("project_id", item.ID),
		slog.String("step", string(item.CurrentStep)),
	)
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Workflow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	view, err := h.service.Workflow(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, "projects workflow", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, view)
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

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, area string, err error) {
	log := h.logWithRequest(r)
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn(area+": not found", slog.String("project_id", strings.TrimSpace(chi.URLParam(r, "id"))))
		transport.WriteError(w, http.StatusNotFound, "project not found", nil)
	case errors.Is(err, ErrInvalidStatus):
		log.Warn(area + ": invalid status")
		transport.WriteError(w, http.StatusBadRequest, "status must be active or archived", nil)
	case errors.Is(err, ErrInvalidStep):
		log.Warn(area + ": invalid step")
		transport.WriteError(w, http.StatusBadRequest, "unknown workflow step", nil)
	default:
		log.Error(area+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
	}
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
