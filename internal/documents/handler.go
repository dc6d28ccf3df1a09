package documents

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salesagent-backend/internal/middleware"
	"salesagent-backend/internal/projects"
	"salesagent-backend/internal/transport"
)

const (
	maxUploadBytes = 25 << 20
	uploadTimeout  = 60 * time.Second
)

type Handler struct {
	service *Service
	log     *slog.Logger
}

func NewHandler(service *Service, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, err := h.service.List(ctx, chi.URLParam(r, "id"), r.URL.Query().Get("type"))
	if err != nil {
		h.writeError(w, r, "documents list", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

// Upload takes a multipart form with a "file" part and an optional "type".
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("documents upload: too large")
			transport.WriteError(w, http.StatusRequestEntityTooLarge, "file too large", nil)
			return
		}
		log.Warn("documents upload: missing file", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "file is required", nil)
		return
	}
	defer file.Close()

	var uploadedBy string
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		uploadedBy = p.UserID
	}

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	doc, err := h.service.Upload(ctx, chi.URLParam(r, "id"), UploadInput{
		Name:       header.Filename,
		Type:       r.FormValue("type"),
		MimeType:   header.Header.Get("Content-Type"),
		Size:       header.Size,
		Body:       file,
		UploadedBy: uploadedBy,
	})
	if err != nil {
		h.writeError(w, r, "documents upload", err)
		return
	}
	log.Info("documents upload: ok",
		slog.String("document_id", doc.ID),
		slog.String("type", doc.Type),
		slog.Int64("size", doc.Size),
	)
	transport.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	docID := chi.URLParam(r, "docId")
	if err := h.service.Delete(ctx, chi.URLParam(r, "id"), docID); err != nil {
		h.writeError(w, r, "documents delete", err)
		return
	}
	h.logWithRequest(r).Info("documents delete: ok", slog.String("document_id", docID))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, area string, err error) {
	switch {
	case errors.Is(err, projects.ErrNotFound):
		transport.WriteError(w, http.StatusNotFound, "project not found", nil)
	case errors.Is(err, ErrNotFound):
		transport.WriteError(w, http.StatusNotFound, "document not found", nil)
	case errors.Is(err, ErrInvalidType):
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"type": "oneof"})
	default:
		h.logWithRequest(r).Error(area+": storage error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "storage error", nil)
	}
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
