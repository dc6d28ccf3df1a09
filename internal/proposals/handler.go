package proposals

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"salesagent-backend/internal/ai"
	"salesagent-backend/internal/httpx"
	"salesagent-backend/internal/middleware"
	"salesagent-backend/internal/notifications"
	"salesagent-backend/internal/projects"
	"salesagent-backend/internal/transport"
	"salesagent-backend/internal/validation"
)

const (
	aiTimeout     = 90 * time.Second
	notifyTimeout = 8 * time.Second
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
		h.writeError(w, r, "proposal get", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	var req PutRequest
	if !h.decode(w, r, "proposal put", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Put(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeError(w, r, "proposal put", err)
		return
	}
	h.logWithRequest(r).Info("proposal put: ok", slog.String("project_id", item.ProjectID), slog.Int("version", item.Version))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) GenerateStructure(w http.ResponseWriter, r *http.Request) {
	var req StructureRequest
	if r.ContentLength != 0 && !h.decode(w, r, "proposal structure", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
	defer cancel()

	item, outcome, err := h.service.GenerateStructure(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeError(w, r, "proposal structure", err)
		return
	}
	h.logWithRequest(r).Info("proposal structure: ok",
		slog.String("project_id", item.ProjectID),
		slog.Int("chapters", len(item.Chapters)),
		slog.String("outcome", string(outcome)),
	)
	w.Header().Set(ai.OutcomeHeader, string(outcome))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) PatchChapter(w http.ResponseWriter, r *http.Request) {
	var req ChapterPatch
	if !h.decode(w, r, "proposal chapter", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.PatchChapter(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "cid"), req)
	if err != nil {
		h.writeError(w, r, "proposal chapter", err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) GenerateChapter(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
	defer cancel()

	item, outcome, err := h.service.GenerateChapter(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "cid"))
	if err != nil {
		h.writeError(w, r, "proposal generate", err)
		return
	}
	h.logWithRequest(r).Info("proposal generate: ok",
		slog.String("chapter_id", chi.URLParam(r, "cid")),
		slog.String("outcome", string(outcome)),
	)
	w.Header().Set(ai.OutcomeHeader, string(outcome))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) CheckCompliance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
	defer cancel()

	result, outcome, err := h.service.CheckCompliance(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "proposal compliance", err)
		return
	}
	w.Header().Set(ai.OutcomeHeader, string(outcome))
	transport.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	projectID := strings.TrimSpace(chi.URLParam(r, "id"))
	text, err := h.service.Export(ctx, projectID)
	if err != nil {
		h.writeError(w, r, "proposal export", err)
		return
	}
	transport.WriteAttachment(w, "text/plain; charset=utf-8", ExportFilename(projectID), []byte(text))
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req SendRequest
	if r.ContentLength != 0 && !h.decode(w, r, "proposal send", &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
	defer cancel()

	result, mail, err := h.service.Send(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeError(w, r, "proposal send", err)
		return
	}

	if mail != nil {
		go func(m notifications.ProposalMail, projectID string) {
			notifyCtx, notifyCancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer notifyCancel()
			messageID, err := h.service.Notify(notifyCtx, m)
			if err != nil {
				h.log.Warn("proposal send: email failed",
					slog.String("project_id", projectID),
					slog.String("email", m.ToEmail),
					slog.String("error", err.Error()),
				)
				return
			}
			h.log.Info("proposal send: email sent",
				slog.String("project_id", projectID),
				slog.String("message_id", messageID),
			)
		}(*mail, result.Proposal.ProjectID)
	}

	log.Info("proposal send: ok",
		slog.String("project_id", result.Proposal.ProjectID),
		slog.Bool("email_queued", result.EmailQueued),
	)
	transport.WriteJSON(w, http.StatusOK, result)
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
		transport.WriteError(w, http.StatusNotFound, "proposal not found", nil)
	case errors.Is(err, ErrChapterNotFound):
		transport.WriteError(w, http.StatusNotFound, "chapter not found", nil)
	case errors.Is(err, ErrAlreadySent):
		transport.WriteError(w, http.StatusConflict, "proposal already sent", nil)
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
