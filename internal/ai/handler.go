package ai

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"salesagent-backend/internal/httpx"
	"salesagent-backend/internal/middleware"
	"salesagent-backend/internal/models"
	"salesagent-backend/internal/transport"
	"salesagent-backend/internal/validation"
)

// OutcomeHeader carries whether a task answered from the model or from the
// canned fallback.
const OutcomeHeader = "X-AI-Outcome"

const taskTimeout = 90 * time.Second

type AnalyzeRFPRequest struct {
	ProjectID   string `json:"projectId" validate:"required"`
	DocumentID  string `json:"documentId" validate:"required"`
	DocumentURL string `json:"documentUrl"`
	CorpusName  string `json:"corpusName"`
}

type GenerateQuestionsRequest struct {
	ProjectID  string              `json:"projectId" validate:"required"`
	Analysis   *models.RFPAnalysis `json:"analysis" validate:"-"`
	CorpusName string              `json:"corpusName"`
}

type GenerateAgendaRequest struct {
	ProjectID           string              `json:"projectId" validate:"required"`
	Analysis            *models.RFPAnalysis `json:"analysis" validate:"-"`
	UnansweredQuestions []models.Question   `json:"unansweredQuestions" validate:"-"`
}

type ChapterContentRequest struct {
	ProjectID         string              `json:"projectId" validate:"required"`
	ChapterID         string              `json:"chapterId" validate:"required"`
	ChapterTitle      string              `json:"chapterTitle" validate:"required"`
	Analysis          *models.RFPAnalysis `json:"analysis" validate:"-"`
	Meeting           *models.Meeting     `json:"meeting" validate:"-"`
	AnsweredQuestions []models.Question   `json:"answeredQuestions" validate:"-"`
}

type CoverLetterRequest struct {
	ProjectID string              `json:"projectId" validate:"required"`
	Proposal  *models.Proposal    `json:"proposal" validate:"-"`
	Analysis  *models.RFPAnalysis `json:"analysis" validate:"-"`
}

type ProposalStructureRequest struct {
	ProjectID         string              `json:"projectId" validate:"required"`
	Analysis          *models.RFPAnalysis `json:"analysis" validate:"-"`
	Meeting           *models.Meeting     `json:"meeting" validate:"-"`
	AnsweredQuestions []models.Question   `json:"answeredQuestions" validate:"-"`
	TemplateID        string              `json:"templateId"`
}

type ExtractInsightsRequest struct {
	ProjectID string `json:"projectId" validate:"required"`
	Notes     string `json:"notes" validate:"required"`
}

type ComplianceCheckRequest struct {
	ProjectID string              `json:"projectId" validate:"required"`
	Proposal  *models.Proposal    `json:"proposal" validate:"-"`
	Analysis  *models.RFPAnalysis `json:"analysis" validate:"-"`
}

type ChapterContentResult struct {
	Content string `json:"content"`
}

type CoverLetterResult struct {
	Letter string `json:"letter"`
}

type ComplianceResult struct {
	Checks []models.ComplianceCheck `json:"checks"`
}

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

func (h *Handler) AnalyzeRFP(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRFPRequest
	if !h.decode(w, r, TaskAnalyzeRFP, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), taskTimeout)
	defer cancel()

	analysis, outcome := h.service.AnalyzeRFP(ctx, AnalyzeRFPInput{
		ProjectID:   req.ProjectID,
		DocumentID:  req.DocumentID,
		DocumentURL: req.DocumentURL,
		CorpusName:  req.CorpusName,
	})
	h.respond(w, r, TaskAnalyzeRFP, outcome, analysis)
}

func (h *Handler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req GenerateQuestionsRequest
	if !h.decode(w, r, TaskGenerateQuestions, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), taskTimeout)
	defer cancel()

	questions, outcome := h.service.GenerateQuestions(ctx, QuestionsInput{
		ProjectID:  req.ProjectID,
		Analysis:   req.Analysis,
		CorpusName: req.CorpusName,
	})
	h.respond(w, r, TaskGenerateQuestions, outcome, questions)
}

func (h *Handler) GenerateAgenda(w http.ResponseWriter, r *http.Request) {
	var req GenerateAgendaRequest
	if !h.decode(w, r, TaskGenerateAgenda, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), taskTimeout)
	defer cancel()

	meeting, outcome := h.service.GenerateAgenda(ctx, AgendaInput{
		ProjectID:           req.ProjectID,
		Analysis:            req.Analysis,
		UnansweredQuestions: req.UnansweredQuestions,
	})
	h.respond(w, r, TaskGenerateAgenda, outcome, meeting)
}

func (h *Handler) GenerateChapterContent(w http.ResponseWriter, r *http.Request) {
	var req ChapterContentRequest
	if !h.decode(w, r, TaskChapterContent, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), taskTimeout)
	defer cancel()

	content, outcome := h.service.GenerateChapterContent(ctx, ChapterContentInput{
		ProjectID:         req.ProjectID,
		ChapterID:         req.ChapterID,
		ChapterTitle:      req.ChapterTitle,
		Analysis:          req.Analysis,
		Meeting:           req.Meeting,
		AnsweredQuestions: req.AnsweredQuestions,
	})
	h.respond(w, r, TaskChapterContent, outcome, ChapterContentResult{Content: content})
}

func (h *Handler) GenerateCoverLetter(w http.ResponseWriter, r *http.Request) {
	var req CoverLetterRequest
	if !h.decode(w, r, TaskCoverLetter, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), taskTimeout)
	defer cancel()

	letter, outcome := h.service.GenerateCoverLetter(ctx, CoverLetterInput{
		ProjectID: req.ProjectID,
		Proposal:  req.Proposal,
		Analysis:  req.Analysis,
	})
	h.respond(w, r, TaskCoverLetter, outcome, CoverLetterResult{Letter: letter})
}

func (h *Handler) GenerateProposalStructure(w http.ResponseWriter, r *http.Request) {
	var req ProposalStructureRequest
	if !h.decode(w, r, TaskProposalStructure, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), taskTimeout)
	defer cancel()

	proposal, outcome := h.service.GenerateProposalStructure(ctx, StructureInput{
		ProjectID:         req.ProjectID,
		TemplateID:        req.TemplateID,
		Analysis:          req.Analysis,
		Meeting:           req.Meeting,
		AnsweredQuestions: req.AnsweredQuestions,
	})
	h.respond(w, r, TaskProposalStructure, outcome, proposal)
}

func (h *Handler) ExtractInsights(w http.ResponseWriter, r *http.Request) {
	var req ExtractInsightsRequest
	if !h.decode(w, r, TaskExtractInsights, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), taskTimeout)
	defer cancel()

	insights, outcome := h.service.ExtractInsights(ctx, InsightsInput{
		ProjectID: req.ProjectID,
		Notes:     req.Notes,
	})
	h.respond(w, r, TaskExtractInsights, outcome, insights)
}

func (h *Handler) CheckCompliance(w http.ResponseWriter, r *http.Request) {
	var req ComplianceCheckRequest
	if !h.decode(w, r, TaskComplianceCheck, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), taskTimeout)
	defer cancel()

	checks, outcome := h.service.CheckCompliance(ctx, ComplianceInput{
		ProjectID: req.ProjectID,
		Proposal:  req.Proposal,
		Analysis:  req.Analysis,
	})
	h.respond(w, r, TaskComplianceCheck, outcome, ComplianceResult{Checks: checks})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, task string, req interface{}) bool {
	log := h.logWithRequest(r)
	if err := httpx.DecodeLenientJSON(r.Body, req); err != nil {
		log.Warn("ai " + task + ": invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("ai " + task + ": validation error")
		transport.WriteError(w, http.StatusBadRequest, "Missing required fields", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, task string, outcome Outcome, body interface{}) {
	h.logWithRequest(r).Info("ai "+task+": done", slog.String("outcome", string(outcome)))
	w.Header().Set(OutcomeHeader, string(outcome))
	transport.WriteJSON(w, http.StatusOK, body)
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
