package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"salesagent-backend/internal/metrics"
	"salesagent-backend/internal/models"
	"salesagent-backend/internal/validation"
)

const (
	TaskAnalyzeRFP        = "analyze-rfp"
	TaskGenerateQuestions = "generate-questions"
	TaskGenerateAgenda    = "generate-agenda"
	TaskChapterContent    = "generate-chapter-content"
	TaskCoverLetter       = "generate-cover-letter"
	TaskProposalStructure = "generate-proposal-structure"
	TaskExtractInsights   = "extract-insights"
	TaskComplianceCheck   = "compliance-check"
)

const (
	retrievalMaxChunks = 5
	retrievalMinScore  = 0.3
)

// Outcome tells whether a result came from the model or the canned data.
type Outcome string

const (
	OutcomeAI       Outcome = metrics.OutcomeAI
	OutcomeFallback Outcome = metrics.OutcomeFallback
)

// ContextRetriever returns formatted document excerpts for a query.
type ContextRetriever interface {
	RelevantContext(ctx context.Context, corpusName, query string, maxChunks int, minScore float64) (string, error)
}

type Service struct {
	completer Completer
	retriever ContextRetriever
	val       *validation.Validator
	log       *slog.Logger
	location  *time.Location
	now       func() time.Time
	newID     func() string
}

// NewService builds the task service. A nil completer means no credential
// is configured and every task answers with its fallback.
func NewService(completer Completer, retriever ContextRetriever, val *validation.Validator, location *time.Location, log *slog.Logger) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		completer: completer,
		retriever: retriever,
		val:       val,
		log:       log,
		location:  location,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *Service) Configured() bool {
	return s.completer != nil
}

func (s *Service) timestamp() time.Time {
	return s.now().In(s.location)
}

type AnalyzeRFPInput struct {
	ProjectID   string
	DocumentID  string
	DocumentURL string
	CorpusName  string
}

func (s *Service) AnalyzeRFP(ctx context.Context, in AnalyzeRFPInput) (models.RFPAnalysis, Outcome) {
	now := s.timestamp()
	if s.Configured() {
		user := s.augment(ctx, TaskAnalyzeRFP, in.CorpusName, analyzeRFPMessage(in.DocumentID))
		text, err := s.complete(ctx, TaskAnalyzeRFP, systemAnalyzeRFP, user, 0.3)
		if err == nil {
			var analysis models.RFPAnalysis
			analysis, err = decodeObject[models.RFPAnalysis](text, s.val.Struct)
			if err == nil {
				analysis.ID = s.newID()
				analysis.ProjectID = in.ProjectID
				analysis.DocumentID = in.DocumentID
				analysis.CreatedAt = now
				normalizeAnalysis(&analysis)
				return analysis, s.succeeded(ctx, TaskAnalyzeRFP)
			}
		}
		s.failed(ctx, TaskAnalyzeRFP, err)
	} else {
		s.failed(ctx, TaskAnalyzeRFP, ErrNotConfigured)
	}
	return fallbackAnalysis(in.ProjectID, in.DocumentID, s.newID(), now), OutcomeFallback
}

type QuestionsInput struct {
	ProjectID  string
	Analysis   *models.RFPAnalysis
	CorpusName string
}

func (s *Service) GenerateQuestions(ctx context.Context, in QuestionsInput) ([]models.Question, Outcome) {
	now := s.timestamp()
	err := s.precondition(in.Analysis != nil)
	if err == nil {
		user := s.augment(ctx, TaskGenerateQuestions, in.CorpusName, questionsMessage(in.Analysis))
		var text string
		text, err = s.complete(ctx, TaskGenerateQuestions, systemGenerateQuestions, user, 0.5)
		if err == nil {
			var questions []models.Question
			questions, err = decodeList[models.Question](text, "questions", s.val.Struct)
			if err == nil {
				for i := range questions {
					questions[i].ID = s.newID()
					questions[i].ProjectID = in.ProjectID
					questions[i].Status = models.QuestionPending
					questions[i].Answer = ""
					questions[i].AnsweredAt = nil
					questions[i].CreatedAt = now
				}
				return questions, s.succeeded(ctx, TaskGenerateQuestions)
			}
		}
	}
	s.failed(ctx, TaskGenerateQuestions, err)
	return fallbackQuestions(in.ProjectID, s.newID, now), OutcomeFallback
}

type AgendaInput struct {
	ProjectID           string
	Analysis            *models.RFPAnalysis
	UnansweredQuestions []models.Question
}

func (s *Service) GenerateAgenda(ctx context.Context, in AgendaInput) (models.Meeting, Outcome) {
	now := s.timestamp()
	err := s.precondition(in.Analysis != nil)
	if err == nil {
		var text string
		text, err = s.complete(ctx, TaskGenerateAgenda, systemGenerateAgenda, agendaMessage(in.Analysis, in.UnansweredQuestions), 0.4)
		if err == nil {
			var items []models.AgendaItem
			items, err = decodeList[models.AgendaItem](text, "agenda", s.val.Struct)
			if err == nil {
				for i := range items {
					if strings.TrimSpace(items[i].ID) == "" {
						items[i].ID = s.newID()
					}
					if items[i].Order == 0 {
						items[i].Order = i + 1
					}
				}
				return models.Meeting{
					ID:        s.newID(),
					ProjectID: in.ProjectID,
					Agenda:    items,
					CreatedAt: now,
					UpdatedAt: now,
				}, s.succeeded(ctx, TaskGenerateAgenda)
			}
		}
	}
	s.failed(ctx, TaskGenerateAgenda, err)
	return fallbackAgenda(in.ProjectID, s.newID, now), OutcomeFallback
}

type ChapterContentInput struct {
	ProjectID         string
	ChapterID         string
	ChapterTitle      string
	Analysis          *models.RFPAnalysis
	Meeting           *models.Meeting
	AnsweredQuestions []models.Question
}

func (s *Service) GenerateChapterContent(ctx context.Context, in ChapterContentInput) (string, Outcome) {
	err := s.precondition(in.Analysis != nil)
	if err == nil {
		var text string
		text, err = s.complete(ctx, TaskChapterContent, chapterContentPrompt(in.ChapterTitle),
			chapterContentMessage(in.ChapterTitle, in.Analysis, in.Meeting), 0.6)
		if err == nil {
			if strings.TrimSpace(text) != "" {
				return text, s.succeeded(ctx, TaskChapterContent)
			}
			err = ErrInvalidOutput
		}
	}
	s.failed(ctx, TaskChapterContent, err)
	return fallbackChapterContent(in.ChapterTitle), OutcomeFallback
}

type CoverLetterInput struct {
	ProjectID string
	Proposal  *models.Proposal
	Analysis  *models.RFPAnalysis
}

func (s *Service) GenerateCoverLetter(ctx context.Context, in CoverLetterInput) (string, Outcome) {
	err := s.precondition(in.Analysis != nil)
	if err == nil {
		var text string
		text, err = s.complete(ctx, TaskCoverLetter, systemCoverLetter, coverLetterMessage(in.Analysis), 0.6)
		if err == nil {
			if strings.TrimSpace(text) != "" {
				return text, s.succeeded(ctx, TaskCoverLetter)
			}
			err = ErrInvalidOutput
		}
	}
	s.failed(ctx, TaskCoverLetter, err)
	return fallbackCoverLetter, OutcomeFallback
}

type StructureInput struct {
	ProjectID         string
	TemplateID        string
	Analysis          *models.RFPAnalysis
	Meeting           *models.Meeting
	AnsweredQuestions []models.Question
}

func (s *Service) GenerateProposalStructure(ctx context.Context, in StructureInput) (models.Proposal, Outcome) {
	now := s.timestamp()
	err := s.precondition(in.Analysis != nil)
	if err == nil {
		var text string
		text, err = s.complete(ctx, TaskProposalStructure, systemProposalStructure, structureMessage(in.Analysis, in.Meeting), 0.3)
		if err == nil {
			var chapters []models.ProposalChapter
			chapters, err = decodeList[models.ProposalChapter](text, "chapters", s.val.Struct)
			if err == nil {
				for i := range chapters {
					if strings.TrimSpace(chapters[i].ID) == "" {
						chapters[i].ID = s.newID()
					}
					if chapters[i].Order == 0 {
						chapters[i].Order = i + 1
					}
					chapters[i].Content = ""
					chapters[i].Status = models.ChapterPending
					chapters[i].GeneratedBy = ""
				}
				return models.Proposal{
					ID:         s.newID(),
					ProjectID:  in.ProjectID,
					TemplateID: in.TemplateID,
					Chapters:   chapters,
					Status:     models.ProposalDraft,
					Version:    1,
					CreatedAt:  now,
					UpdatedAt:  now,
				}, s.succeeded(ctx, TaskProposalStructure)
			}
		}
	}
	s.failed(ctx, TaskProposalStructure, err)
	return fallbackStructure(in.ProjectID, in.TemplateID, s.newID, now), OutcomeFallback
}

type InsightsInput struct {
	ProjectID string
	Notes     string
}

func (s *Service) ExtractInsights(ctx context.Context, in InsightsInput) (models.MeetingInsights, Outcome) {
	err := s.precondition(true)
	if err == nil {
		var text string
		text, err = s.complete(ctx, TaskExtractInsights, systemExtractInsights, insightsMessage(in.Notes), 0.3)
		if err == nil {
			var result models.MeetingInsights
			result, err = decodeObject[models.MeetingInsights](text, validateInsights)
			if err == nil {
				if result.Insights == nil {
					result.Insights = []string{}
				}
				if result.ActionItems == nil {
					result.ActionItems = []string{}
				}
				return result, s.succeeded(ctx, TaskExtractInsights)
			}
		}
	}
	s.failed(ctx, TaskExtractInsights, err)
	return fallbackInsights(), OutcomeFallback
}

type ComplianceInput struct {
	ProjectID string
	Proposal  *models.Proposal
	Analysis  *models.RFPAnalysis
}

func (s *Service) CheckCompliance(ctx context.Context, in ComplianceInput) ([]models.ComplianceCheck, Outcome) {
	err := s.precondition(in.Proposal != nil && in.Analysis != nil)
	if err == nil {
		var text string
		text, err = s.complete(ctx, TaskComplianceCheck, systemComplianceCheck, complianceMessage(in.Analysis, in.Proposal), 0.2)
		if err == nil {
			var checks []models.ComplianceCheck
			checks, err = decodeList[models.ComplianceCheck](text, "checks", s.val.Struct)
			if err == nil {
				return checks, s.succeeded(ctx, TaskComplianceCheck)
			}
		}
	}
	s.failed(ctx, TaskComplianceCheck, err)
	return fallbackChecks(in.Proposal), OutcomeFallback
}

func (s *Service) precondition(met bool) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	if !met {
		return ErrMissingInput
	}
	return nil
}

func (s *Service) complete(ctx context.Context, task, system, user string, temperature float64) (string, error) {
	start := time.Now()
	text, err := s.completer.Complete(ctx, []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}, CompletionOptions{Temperature: Temperature(temperature)})
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordAICompletion(task, status, time.Since(start))
	return text, err
}

// augment prefixes retrieved corpus excerpts when a corpus is named and
// retrieval is available. Retrieval problems never fail the task.
func (s *Service) augment(ctx context.Context, task, corpusName, query string) string {
	if s.retriever == nil || strings.TrimSpace(corpusName) == "" {
		return query
	}
	contextText, err := s.retriever.RelevantContext(ctx, corpusName, query, retrievalMaxChunks, retrievalMinScore)
	if err != nil {
		s.log.WarnContext(ctx, "ai "+task+": retrieval failed", slog.String("error", err.Error()))
		return query
	}
	if contextText == "" {
		return query
	}
	return withRetrievedContext(contextText, query)
}

func (s *Service) succeeded(ctx context.Context, task string) Outcome {
	metrics.IncrementAITask(task, metrics.OutcomeAI)
	s.log.InfoContext(ctx, "ai "+task+": ok")
	return OutcomeAI
}

func (s *Service) failed(ctx context.Context, task string, err error) {
	metrics.IncrementAITask(task, metrics.OutcomeFallback)
	attrs := []any{}
	if err != nil {
		attrs = append(attrs, slog.String("reason", err.Error()))
	}
	switch {
	case err == nil, errors.Is(err, ErrNotConfigured), errors.Is(err, ErrMissingInput):
		s.log.InfoContext(ctx, "ai "+task+": fallback", attrs...)
	default:
		s.log.WarnContext(ctx, "ai "+task+": fallback", attrs...)
	}
}

func decodeObject[T any](text string, validate func(interface{}) error) (T, error) {
	var out T
	raw, ok := ExtractJSON(text)
	if !ok {
		return out, ErrInvalidOutput
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if err := validate(&out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return out, nil
}

func decodeList[T any](text, key string, validate func(interface{}) error) ([]T, error) {
	list, ok := extractList(text, key)
	if !ok {
		return nil, fmt.Errorf("%w: no %s list", ErrInvalidOutput, key)
	}
	var out []T
	if err := json.Unmarshal(list, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty %s list", ErrInvalidOutput, key)
	}
	for i := range out {
		if err := validate(&out[i]); err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrInvalidOutput, key, i, err)
		}
	}
	return out, nil
}

func validateInsights(v interface{}) error {
	result, ok := v.(*models.MeetingInsights)
	if !ok {
		return errors.New("unexpected type")
	}
	if len(result.Insights) == 0 && len(result.ActionItems) == 0 {
		return errors.New("neither insights nor actionItems present")
	}
	return nil
}

func normalizeAnalysis(a *models.RFPAnalysis) {
	if a.Requirements == nil {
		a.Requirements = []string{}
	}
	if a.Deadlines == nil {
		a.Deadlines = []string{}
	}
	if a.BudgetHints == nil {
		a.BudgetHints = []string{}
	}
	if a.Gaps == nil {
		a.Gaps = []string{}
	}
	if a.RecommendedResources == nil {
		a.RecommendedResources = []models.ResourceRecommendation{}
	}
}
