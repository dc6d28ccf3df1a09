package questions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"salesagent-backend/internal/ai"
	"salesagent-backend/internal/models"
	"salesagent-backend/internal/projects"
	"salesagent-backend/internal/store"
)

var ErrNotFound = errors.New("question not found")

type ProjectFinder interface {
	Get(ctx context.Context, id string) (projects.Project, error)
}

type AnalysisLookup interface {
	Lookup(ctx context.Context, projectID string) (*models.RFPAnalysis, error)
}

type Generator interface {
	GenerateQuestions(ctx context.Context, in ai.QuestionsInput) ([]models.Question, ai.Outcome)
}

type Service struct {
	repo      Repository
	projects  ProjectFinder
	analyses  AnalysisLookup
	generator Generator
	location  *time.Location
}

func NewService(repo Repository, projects ProjectFinder, analyses AnalysisLookup, generator Generator, location *time.Location) *Service {
	return &Service{
		repo:      repo,
		projects:  projects,
		analyses:  analyses,
		generator: generator,
		location:  location,
	}
}

func (s *Service) List(ctx context.Context, projectID string, filter ListFilter) ([]models.Question, error) {
	projectID = strings.TrimSpace(projectID)
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if filter.Persona == "" && filter.Status == "" {
		return items, nil
	}
	out := make([]models.Question, 0, len(items))
	for _, q := range items {
		if filter.Persona != "" && q.Persona != filter.Persona {
			continue
		}
		if filter.Status != "" && q.Status != filter.Status {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

// Answered returns the answered questions of a project, in list order.
func (s *Service) Answered(ctx context.Context, projectID string) ([]models.Question, error) {
	return s.List(ctx, projectID, ListFilter{Status: models.QuestionAnswered})
}

func (s *Service) Pending(ctx context.Context, projectID string) ([]models.Question, error) {
	return s.List(ctx, projectID, ListFilter{Status: models.QuestionPending})
}

// Append adds a batch of new, unanswered questions to the project.
func (s *Service) Append(ctx context.Context, projectID string, batch []NewQuestion) ([]models.Question, error) {
	projectID = strings.TrimSpace(projectID)
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	now := time.Now().In(s.location)
	items := make([]models.Question, 0, len(batch))
	for _, nq := range batch {
		items = append(items, models.Question{
			ID:        uuid.NewString(),
			ProjectID: projectID,
			Persona:   nq.Persona,
			Question:  strings.TrimSpace(nq.Question),
			Reasoning: strings.TrimSpace(nq.Reasoning),
			Priority:  nq.Priority,
			Status:    models.QuestionPending,
			CreatedAt: now,
		})
	}
	if err := s.repo.Create(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Generate asks the AI gateway for questions on the stored analysis and
// appends them. Without an analysis the gateway answers with its canned set.
func (s *Service) Generate(ctx context.Context, projectID, corpusName string) ([]models.Question, ai.Outcome, error) {
	projectID = strings.TrimSpace(projectID)
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, "", err
	}
	analysis, err := s.analyses.Lookup(ctx, projectID)
	if err != nil {
		return nil, "", err
	}
	generated, outcome := s.generator.GenerateQuestions(ctx, ai.QuestionsInput{
		ProjectID:  projectID,
		Analysis:   analysis,
		CorpusName: corpusName,
	})
	for i := range generated {
		generated[i].ProjectID = projectID
	}
	if err := s.repo.Create(ctx, generated); err != nil {
		return nil, outcome, err
	}
	return generated, outcome, nil
}

func (s *Service) Patch(ctx context.Context, projectID, questionID string, req PatchRequest) (models.Question, error) {
	item, err := s.get(ctx, projectID, questionID)
	if err != nil {
		return models.Question{}, err
	}
	if req.Question != nil {
		item.Question = strings.TrimSpace(*req.Question)
	}
	if req.Reasoning != nil {
		item.Reasoning = strings.TrimSpace(*req.Reasoning)
	}
	if req.Priority != nil {
		item.Priority = *req.Priority
	}
	if req.Answer != nil {
		s.answer(&item, *req.Answer)
	}
	if err := s.repo.Replace(ctx, item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Question{}, ErrNotFound
		}
		return models.Question{}, err
	}
	return item, nil
}

// SubmitAnswers applies a bulk set of customer answers. Ids that do not
// belong to the project are reported back instead of failing the batch.
func (s *Service) SubmitAnswers(ctx context.Context, projectID string, answers []AnswerInput) (AnswersResult, error) {
	existing, err := s.List(ctx, projectID, ListFilter{})
	if err != nil {
		return AnswersResult{}, err
	}
	byID := make(map[string]models.Question, len(existing))
	for _, q := range existing {
		byID[q.ID] = q
	}

	result := AnswersResult{Updated: []models.Question{}, Unknown: []string{}}
	for _, in := range answers {
		item, ok := byID[strings.TrimSpace(in.ID)]
		if !ok {
			result.Unknown = append(result.Unknown, in.ID)
			continue
		}
		s.answer(&item, in.Answer)
		if err := s.repo.Replace(ctx, item); err != nil {
			return AnswersResult{}, err
		}
		byID[item.ID] = item
		result.Updated = append(result.Updated, item)
	}
	return result, nil
}

// DeleteByProject drops every question of a deleted project.
func (s *Service) DeleteByProject(ctx context.Context, projectID string) error {
	_, err := s.repo.DeleteByProject(ctx, strings.TrimSpace(projectID))
	return err
}

func (s *Service) get(ctx context.Context, projectID, questionID string) (models.Question, error) {
	projectID = strings.TrimSpace(projectID)
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return models.Question{}, err
	}
	item, err := s.repo.Get(ctx, strings.TrimSpace(questionID))
	if errors.Is(err, store.ErrNotFound) || (err == nil && item.ProjectID != projectID) {
		return models.Question{}, ErrNotFound
	}
	return item, err
}

func (s *Service) answer(item *models.Question, answer string) {
	answer = strings.TrimSpace(answer)
	item.Answer = answer
	if answer == "" {
		item.Status = models.QuestionPending
		item.AnsweredAt = nil
		return
	}
	now := time.Now().In(s.location)
	item.Status = models.QuestionAnswered
	item.AnsweredAt = &now
}
