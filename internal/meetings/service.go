package meetings

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"salesagent-backend/internal/ai"
	"salesagent-backend/internal/models"
	"salesagent-backend/internal/projects"
	"salesagent-backend/internal/store"
)

var (
	ErrNotFound = errors.New("meeting not found")
	ErrNoNotes  = errors.New("meeting has no notes")
)

type ProjectFinder interface {
	Get(ctx context.Context, id string) (projects.Project, error)
}

type AnalysisLookup interface {
	Lookup(ctx context.Context, projectID string) (*models.RFPAnalysis, error)
}

type PendingQuestions interface {
	Pending(ctx context.Context, projectID string) ([]models.Question, error)
}

type Assistant interface {
	GenerateAgenda(ctx context.Context, in ai.AgendaInput) (models.Meeting, ai.Outcome)
	ExtractInsights(ctx context.Context, in ai.InsightsInput) (models.MeetingInsights, ai.Outcome)
}

type Service struct {
	repo      Repository
	projects  ProjectFinder
	analyses  AnalysisLookup
	questions PendingQuestions
	assistant Assistant
	location  *time.Location
}

func NewService(repo Repository, projects ProjectFinder, analyses AnalysisLookup, questions PendingQuestions, assistant Assistant, location *time.Location) *Service {
	return &Service{
		repo:      repo,
		projects:  projects,
		analyses:  analyses,
		questions: questions,
		assistant: assistant,
		location:  location,
	}
}

func (s *Service) Get(ctx context.Context, projectID string) (models.Meeting, error) {
	projectID = strings.TrimSpace(projectID)
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return models.Meeting{}, err
	}
	item, err := s.repo.GetByProject(ctx, projectID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Meeting{}, ErrNotFound
	}
	return item, err
}

// Lookup is Get for callers that treat a missing meeting as absent.
func (s *Service) Lookup(ctx context.Context, projectID string) (*models.Meeting, error) {
	item, err := s.Get(ctx, projectID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Put replaces the meeting. Agenda items are renumbered in the given order
// and receive ids where missing.
func (s *Service) Put(ctx context.Context, projectID string, req PutRequest) (models.Meeting, error) {
	return s.mutate(ctx, projectID, func(m *models.Meeting) error {
		m.Date = req.Date
		m.Agenda = normalizeAgenda(req.Agenda)
		m.Notes = strings.TrimSpace(req.Notes)
		m.Insights = cleanList(req.Insights)
		m.ActionItems = cleanList(req.ActionItems)
		return nil
	})
}

func (s *Service) PatchNotes(ctx context.Context, projectID, notes string) (models.Meeting, error) {
	return s.mutate(ctx, projectID, func(m *models.Meeting) error {
		m.Notes = strings.TrimSpace(notes)
		return nil
	})
}

func (s *Service) DeleteByProject(ctx context.Context, projectID string) error {
	return s.repo.DeleteByProject(ctx, strings.TrimSpace(projectID))
}

// GenerateAgenda drafts an agenda from the analysis and the questions still
// open, and stores it on the meeting. Notes and insights are kept.
func (s *Service) GenerateAgenda(ctx context.Context, projectID string) (models.Meeting, ai.Outcome, error) {
	projectID = strings.TrimSpace(projectID)
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return models.Meeting{}, "", err
	}
	analysis, err := s.analyses.Lookup(ctx, projectID)
	if err != nil {
		return models.Meeting{}, "", err
	}
	pending, err := s.questions.Pending(ctx, projectID)
	if err != nil {
		return models.Meeting{}, "", err
	}
	draft, outcome := s.assistant.GenerateAgenda(ctx, ai.AgendaInput{
		ProjectID:           projectID,
		Analysis:            analysis,
		UnansweredQuestions: pending,
	})
	item, err := s.mutate(ctx, projectID, func(m *models.Meeting) error {
		m.Agenda = normalizeAgenda(draft.Agenda)
		return nil
	})
	return item, outcome, err
}

// ExtractInsights runs the insight extraction on the given notes, or on the
// stored notes when none are given, and stores the result.
func (s *Service) ExtractInsights(ctx context.Context, projectID, notes string) (models.Meeting, ai.Outcome, error) {
	current, err := s.Lookup(ctx, projectID)
	if err != nil {
		return models.Meeting{}, "", err
	}
	notes = strings.TrimSpace(notes)
	if notes == "" && current != nil {
		notes = current.Notes
	}
	if notes == "" {
		return models.Meeting{}, "", ErrNoNotes
	}

	insights, outcome := s.assistant.ExtractInsights(ctx, ai.InsightsInput{ProjectID: strings.TrimSpace(projectID), Notes: notes})
	item, err := s.mutate(ctx, projectID, func(m *models.Meeting) error {
		m.Notes = notes
		m.Insights = cleanList(insights.Insights)
		m.ActionItems = cleanList(insights.ActionItems)
		return nil
	})
	return item, outcome, err
}

func (s *Service) mutate(ctx context.Context, projectID string, fn func(*models.Meeting) error) (models.Meeting, error) {
	projectID = strings.TrimSpace(projectID)
	item, err := s.Get(ctx, projectID)
	now := time.Now().In(s.location)
	switch {
	case errors.Is(err, ErrNotFound):
		item = models.Meeting{
			ID:        uuid.NewString(),
			ProjectID: projectID,
			Agenda:    []models.AgendaItem{},
			CreatedAt: now,
		}
	case err != nil:
		return models.Meeting{}, err
	}
	if err := fn(&item); err != nil {
		return models.Meeting{}, err
	}
	item.UpdatedAt = now
	if err := s.repo.Put(ctx, item); err != nil {
		return models.Meeting{}, err
	}
	return item, nil
}

func normalizeAgenda(in []models.AgendaItem) []models.AgendaItem {
	out := make([]models.AgendaItem, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
		out[i].Title = strings.TrimSpace(out[i].Title)
		out[i].Order = i + 1
	}
	return out
}

func cleanList(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
