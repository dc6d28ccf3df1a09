package analyses

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"salesagent-backend/internal/models"
	"salesagent-backend/internal/projects"
	"salesagent-backend/internal/store"
)

var ErrNotFound = errors.New("analysis not found")

type ProjectFinder interface {
	Get(ctx context.Context, id string) (projects.Project, error)
}

type Service struct {
	repo     Repository
	projects ProjectFinder
	location *time.Location
}

func NewService(repo Repository, projects ProjectFinder, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		location: location,
	}
}

// Get returns projects.ErrNotFound for an unknown project and ErrNotFound
// when the project exists but has no analysis yet.
func (s *Service) Get(ctx context.Context, projectID string) (models.RFPAnalysis, error) {
	projectID = strings.TrimSpace(projectID)
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return models.RFPAnalysis{}, err
	}
	item, err := s.repo.GetByProject(ctx, projectID)
	if errors.Is(err, store.ErrNotFound) {
		return models.RFPAnalysis{}, ErrNotFound
	}
	return item, err
}

// Lookup is Get for callers that treat a missing analysis as absent.
func (s *Service) Lookup(ctx context.Context, projectID string) (*models.RFPAnalysis, error) {
	item, err := s.Get(ctx, projectID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Put stores an analysis as the project's latest one.
func (s *Service) Put(ctx context.Context, projectID string, item models.RFPAnalysis) (models.RFPAnalysis, error) {
	projectID = strings.TrimSpace(projectID)
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return models.RFPAnalysis{}, err
	}
	item.ProjectID = projectID
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().In(s.location)
	}
	for _, list := range []*[]string{&item.Requirements, &item.Deadlines, &item.BudgetHints, &item.Gaps} {
		if *list == nil {
			*list = []string{}
		}
	}
	if item.RecommendedResources == nil {
		item.RecommendedResources = []models.ResourceRecommendation{}
	}
	if err := s.repo.Put(ctx, item); err != nil {
		return models.RFPAnalysis{}, err
	}
	return item, nil
}

func (s *Service) DeleteByProject(ctx context.Context, projectID string) error {
	return s.repo.DeleteByProject(ctx, strings.TrimSpace(projectID))
}
