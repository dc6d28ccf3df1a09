package references

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"salesagent-backend/internal/store"
)

var ErrNotFound = errors.New("reference not found")

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		location: location,
	}
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Reference, error) {
	now := time.Now().In(s.location)
	item := Reference{
		ID:        primitive.NewObjectID().Hex(),
		CreatedAt: now,
	}
	apply(&item, req, now)
	if err := s.repo.Create(ctx, item); err != nil {
		return Reference{}, err
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, id string) (Reference, error) {
	item, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if errors.Is(err, store.ErrNotFound) {
		return Reference{}, ErrNotFound
	}
	return item, err
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Reference, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return Reference{}, err
	}
	apply(&item, req, time.Now().In(s.location))
	if err := s.repo.Replace(ctx, item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Reference{}, ErrNotFound
		}
		return Reference{}, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Reference, int64, error) {
	filter.CustomerID = strings.TrimSpace(filter.CustomerID)
	filter.Industry = strings.TrimSpace(filter.Industry)
	return s.repo.List(ctx, filter, limit, offset)
}

func apply(item *Reference, req UpsertRequest, now time.Time) {
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	technologies := make([]string, 0, len(req.Technologies))
	for _, t := range req.Technologies {
		if t = strings.TrimSpace(t); t != "" {
			technologies = append(technologies, t)
		}
	}

	item.CustomerID = strings.TrimSpace(req.CustomerID)
	item.CustomerName = strings.TrimSpace(req.CustomerName)
	item.ProjectTitle = strings.TrimSpace(req.ProjectTitle)
	item.Description = strings.TrimSpace(req.Description)
	item.Industry = strings.TrimSpace(req.Industry)
	item.Technologies = technologies
	item.ProjectDuration = strings.TrimSpace(req.ProjectDuration)
	item.ProjectValue = req.ProjectValue
	item.CompletionDate = strings.TrimSpace(req.CompletionDate)
	item.ContactPerson = strings.TrimSpace(req.ContactPerson)
	item.Testimonial = strings.TrimSpace(req.Testimonial)
	item.IsPublic = isPublic
	item.UpdatedAt = now
}
