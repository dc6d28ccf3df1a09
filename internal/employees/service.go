package employees

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"salesagent-backend/internal/store"
)

var ErrNotFound = errors.New("employee not found")

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

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Employee, error) {
	now := time.Now().In(s.location)
	item := Employee{
		ID:        primitive.NewObjectID().Hex(),
		CreatedAt: now,
	}
	apply(&item, req, now)
	if err := s.repo.Create(ctx, item); err != nil {
		return Employee{}, err
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	item, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if errors.Is(err, store.ErrNotFound) {
		return Employee{}, ErrNotFound
	}
	return item, err
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Employee, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	apply(&item, req, time.Now().In(s.location))
	if err := s.repo.Replace(ctx, item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Employee{}, ErrNotFound
		}
		return Employee{}, err
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

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Employee, int64, error) {
	filter.Department = strings.TrimSpace(filter.Department)
	filter.Availability = strings.TrimSpace(filter.Availability)
	filter.Skill = strings.TrimSpace(filter.Skill)
	return s.repo.List(ctx, filter, limit, offset)
}

func apply(item *Employee, req UpsertRequest, now time.Time) {
	item.FirstName = strings.TrimSpace(req.FirstName)
	item.LastName = strings.TrimSpace(req.LastName)
	item.Email = strings.ToLower(strings.TrimSpace(req.Email))
	item.Phone = strings.TrimSpace(req.Phone)
	item.Position = strings.TrimSpace(req.Position)
	item.Department = strings.TrimSpace(req.Department)
	item.AvatarURL = strings.TrimSpace(req.AvatarURL)
	item.Availability = req.Availability
	if item.Availability == "" {
		item.Availability = AvailabilityAvailable
	}

	item.Skills = make([]Skill, len(req.Skills))
	copy(item.Skills, req.Skills)
	for i := range item.Skills {
		if item.Skills[i].ID == "" {
			item.Skills[i].ID = primitive.NewObjectID().Hex()
		}
	}
	item.Certifications = make([]Certification, len(req.Certifications))
	copy(item.Certifications, req.Certifications)
	for i := range item.Certifications {
		if item.Certifications[i].ID == "" {
			item.Certifications[i].ID = primitive.NewObjectID().Hex()
		}
	}
	item.ProjectExperience = make([]ProjectExperience, len(req.ProjectExperience))
	copy(item.ProjectExperience, req.ProjectExperience)
	for i := range item.ProjectExperience {
		if item.ProjectExperience[i].ID == "" {
			item.ProjectExperience[i].ID = primitive.NewObjectID().Hex()
		}
	}
	item.UpdatedAt = now
}
