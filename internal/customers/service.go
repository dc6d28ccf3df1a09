package customers

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"salesagent-backend/internal/store"
)

var ErrNotFound = errors.New("customer not found")

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

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Customer, error) {
	now := time.Now().In(s.location)
	item := Customer{
		ID:        primitive.NewObjectID().Hex(),
		CreatedAt: now,
	}
	apply(&item, req, now)
	if err := s.repo.Create(ctx, item); err != nil {
		return Customer{}, err
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	item, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if errors.Is(err, store.ErrNotFound) {
		return Customer{}, ErrNotFound
	}
	return item, err
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Customer, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	apply(&item, req, time.Now().In(s.location))
	if err := s.repo.Replace(ctx, item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, err
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

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Customer, int64, error) {
	filter.Industry = strings.TrimSpace(filter.Industry)
	filter.Query = strings.TrimSpace(filter.Query)
	return s.repo.List(ctx, filter, limit, offset)
}

// RecordProposal adds or refreshes the customer's entry for a project's
// proposal.
func (s *Service) RecordProposal(ctx context.Context, customerID string, entry ProposalEntry) (Customer, error) {
	item, err := s.Get(ctx, customerID)
	if err != nil {
		return Customer{}, err
	}
	replaced := false
	for i := range item.Proposals {
		if item.Proposals[i].ProjectID == entry.ProjectID {
			entry.ID = item.Proposals[i].ID
			item.Proposals[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		if entry.ID == "" {
			entry.ID = primitive.NewObjectID().Hex()
		}
		item.Proposals = append(item.Proposals, entry)
	}
	item.UpdatedAt = time.Now().In(s.location)
	if err := s.repo.Replace(ctx, item); err != nil {
		return Customer{}, err
	}
	return item, nil
}

func apply(item *Customer, req UpsertRequest, now time.Time) {
	item.CompanyName = strings.TrimSpace(req.CompanyName)
	item.Industry = strings.TrimSpace(req.Industry)
	item.ContactPerson = strings.TrimSpace(req.ContactPerson)
	item.ContactEmail = strings.ToLower(strings.TrimSpace(req.ContactEmail))
	item.ContactPhone = strings.TrimSpace(req.ContactPhone)
	item.Address = req.Address
	item.Website = strings.TrimSpace(req.Website)
	item.Notes = strings.TrimSpace(req.Notes)
	item.Proposals = withIDs(req.Proposals, func(p *ProposalEntry) *string { return &p.ID })
	item.Appointments = withIDs(req.Appointments, func(a *Appointment) *string { return &a.ID })
	item.UpdatedAt = now
}

// withIDs copies items and assigns ids to entries that lack one. The result
// is never nil.
func withIDs[T any](items []T, id func(*T) *string) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := range out {
		if p := id(&out[i]); strings.TrimSpace(*p) == "" {
			*p = primitive.NewObjectID().Hex()
		}
	}
	return out
}
