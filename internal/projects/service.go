package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"salesagent-backend/internal/store"
	"salesagent-backend/internal/workflow"
)

var (
	ErrNotFound    = errors.New("project not found")
	ErrInvalidStep = errors.New("invalid workflow step")
	// ErrInvalidStatus is returned when an edit tries to set a status that
	// only the workflow may assign.
	ErrInvalidStatus = errors.New("invalid project status")
)

// Dependent owns records keyed by project id and drops them when the
// project is deleted.
type Dependent interface {
	DeleteByProject(ctx context.Context, projectID string) error
}

type Service struct {
	repo       Repository
	location   *time.Location
	dependents []Dependent
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		location: location,
	}
}

func (s *Service) Create(ctx context.Context, req CreateRequest, createdBy string) (Project, error) {
	now := time.Now().In(s.location)
	item := Project{
		ID:              primitive.NewObjectID().Hex(),
		Name:            strings.TrimSpace(req.Name),
		Customer:        strings.TrimSpace(req.Customer),
		CustomerID:      strings.TrimSpace(req.CustomerID),
		Description:     strings.TrimSpace(req.Description),
		Deadline:        strings.TrimSpace(req.Deadline),
		Status:          StatusActive,
		CurrentStep:     workflow.First(),
		CreatedBy:       strings.TrimSpace(createdBy),
		TeamMembers:     cleanMembers(req.TeamMembers),
		ProposalValue:   req.ProposalValue,
		StepCompletedAt: map[workflow.Step]time.Time{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return Project{}, err
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, id string) (Project, error) {
	item, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if errors.Is(err, store.ErrNotFound) {
		return Project{}, ErrNotFound
	}
	return item, err
}

// Update edits the descriptive fields. The stage is left alone, and
// completed is only reachable by finishing the last stage.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Project, error) {
	if req.Status != "" && req.Status != StatusActive && req.Status != StatusArchived {
		return Project{}, ErrInvalidStatus
	}
	return s.mutate(ctx, id, func(p *Project, now time.Time) error {
		p.Name = strings.TrimSpace(req.Name)
		p.Customer = strings.TrimSpace(req.Customer)
		p.CustomerID = strings.TrimSpace(req.CustomerID)
		p.Description = strings.TrimSpace(req.Description)
		p.Deadline = strings.TrimSpace(req.Deadline)
		p.TeamMembers = cleanMembers(req.TeamMembers)
		p.ProposalValue = req.ProposalValue
		if req.Status != "" {
			p.Status = req.Status
		}
		return nil
	})
}

// OnDelete registers stores whose project records go away with the project.
func (s *Service) OnDelete(deps ...Dependent) {
	s.dependents = append(s.dependents, deps...)
}

// Delete removes the dependent records first, so a failed cascade leaves
// the project in place and the call can be retried.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	for _, dep := range s.dependents {
		if err := dep.DeleteByProject(ctx, id); err != nil {
			return fmt.Errorf("delete project data: %w", err)
		}
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Project, int64, error) {
	filter.Status = strings.TrimSpace(filter.Status)
	filter.CustomerID = strings.TrimSpace(filter.CustomerID)
	filter.CreatedBy = strings.TrimSpace(filter.CreatedBy)
	return s.repo.List(ctx, filter, limit, offset)
}

// Advance completes the current stage. Completing the terminal stage marks
// the project completed.
func (s *Service) Advance(ctx context.Context, id string) (Project, error) {
	return s.mutate(ctx, id, func(p *Project, now time.Time) error {
		next, err := workflow.Advance(stateOf(*p), now)
		if err != nil {
			return ErrInvalidStep
		}
		applyState(p, next)
		return nil
	})
}

// Jump moves the project to any stage without prerequisite checks.
func (s *Service) Jump(ctx context.Context, id, step string) (Project, error) {
	target, err := workflow.Parse(strings.TrimSpace(step))
	if err != nil {
		return Project{}, ErrInvalidStep
	}
	return s.mutate(ctx, id, func(p *Project, now time.Time) error {
		next, err := workflow.Jump(stateOf(*p), target)
		if err != nil {
			return ErrInvalidStep
		}
		applyState(p, next)
		return nil
	})
}

// MarkSent records that the proposal went out: the project sits on the
// terminal stage with that stage completed.
func (s *Service) MarkSent(ctx context.Context, id string) (Project, error) {
	return s.mutate(ctx, id, func(p *Project, now time.Time) error {
		state, err := workflow.Jump(stateOf(*p), workflow.Last())
		if err != nil {
			return ErrInvalidStep
		}
		state, err = workflow.Advance(state, now)
		if err != nil {
			return ErrInvalidStep
		}
		applyState(p, state)
		return nil
	})
}

func (s *Service) Workflow(ctx context.Context, id string) (WorkflowView, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return WorkflowView{}, err
	}
	return viewOf(p), nil
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*Project, time.Time) error) (Project, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return Project{}, err
	}
	now := time.Now().In(s.location)
	if err := fn(&item, now); err != nil {
		return Project{}, err
	}
	item.UpdatedAt = now
	if err := s.repo.Replace(ctx, item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}
	return item, nil
}

func stateOf(p Project) workflow.State {
	return workflow.State{
		Current:     p.CurrentStep,
		Completed:   p.Status == StatusCompleted,
		CompletedAt: p.StepCompletedAt,
	}
}

func applyState(p *Project, state workflow.State) {
	p.CurrentStep = state.Current
	p.StepCompletedAt = state.CompletedAt
	if state.Completed {
		p.Status = StatusCompleted
	}
}

func viewOf(p Project) WorkflowView {
	return WorkflowView{
		ProjectID:   p.ID,
		CurrentStep: p.CurrentStep,
		Status:      p.Status,
		Steps:       workflow.Statuses(stateOf(p)),
	}
}

func cleanMembers(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, m := range in {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
