package proposals

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"salesagent-backend/internal/ai"
	"salesagent-backend/internal/customers"
	"salesagent-backend/internal/models"
	"salesagent-backend/internal/notifications"
	"salesagent-backend/internal/projects"
	"salesagent-backend/internal/store"
)

var (
	ErrNotFound        = errors.New("proposal not found")
	ErrChapterNotFound = errors.New("chapter not found")
	ErrAlreadySent     = errors.New("proposal already sent")
)

type ProjectStore interface {
	Get(ctx context.Context, id string) (projects.Project, error)
	MarkSent(ctx context.Context, id string) (projects.Project, error)
}

type AnalysisLookup interface {
	Lookup(ctx context.Context, projectID string) (*models.RFPAnalysis, error)
}

type MeetingLookup interface {
	Lookup(ctx context.Context, projectID string) (*models.Meeting, error)
}

type AnsweredQuestions interface {
	Answered(ctx context.Context, projectID string) ([]models.Question, error)
}

type CustomerBook interface {
	Get(ctx context.Context, id string) (customers.Customer, error)
	RecordProposal(ctx context.Context, customerID string, entry customers.ProposalEntry) (customers.Customer, error)
}

type Assistant interface {
	GenerateProposalStructure(ctx context.Context, in ai.StructureInput) (models.Proposal, ai.Outcome)
	GenerateChapterContent(ctx context.Context, in ai.ChapterContentInput) (string, ai.Outcome)
	GenerateCoverLetter(ctx context.Context, in ai.CoverLetterInput) (string, ai.Outcome)
	CheckCompliance(ctx context.Context, in ai.ComplianceInput) ([]models.ComplianceCheck, ai.Outcome)
}

type Notifier interface {
	SendProposal(ctx context.Context, mail notifications.ProposalMail) (string, error)
}

type Deps struct {
	Projects  ProjectStore
	Analyses  AnalysisLookup
	Meetings  MeetingLookup
	Questions AnsweredQuestions
	Customers CustomerBook
	Assistant Assistant
	// Notifier may be nil; proposals are then sent without email.
	Notifier Notifier
}

type Service struct {
	repo     Repository
	deps     Deps
	location *time.Location
}

func NewService(repo Repository, deps Deps, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		deps:     deps,
		location: location,
	}
}

func (s *Service) Get(ctx context.Context, projectID string) (models.Proposal, error) {
	projectID = strings.TrimSpace(projectID)
	if _, err := s.deps.Projects.Get(ctx, projectID); err != nil {
		return models.Proposal{}, err
	}
	return s.load(ctx, projectID)
}

// Put replaces the chapter list. Every save bumps the version.
func (s *Service) Put(ctx context.Context, projectID string, req PutRequest) (models.Proposal, error) {
	projectID = strings.TrimSpace(projectID)
	if _, err := s.deps.Projects.Get(ctx, projectID); err != nil {
		return models.Proposal{}, err
	}
	now := s.now()
	item, err := s.load(ctx, projectID)
	switch {
	case errors.Is(err, ErrNotFound):
		item = models.Proposal{
			ID:        uuid.NewString(),
			ProjectID: projectID,
			Status:    models.ProposalDraft,
			CreatedAt: now,
		}
	case err != nil:
		return models.Proposal{}, err
	}

	chapters := make([]models.ProposalChapter, 0, len(req.Chapters))
	for i, in := range req.Chapters {
		ch := models.ProposalChapter{
			ID:      strings.TrimSpace(in.ID),
			Title:   strings.TrimSpace(in.Title),
			Content: in.Content,
			Order:   in.Order,
			Status:  in.Status,
		}
		if ch.ID == "" {
			ch.ID = uuid.NewString()
		}
		if ch.Order == 0 {
			ch.Order = i + 1
		}
		if ch.Status == "" {
			ch.Status = models.ChapterPending
			if ch.Content != "" {
				ch.Status = models.ChapterEdited
			}
		}
		if prev, ok := findChapter(item.Chapters, ch.ID); ok {
			ch.GeneratedBy = prev.GeneratedBy
			if prev.Content != ch.Content {
				ch.GeneratedBy = models.GeneratedByUser
			}
		} else if ch.Content != "" {
			ch.GeneratedBy = models.GeneratedByUser
		}
		chapters = append(chapters, ch)
	}
	sort.SliceStable(chapters, func(i, j int) bool { return chapters[i].Order < chapters[j].Order })

	item.Chapters = chapters
	if req.TemplateID != "" {
		item.TemplateID = strings.TrimSpace(req.TemplateID)
	}
	if req.Status != "" {
		item.Status = req.Status
	}
	return s.save(ctx, item, now)
}

// GenerateStructure drafts a fresh chapter outline and stores it as the
// project's proposal. An existing proposal is replaced; its version is
// carried forward.
func (s *Service) GenerateStructure(ctx context.Context, projectID string, req StructureRequest) (models.Proposal, ai.Outcome, error) {
	projectID = strings.TrimSpace(projectID)
	analysis, meeting, answered, err := s.context(ctx, projectID)
	if err != nil {
		return models.Proposal{}, "", err
	}
	draft, outcome := s.deps.Assistant.GenerateProposalStructure(ctx, ai.StructureInput{
		ProjectID:         projectID,
		TemplateID:        strings.TrimSpace(req.TemplateID),
		Analysis:          analysis,
		Meeting:           meeting,
		AnsweredQuestions: answered,
	})

	now := s.now()
	draft.ProjectID = projectID
	draft.Status = models.ProposalDraft
	draft.CreatedAt = now
	draft.Version = 0
	if prev, err := s.load(ctx, projectID); err == nil {
		draft.Version = prev.Version
	} else if !errors.Is(err, ErrNotFound) {
		return models.Proposal{}, "", err
	}
	item, err := s.save(ctx, draft, now)
	return item, outcome, err
}

func (s *Service) PatchChapter(ctx context.Context, projectID, chapterID string, patch ChapterPatch) (models.Proposal, error) {
	return s.mutateChapter(ctx, projectID, chapterID, func(ch *models.ProposalChapter) {
		if patch.Title != nil {
			ch.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Content != nil {
			ch.Content = *patch.Content
			ch.Status = models.ChapterEdited
			ch.GeneratedBy = models.GeneratedByUser
		}
		if patch.Status != nil {
			ch.Status = *patch.Status
		}
	})
}

func (s *Service) DeleteByProject(ctx context.Context, projectID string) error {
	return s.repo.DeleteByProject(ctx, strings.TrimSpace(projectID))
}

// GenerateChapter fills one chapter from the project context.
func (s *Service) GenerateChapter(ctx context.Context, projectID, chapterID string) (models.Proposal, ai.Outcome, error) {
	projectID = strings.TrimSpace(projectID)
	analysis, meeting, answered, err := s.context(ctx, projectID)
	if err != nil {
		return models.Proposal{}, "", err
	}
	current, err := s.load(ctx, projectID)
	if err != nil {
		return models.Proposal{}, "", err
	}
	chapter, ok := findChapter(current.Chapters, strings.TrimSpace(chapterID))
	if !ok {
		return models.Proposal{}, "", ErrChapterNotFound
	}

	content, outcome := s.deps.Assistant.GenerateChapterContent(ctx, ai.ChapterContentInput{
		ProjectID:         projectID,
		ChapterID:         chapter.ID,
		ChapterTitle:      chapter.Title,
		Analysis:          analysis,
		Meeting:           meeting,
		AnsweredQuestions: answered,
	})
	item, err := s.mutateChapter(ctx, projectID, chapter.ID, func(ch *models.ProposalChapter) {
		ch.Content = content
		ch.Status = models.ChapterGenerated
		ch.GeneratedBy = models.GeneratedByAI
	})
	return item, outcome, err
}

func (s *Service) CheckCompliance(ctx context.Context, projectID string) (ComplianceResult, ai.Outcome, error) {
	projectID = strings.TrimSpace(projectID)
	analysis, _, _, err := s.context(ctx, projectID)
	if err != nil {
		return ComplianceResult{}, "", err
	}
	proposal, err := s.load(ctx, projectID)
	if err != nil {
		return ComplianceResult{}, "", err
	}
	checks, outcome := s.deps.Assistant.CheckCompliance(ctx, ai.ComplianceInput{
		ProjectID: projectID,
		Proposal:  &proposal,
		Analysis:  analysis,
	})
	return ComplianceResult{Checks: checks}, outcome, nil
}

func (s *Service) Export(ctx context.Context, projectID string) (string, error) {
	item, err := s.Get(ctx, projectID)
	if err != nil {
		return "", err
	}
	return ExportText(item), nil
}

// Send finalises the proposal: it is marked sent, the project moves to the
// terminal stage and completes, and the linked customer records the
// proposal. The returned mail is non-nil when a cover letter should go out;
// delivery is left to the caller.
func (s *Service) Send(ctx context.Context, projectID string, req SendRequest) (SendResult, *notifications.ProposalMail, error) {
	projectID = strings.TrimSpace(projectID)
	project, err := s.deps.Projects.Get(ctx, projectID)
	if err != nil {
		return SendResult{}, nil, err
	}
	item, err := s.load(ctx, projectID)
	if err != nil {
		return SendResult{}, nil, err
	}
	if item.Status == models.ProposalSent {
		return SendResult{}, nil, ErrAlreadySent
	}

	letter := strings.TrimSpace(req.CoverLetter)
	if letter == "" {
		analysis, err := s.deps.Analyses.Lookup(ctx, projectID)
		if err != nil {
			return SendResult{}, nil, err
		}
		letter, _ = s.deps.Assistant.GenerateCoverLetter(ctx, ai.CoverLetterInput{
			ProjectID: projectID,
			Proposal:  &item,
			Analysis:  analysis,
		})
	}

	now := s.now()
	item.Status = models.ProposalSent
	item, err = s.save(ctx, item, now)
	if err != nil {
		return SendResult{}, nil, err
	}
	if project, err = s.deps.Projects.MarkSent(ctx, projectID); err != nil {
		return SendResult{}, nil, fmt.Errorf("mark project sent: %w", err)
	}

	result := SendResult{Proposal: item, CoverLetter: letter}
	if project.CustomerID == "" {
		return result, nil, nil
	}

	sentAt := now
	customer, err := s.deps.Customers.RecordProposal(ctx, project.CustomerID, customers.ProposalEntry{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Status:      "sent",
		SentAt:      &sentAt,
		Value:       project.ProposalValue,
	})
	if errors.Is(err, customers.ErrNotFound) {
		return result, nil, nil
	}
	if err != nil {
		return SendResult{}, nil, fmt.Errorf("record customer proposal: %w", err)
	}

	if !req.Notify || s.deps.Notifier == nil || customer.ContactEmail == "" {
		return result, nil, nil
	}
	result.EmailQueued = true
	return result, &notifications.ProposalMail{
		ToEmail:     customer.ContactEmail,
		ToName:      customer.ContactPerson,
		CompanyName: customer.CompanyName,
		ProjectName: project.Name,
		CoverLetter: letter,
		ProposalURL: req.ProposalURL,
	}, nil
}

func (s *Service) Notify(ctx context.Context, mail notifications.ProposalMail) (string, error) {
	if s.deps.Notifier == nil {
		return "", nil
	}
	return s.deps.Notifier.SendProposal(ctx, mail)
}

func (s *Service) context(ctx context.Context, projectID string) (*models.RFPAnalysis, *models.Meeting, []models.Question, error) {
	if _, err := s.deps.Projects.Get(ctx, projectID); err != nil {
		return nil, nil, nil, err
	}
	analysis, err := s.deps.Analyses.Lookup(ctx, projectID)
	if err != nil {
		return nil, nil, nil, err
	}
	meeting, err := s.deps.Meetings.Lookup(ctx, projectID)
	if err != nil {
		return nil, nil, nil, err
	}
	answered, err := s.deps.Questions.Answered(ctx, projectID)
	if err != nil {
		return nil, nil, nil, err
	}
	return analysis, meeting, answered, nil
}

func (s *Service) mutateChapter(ctx context.Context, projectID, chapterID string, fn func(*models.ProposalChapter)) (models.Proposal, error) {
	item, err := s.Get(ctx, projectID)
	if err != nil {
		return models.Proposal{}, err
	}
	chapterID = strings.TrimSpace(chapterID)
	for i := range item.Chapters {
		if item.Chapters[i].ID == chapterID {
			fn(&item.Chapters[i])
			return s.save(ctx, item, s.now())
		}
	}
	return models.Proposal{}, ErrChapterNotFound
}

func (s *Service) load(ctx context.Context, projectID string) (models.Proposal, error) {
	item, err := s.repo.GetByProject(ctx, projectID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Proposal{}, ErrNotFound
	}
	return item, err
}

func (s *Service) save(ctx context.Context, item models.Proposal, now time.Time) (models.Proposal, error) {
	item.Version++
	item.UpdatedAt = now
	if item.Chapters == nil {
		item.Chapters = []models.ProposalChapter{}
	}
	if err := s.repo.Put(ctx, item); err != nil {
		return models.Proposal{}, err
	}
	return item, nil
}

func (s *Service) now() time.Time {
	return time.Now().In(s.location)
}

func findChapter(chapters []models.ProposalChapter, id string) (models.ProposalChapter, bool) {
	for _, ch := range chapters {
		if ch.ID == id {
			return ch, true
		}
	}
	return models.ProposalChapter{}, false
}
