package models

import "time"

const (
	PersonaSales             = "sales"
	PersonaTechnical         = "technical"
	PersonaProjectManagement = "project_management"
	PersonaCustomer          = "customer"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	QuestionPending  = "pending"
	QuestionAnswered = "answered"

	ChapterPending   = "pending"
	ChapterGenerated = "generated"
	ChapterEdited    = "edited"
	ChapterApproved  = "approved"

	GeneratedByAI   = "ai"
	GeneratedByUser = "user"

	ProposalDraft    = "draft"
	ProposalReview   = "review"
	ProposalApproved = "approved"
	ProposalSent     = "sent"

	CheckPass    = "pass"
	CheckWarning = "warning"
	CheckFail    = "fail"
)

type ResourceRecommendation struct {
	Type     string `bson:"type" json:"type" validate:"oneof=expert department tool template"`
	Name     string `bson:"name" json:"name" validate:"required"`
	Reason   string `bson:"reason" json:"reason"`
	Priority string `bson:"priority" json:"priority" validate:"oneof=high medium low"`
}

// RFPAnalysis is the structured reading of an RFP document. A project keeps
// only its latest analysis.
type RFPAnalysis struct {
	ID                   string                   `bson:"_id,omitempty" json:"id"`
	ProjectID            string                   `bson:"projectId" json:"projectId"`
	DocumentID           string                   `bson:"documentId" json:"documentId"`
	Summary              string                   `bson:"summary" json:"summary" validate:"required"`
	Requirements         []string                 `bson:"requirements" json:"requirements"`
	Deadlines            []string                 `bson:"deadlines" json:"deadlines"`
	BudgetHints          []string                 `bson:"budgetHints" json:"budgetHints"`
	Gaps                 []string                 `bson:"gaps" json:"gaps"`
	MatchScore           int                      `bson:"matchScore" json:"matchScore" validate:"gte=0,lte=100"`
	RecommendedResources []ResourceRecommendation `bson:"recommendedResources" json:"recommendedResources" validate:"dive"`
	CreatedAt            time.Time                `bson:"createdAt" json:"createdAt"`
}

type Question struct {
	ID         string     `bson:"_id,omitempty" json:"id"`
	ProjectID  string     `bson:"projectId" json:"projectId"`
	Persona    string     `bson:"persona" json:"persona" validate:"oneof=sales technical project_management customer"`
	Question   string     `bson:"question" json:"question" validate:"required"`
	Reasoning  string     `bson:"reasoning" json:"reasoning"`
	Priority   string     `bson:"priority" json:"priority" validate:"oneof=high medium low"`
	Answer     string     `bson:"answer,omitempty" json:"answer,omitempty"`
	Status     string     `bson:"status" json:"status"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
	AnsweredAt *time.Time `bson:"answeredAt,omitempty" json:"answeredAt,omitempty"`
}

type AgendaItem struct {
	ID          string `bson:"id" json:"id"`
	Title       string `bson:"title" json:"title" validate:"required"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Duration    int    `bson:"duration,omitempty" json:"duration,omitempty" validate:"gte=0"`
	Order       int    `bson:"order" json:"order"`
}

// Meeting is the customer meeting of a project: agenda, notes and what was
// learned from them. One per project.
type Meeting struct {
	ID          string       `bson:"_id,omitempty" json:"id"`
	ProjectID   string       `bson:"projectId" json:"projectId"`
	Date        *time.Time   `bson:"date,omitempty" json:"date,omitempty"`
	Agenda      []AgendaItem `bson:"agenda" json:"agenda"`
	Notes       string       `bson:"notes,omitempty" json:"notes,omitempty"`
	Insights    []string     `bson:"insights,omitempty" json:"insights,omitempty"`
	ActionItems []string     `bson:"actionItems,omitempty" json:"actionItems,omitempty"`
	CreatedAt   time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time    `bson:"updatedAt" json:"updatedAt"`
}

type MeetingInsights struct {
	Insights    []string `json:"insights"`
	ActionItems []string `json:"actionItems"`
}

type ProposalChapter struct {
	ID          string `bson:"id" json:"id"`
	Title       string `bson:"title" json:"title" validate:"required"`
	Content     string `bson:"content" json:"content"`
	Order       int    `bson:"order" json:"order"`
	Status      string `bson:"status" json:"status"`
	GeneratedBy string `bson:"generatedBy,omitempty" json:"generatedBy,omitempty"`
}

type Proposal struct {
	ID         string            `bson:"_id,omitempty" json:"id"`
	ProjectID  string            `bson:"projectId" json:"projectId"`
	TemplateID string            `bson:"templateId,omitempty" json:"templateId,omitempty"`
	Chapters   []ProposalChapter `bson:"chapters" json:"chapters"`
	Status     string            `bson:"status" json:"status"`
	Version    int               `bson:"version" json:"version"`
	CreatedAt  time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time         `bson:"updatedAt" json:"updatedAt"`
}

type ComplianceCheck struct {
	Item    string `json:"item" validate:"required"`
	Status  string `json:"status" validate:"oneof=pass warning fail"`
	Message string `json:"message"`
}

// AllChaptersFilled reports whether every chapter carries content. A nil
// proposal or a proposal without a chapter list does not count as filled.
func (p *Proposal) AllChaptersFilled() bool {
	if p == nil || p.Chapters == nil {
		return false
	}
	for _, ch := range p.Chapters {
		if ch.Content == "" {
			return false
		}
	}
	return true
}
