package proposals

import "salesagent-backend/internal/models"

const pendingContent = "[Inhalt ausstehend]"

type ChapterInput struct {
	ID      string `json:"id"`
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
	Order   int    `json:"order"`
	Status  string `json:"status" validate:"omitempty,oneof=pending generated edited approved"`
}

type PutRequest struct {
	TemplateID string         `json:"templateId"`
	Status     string         `json:"status" validate:"omitempty,oneof=draft review approved"`
	Chapters   []ChapterInput `json:"chapters" validate:"required,dive"`
}

type ChapterPatch struct {
	Title   *string `json:"title" validate:"omitempty,min=1"`
	Content *string `json:"content"`
	Status  *string `json:"status" validate:"omitempty,oneof=pending generated edited approved"`
}

type StructureRequest struct {
	TemplateID string `json:"templateId"`
}

type SendRequest struct {
	CoverLetter string `json:"coverLetter"`
	Notify      bool   `json:"notify"`
	ProposalURL string `json:"proposalUrl" validate:"omitempty,url"`
}

type ComplianceResult struct {
	Checks []models.ComplianceCheck `json:"checks"`
}

// SendResult reports what the send action did. Email delivery happens
// afterwards, so EmailQueued only says that a mail was handed off.
type SendResult struct {
	Proposal    models.Proposal `json:"proposal"`
	CoverLetter string          `json:"coverLetter"`
	EmailQueued bool            `json:"emailQueued"`
}
