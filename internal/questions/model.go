package questions

import "salesagent-backend/internal/models"

type NewQuestion struct {
	Persona   string `json:"persona" validate:"required,oneof=sales technical project_management customer"`
	Question  string `json:"question" validate:"required"`
	Reasoning string `json:"reasoning"`
	Priority  string `json:"priority" validate:"required,oneof=high medium low"`
}

type AppendRequest struct {
	Questions []NewQuestion `json:"questions" validate:"required,min=1,dive"`
}

// PatchRequest edits a single question. A non-nil Answer answers the
// question; an empty one reopens it.
type PatchRequest struct {
	Question  *string `json:"question" validate:"omitempty,min=1"`
	Reasoning *string `json:"reasoning"`
	Priority  *string `json:"priority" validate:"omitempty,oneof=high medium low"`
	Answer    *string `json:"answer"`
}

type AnswerInput struct {
	ID     string `json:"id" validate:"required"`
	Answer string `json:"answer"`
}

type AnswersRequest struct {
	Answers []AnswerInput `json:"answers" validate:"required,min=1,dive"`
}

type AnswersResult struct {
	Updated []models.Question `json:"updated"`
	Unknown []string          `json:"unknown"`
}

type ListFilter struct {
	Persona string
	Status  string
}
