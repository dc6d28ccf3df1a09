package projects

import (
	"time"

	"salesagent-backend/internal/workflow"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

type Project struct {
	ID              string                      `bson:"_id,omitempty" json:"id"`
	Name            string                      `bson:"name" json:"name"`
	Customer        string                      `bson:"customer" json:"customer"`
	CustomerID      string                      `bson:"customerId,omitempty" json:"customerId,omitempty"`
	Description     string                      `bson:"description,omitempty" json:"description,omitempty"`
	Deadline        string                      `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Status          string                      `bson:"status" json:"status"`
	CurrentStep     workflow.Step               `bson:"currentStep" json:"currentStep"`
	CreatedBy       string                      `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	TeamMembers     []string                    `bson:"teamMembers" json:"teamMembers"`
	ProposalValue   *float64                    `bson:"proposalValue,omitempty" json:"proposalValue,omitempty"`
	StepCompletedAt map[workflow.Step]time.Time `bson:"stepCompletedAt,omitempty" json:"stepCompletedAt,omitempty"`
	CreatedAt       time.Time                   `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time                   `bson:"updatedAt" json:"updatedAt"`
}

// CreateRequest carries no stage or status; new projects always start at
// the first stage.
type CreateRequest struct {
	Name          string   `json:"name" validate:"required"`
	Customer      string   `json:"customer" validate:"required"`
	CustomerID    string   `json:"customerId"`
	Description   string   `json:"description"`
	Deadline      string   `json:"deadline" validate:"omitempty,date"`
	TeamMembers   []string `json:"teamMembers" validate:"omitempty,dive,required"`
	ProposalValue *float64 `json:"proposalValue" validate:"omitempty,gte=0"`
}

type UpdateRequest struct {
	Name          string   `json:"name" validate:"required"`
	Customer      string   `json:"customer" validate:"required"`
	CustomerID    string   `json:"customerId"`
	Description   string   `json:"description"`
	Deadline      string   `json:"deadline" validate:"omitempty,date"`
	Status        string   `json:"status" validate:"omitempty,oneof=active archived"`
	TeamMembers   []string `json:"teamMembers" validate:"omitempty,dive,required"`
	ProposalValue *float64 `json:"proposalValue" validate:"omitempty,gte=0"`
}

type JumpRequest struct {
	Step string `json:"step" validate:"required"`
}

type ListFilter struct {
	Status     string
	CustomerID string
	CreatedBy  string
}

type WorkflowView struct {
	ProjectID   string                `json:"projectId"`
	CurrentStep workflow.Step         `json:"currentStep"`
	Status      string                `json:"status"`
	Steps       []workflow.StepStatus `json:"steps"`
}
