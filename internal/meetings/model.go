package meetings

import (
	"time"

	"salesagent-backend/internal/models"
)

type PutRequest struct {
	Date        *time.Time          `json:"date"`
	Agenda      []models.AgendaItem `json:"agenda" validate:"dive"`
	Notes       string              `json:"notes"`
	Insights    []string            `json:"insights"`
	ActionItems []string            `json:"actionItems"`
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

type InsightsRequest struct {
	Notes string `json:"notes"`
}
