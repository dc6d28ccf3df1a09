// Package workflow models the fixed five-stage sales pipeline a project
// moves through. Everything here is pure; callers persist the results.
package workflow

import (
	"errors"
	"time"
)

type Step string

const (
	RFPReceived         Step = "rfp_received"
	QuestionsFormulated Step = "questions_formulated"
	CustomerMeeting     Step = "customer_meeting"
	ProposalCreated     Step = "proposal_created"
	ProposalSent        Step = "proposal_sent"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var ErrUnknownStep = errors.New("unknown workflow step")

type StepInfo struct {
	ID          Step   `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Steps is the pipeline in order. The order never changes at runtime.
var Steps = []StepInfo{
	{ID: RFPReceived, Label: "RFP Erhalten", Description: "Upload und Analyse des RFP-Dokuments"},
	{ID: QuestionsFormulated, Label: "Fragen Gestellt", Description: "Generierung und Klärung offener Punkte mit dem Kunden"},
	{ID: CustomerMeeting, Label: "Kundentermin Gehalten", Description: "Vorbereitung und Nachbereitung eines Meetings"},
	{ID: ProposalCreated, Label: "Angebot Erstellt", Description: "Strukturierung und Schreiben des Angebots"},
	{ID: ProposalSent, Label: "Angebot Angeschickt", Description: "Finalisierung und Export"},
}

// First is the stage every new project starts in.
func First() Step {
	return Steps[0].ID
}

// Last is the terminal stage.
func Last() Step {
	return Steps[len(Steps)-1].ID
}

func IndexOf(step Step) int {
	for i, s := range Steps {
		if s.ID == step {
			return i
		}
	}
	return -1
}

func IsStep(step Step) bool {
	return IndexOf(step) >= 0
}

func Parse(raw string) (Step, error) {
	step := Step(raw)
	if !IsStep(step) {
		return "", ErrUnknownStep
	}
	return step, nil
}

// State is the part of a project the workflow reads and writes.
type State struct {
	Current     Step
	Completed   bool
	CompletedAt map[Step]time.Time
}

// Advance completes the current stage. Before the terminal stage it moves
// to the next one; on the terminal stage it marks the whole project
// completed and leaves Current in place.
func Advance(state State, now time.Time) (State, error) {
	idx := IndexOf(state.Current)
	if idx < 0 {
		return state, ErrUnknownStep
	}

	next := State{
		Current:     state.Current,
		Completed:   state.Completed,
		CompletedAt: copyTimes(state.CompletedAt),
	}
	next.CompletedAt[state.Current] = now

	if idx < len(Steps)-1 {
		next.Current = Steps[idx+1].ID
		return next, nil
	}
	next.Completed = true
	return next, nil
}

// Jump moves to any stage, forwards or backwards, without checking that
// earlier stages were completed.
func Jump(state State, target Step) (State, error) {
	if !IsStep(target) {
		return state, ErrUnknownStep
	}
	next := State{
		Current:     target,
		Completed:   state.Completed,
		CompletedAt: copyTimes(state.CompletedAt),
	}
	return next, nil
}

type StepStatus struct {
	Step        Step       `json:"step"`
	Label       string     `json:"label"`
	Status      Status     `json:"status"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Statuses derives the per-stage list from the current position.
// Stages before it are completed, the current one is in progress and later
// ones are pending. A completed project also reports its terminal stage as
// completed.
func Statuses(state State) []StepStatus {
	cur := IndexOf(state.Current)
	out := make([]StepStatus, 0, len(Steps))
	for i, s := range Steps {
		st := StepStatus{Step: s.ID, Label: s.Label}
		switch {
		case i < cur:
			st.Status = StatusCompleted
		case i == cur:
			st.Status = StatusInProgress
			if state.Completed && i == len(Steps)-1 {
				st.Status = StatusCompleted
			}
		default:
			st.Status = StatusPending
		}
		if ts, ok := state.CompletedAt[s.ID]; ok && st.Status == StatusCompleted {
			t := ts
			st.CompletedAt = &t
		}
		out = append(out, st)
	}
	return out
}

func copyTimes(in map[Step]time.Time) map[Step]time.Time {
	out := make(map[Step]time.Time, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
