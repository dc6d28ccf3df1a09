package models

import (
	"slices"

	"salesagent-backend/internal/utils"
)

// Clone returns a copy that shares no slices or pointers with a.
func (a RFPAnalysis) Clone() RFPAnalysis {
	a.Requirements = slices.Clone(a.Requirements)
	a.Deadlines = slices.Clone(a.Deadlines)
	a.BudgetHints = slices.Clone(a.BudgetHints)
	a.Gaps = slices.Clone(a.Gaps)
	a.RecommendedResources = slices.Clone(a.RecommendedResources)
	return a
}

func (q Question) Clone() Question {
	q.AnsweredAt = utils.ClonePtr(q.AnsweredAt)
	return q
}

func (m Meeting) Clone() Meeting {
	m.Date = utils.ClonePtr(m.Date)
	m.Agenda = slices.Clone(m.Agenda)
	m.Insights = slices.Clone(m.Insights)
	m.ActionItems = slices.Clone(m.ActionItems)
	return m
}

func (p Proposal) Clone() Proposal {
	p.Chapters = slices.Clone(p.Chapters)
	return p
}
