package projects

import (
	"maps"
	"slices"

	"salesagent-backend/internal/utils"
)

func (p Project) Clone() Project {
	p.TeamMembers = slices.Clone(p.TeamMembers)
	p.ProposalValue = utils.ClonePtr(p.ProposalValue)
	p.StepCompletedAt = maps.Clone(p.StepCompletedAt)
	return p
}
