package customers

import (
	"slices"

	"salesagent-backend/internal/utils"
)

func (c Customer) Clone() Customer {
	c.Address = utils.ClonePtr(c.Address)
	if c.Proposals != nil {
		entries := make([]ProposalEntry, len(c.Proposals))
		for i, e := range c.Proposals {
			e.SentAt = utils.ClonePtr(e.SentAt)
			e.Value = utils.ClonePtr(e.Value)
			entries[i] = e
		}
		c.Proposals = entries
	}
	c.Appointments = slices.Clone(c.Appointments)
	return c
}
