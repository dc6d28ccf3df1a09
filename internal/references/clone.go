package references

import (
	"slices"

	"salesagent-backend/internal/utils"
)

func (r Reference) Clone() Reference {
	r.Technologies = slices.Clone(r.Technologies)
	r.ProjectValue = utils.ClonePtr(r.ProjectValue)
	return r
}
