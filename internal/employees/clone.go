package employees

import (
	"slices"

	"salesagent-backend/internal/utils"
)

func (e Employee) Clone() Employee {
	if e.Skills != nil {
		skills := make([]Skill, len(e.Skills))
		for i, s := range e.Skills {
			s.YearsOfExperience = utils.ClonePtr(s.YearsOfExperience)
			skills[i] = s
		}
		e.Skills = skills
	}
	e.Certifications = slices.Clone(e.Certifications)
	if e.ProjectExperience != nil {
		exp := make([]ProjectExperience, len(e.ProjectExperience))
		for i, x := range e.ProjectExperience {
			x.Technologies = slices.Clone(x.Technologies)
			exp[i] = x
		}
		e.ProjectExperience = exp
	}
	return e
}
