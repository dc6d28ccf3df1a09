package employees

import "time"

const (
	AvailabilityAvailable = "available"
	AvailabilityPartial   = "partially_available"
	AvailabilityNone      = "unavailable"
)

type Skill struct {
	ID                string `bson:"id" json:"id"`
	Name              string `bson:"name" json:"name" validate:"required"`
	Level             string `bson:"level" json:"level" validate:"oneof=beginner intermediate advanced expert"`
	YearsOfExperience *int   `bson:"yearsOfExperience,omitempty" json:"yearsOfExperience,omitempty" validate:"omitempty,gte=0"`
}

type Certification struct {
	ID           string `bson:"id" json:"id"`
	Name         string `bson:"name" json:"name" validate:"required"`
	Issuer       string `bson:"issuer" json:"issuer" validate:"required"`
	DateObtained string `bson:"dateObtained" json:"dateObtained" validate:"required,date"`
	ExpiryDate   string `bson:"expiryDate,omitempty" json:"expiryDate,omitempty" validate:"omitempty,date"`
	CredentialID string `bson:"credentialId,omitempty" json:"credentialId,omitempty"`
}

type ProjectExperience struct {
	ID           string   `bson:"id" json:"id"`
	ProjectName  string   `bson:"projectName" json:"projectName" validate:"required"`
	Role         string   `bson:"role" json:"role" validate:"required"`
	Duration     string   `bson:"duration" json:"duration"`
	Description  string   `bson:"description,omitempty" json:"description,omitempty"`
	Technologies []string `bson:"technologies,omitempty" json:"technologies,omitempty"`
}

// Employee is a consultant who can be staffed on proposals.
type Employee struct {
	ID                string              `bson:"_id,omitempty" json:"id"`
	FirstName         string              `bson:"firstName" json:"firstName"`
	LastName          string              `bson:"lastName" json:"lastName"`
	Email             string              `bson:"email" json:"email"`
	Phone             string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Position          string              `bson:"position" json:"position"`
	Department        string              `bson:"department,omitempty" json:"department,omitempty"`
	Skills            []Skill             `bson:"skills" json:"skills"`
	Certifications    []Certification     `bson:"certifications" json:"certifications"`
	ProjectExperience []ProjectExperience `bson:"projectExperience" json:"projectExperience"`
	Availability      string              `bson:"availability" json:"availability"`
	AvatarURL         string              `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type UpsertRequest struct {
	FirstName         string              `json:"firstName" validate:"required"`
	LastName          string              `json:"lastName" validate:"required"`
	Email             string              `json:"email" validate:"required,email"`
	Phone             string              `json:"phone" validate:"omitempty,phone"`
	Position          string              `json:"position" validate:"required"`
	Department        string              `json:"department"`
	Skills            []Skill             `json:"skills" validate:"omitempty,dive"`
	Certifications    []Certification     `json:"certifications" validate:"omitempty,dive"`
	ProjectExperience []ProjectExperience `json:"projectExperience" validate:"omitempty,dive"`
	Availability      string              `json:"availability" validate:"omitempty,oneof=available partially_available unavailable"`
	AvatarURL         string              `json:"avatarUrl" validate:"omitempty,url"`
}

type ListFilter struct {
	Department   string
	Availability string
	Skill        string
}
