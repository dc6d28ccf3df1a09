package references

import "time"

// Reference is a completed customer project shown in proposals.
type Reference struct {
	ID              string    `bson:"_id,omitempty" json:"id"`
	CustomerID      string    `bson:"customerId" json:"customerId"`
	CustomerName    string    `bson:"customerName" json:"customerName"`
	ProjectTitle    string    `bson:"projectTitle" json:"projectTitle"`
	Description     string    `bson:"description" json:"description"`
	Industry        string    `bson:"industry,omitempty" json:"industry,omitempty"`
	Technologies    []string  `bson:"technologies" json:"technologies"`
	ProjectDuration string    `bson:"projectDuration,omitempty" json:"projectDuration,omitempty"`
	ProjectValue    *float64  `bson:"projectValue,omitempty" json:"projectValue,omitempty"`
	CompletionDate  string    `bson:"completionDate,omitempty" json:"completionDate,omitempty"`
	ContactPerson   string    `bson:"contactPerson,omitempty" json:"contactPerson,omitempty"`
	Testimonial     string    `bson:"testimonial,omitempty" json:"testimonial,omitempty"`
	IsPublic        bool      `bson:"isPublic" json:"isPublic"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

type UpsertRequest struct {
	CustomerID      string   `json:"customerId" validate:"required"`
	CustomerName    string   `json:"customerName" validate:"required"`
	ProjectTitle    string   `json:"projectTitle" validate:"required"`
	Description     string   `json:"description" validate:"required"`
	Industry        string   `json:"industry"`
	Technologies    []string `json:"technologies" validate:"omitempty,dive,required"`
	ProjectDuration string   `json:"projectDuration"`
	ProjectValue    *float64 `json:"projectValue" validate:"omitempty,gte=0"`
	CompletionDate  string   `json:"completionDate" validate:"omitempty,date"`
	ContactPerson   string   `json:"contactPerson"`
	Testimonial     string   `json:"testimonial"`
	IsPublic        *bool    `json:"isPublic"`
}

type ListFilter struct {
	CustomerID string
	Industry   string
	PublicOnly bool
}
