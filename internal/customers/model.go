package customers

import "time"

type Address struct {
	Street     string `bson:"street" json:"street" validate:"required"`
	City       string `bson:"city" json:"city" validate:"required"`
	PostalCode string `bson:"postalCode" json:"postalCode" validate:"required"`
	Country    string `bson:"country" json:"country" validate:"required"`
}

// ProposalEntry links a sent proposal to the customer record.
type ProposalEntry struct {
	ID          string     `bson:"id" json:"id"`
	ProjectID   string     `bson:"projectId" json:"projectId" validate:"required"`
	ProjectName string     `bson:"projectName" json:"projectName"`
	Status      string     `bson:"status" json:"status" validate:"oneof=draft sent accepted rejected expired"`
	SentAt      *time.Time `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	Value       *float64   `bson:"value,omitempty" json:"value,omitempty" validate:"omitempty,gte=0"`
}

type Appointment struct {
	ID    string    `bson:"id" json:"id"`
	Title string    `bson:"title" json:"title" validate:"required"`
	Date  time.Time `bson:"date" json:"date" validate:"required"`
	Notes string    `bson:"notes,omitempty" json:"notes,omitempty"`
	Type  string    `bson:"type" json:"type" validate:"oneof=meeting call presentation other"`
}

type Customer struct {
	ID            string          `bson:"_id,omitempty" json:"id"`
	CompanyName   string          `bson:"companyName" json:"companyName"`
	Industry      string          `bson:"industry,omitempty" json:"industry,omitempty"`
	ContactPerson string          `bson:"contactPerson" json:"contactPerson"`
	ContactEmail  string          `bson:"contactEmail" json:"contactEmail"`
	ContactPhone  string          `bson:"contactPhone,omitempty" json:"contactPhone,omitempty"`
	Address       *Address        `bson:"address,omitempty" json:"address,omitempty"`
	Website       string          `bson:"website,omitempty" json:"website,omitempty"`
	Notes         string          `bson:"notes,omitempty" json:"notes,omitempty"`
	Proposals     []ProposalEntry `bson:"proposals" json:"proposals"`
	Appointments  []Appointment   `bson:"appointments" json:"appointments"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time       `bson:"updatedAt" json:"updatedAt"`
}

type UpsertRequest struct {
	CompanyName   string          `json:"companyName" validate:"required"`
	Industry      string          `json:"industry"`
	ContactPerson string          `json:"contactPerson" validate:"required"`
	ContactEmail  string          `json:"contactEmail" validate:"required,email"`
	ContactPhone  string          `json:"contactPhone" validate:"omitempty,phone"`
	Address       *Address        `json:"address" validate:"omitempty"`
	Website       string          `json:"website" validate:"omitempty,url"`
	Notes         string          `json:"notes"`
	Proposals     []ProposalEntry `json:"proposals" validate:"omitempty,dive"`
	Appointments  []Appointment   `json:"appointments" validate:"omitempty,dive"`
}

type ListFilter struct {
	Industry string
	Query    string
}
