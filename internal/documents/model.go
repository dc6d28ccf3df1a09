package documents

import (
	"io"
	"time"
)

const (
	TypeRFP       = "rfp"
	TypeTemplate  = "template"
	TypeProposal  = "proposal"
	TypeQuestions = "questions"
	TypeAnswers   = "answers"
	TypeNotes     = "notes"
	TypeOther     = "other"
)

var documentTypes = map[string]struct{}{
	TypeRFP: {}, TypeTemplate: {}, TypeProposal: {}, TypeQuestions: {},
	TypeAnswers: {}, TypeNotes: {}, TypeOther: {},
}

// Document is the metadata of an uploaded file. The bytes live in object
// storage under StoragePath.
type Document struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	ProjectID   string    `bson:"projectId" json:"projectId"`
	Name        string    `bson:"name" json:"name"`
	Type        string    `bson:"type" json:"type"`
	MimeType    string    `bson:"mimeType" json:"mimeType"`
	URL         string    `bson:"-" json:"url"`
	StoragePath string    `bson:"storagePath" json:"storagePath"`
	Size        int64     `bson:"size" json:"size"`
	UploadedBy  string    `bson:"uploadedBy,omitempty" json:"uploadedBy,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

type UploadInput struct {
	Name       string
	Type       string
	MimeType   string
	Size       int64
	Body       io.Reader
	UploadedBy string
}
