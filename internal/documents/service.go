package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"salesagent-backend/internal/projects"
	"salesagent-backend/internal/store"
	"salesagent-backend/internal/utils"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidType = errors.New("invalid document type")
)

type ProjectFinder interface {
	Get(ctx context.Context, id string) (projects.Project, error)
}

type Service struct {
	repo     Repository
	storage  Storage
	projects ProjectFinder
	location *time.Location
}

func NewService(repo Repository, storage Storage, projects ProjectFinder, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		storage:  storage,
		projects: projects,
		location: location,
	}
}

func ObjectKey(projectID, documentID, name string) string {
	return "projects/" + projectID + "/" + documentID + "-" + utils.SafeFilename(name)
}

// Upload stores the bytes first and the metadata second. A failed metadata
// write removes the object again.
func (s *Service) Upload(ctx context.Context, projectID string, in UploadInput) (Document, error) {
	projectID = strings.TrimSpace(projectID)
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return Document{}, err
	}
	docType := strings.ToLower(strings.TrimSpace(in.Type))
	if docType == "" {
		docType = TypeOther
	}
	if _, ok := documentTypes[docType]; !ok {
		return Document{}, ErrInvalidType
	}
	mimeType := strings.TrimSpace(in.MimeType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	doc := Document{
		ID:         primitive.NewObjectID().Hex(),
		ProjectID:  projectID,
		Name:       strings.TrimSpace(in.Name),
		Type:       docType,
		MimeType:   mimeType,
		Size:       in.Size,
		UploadedBy: in.UploadedBy,
		CreatedAt:  time.Now().In(s.location),
	}
	doc.StoragePath = ObjectKey(projectID, doc.ID, doc.Name)

	if err := s.storage.Put(ctx, doc.StoragePath, in.Body, in.Size, mimeType); err != nil {
		return Document{}, fmt.Errorf("store object: %w", err)
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		_ = s.storage.Delete(ctx, doc.StoragePath)
		return Document{}, err
	}
	return s.withURL(ctx, doc)
}

func (s *Service) List(ctx context.Context, projectID, docType string) ([]Document, error) {
	projectID = strings.TrimSpace(projectID)
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByProject(ctx, projectID, strings.TrimSpace(docType))
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i], err = s.withURL(ctx, items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *Service) Delete(ctx context.Context, projectID, documentID string) error {
	projectID = strings.TrimSpace(projectID)
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return err
	}
	doc, err := s.repo.Get(ctx, strings.TrimSpace(documentID))
	if errors.Is(err, store.ErrNotFound) || (err == nil && doc.ProjectID != projectID) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil && !errors.Is(err, ErrObjectNotFound) {
		return fmt.Errorf("delete object: %w", err)
	}
	if _, err := s.repo.Delete(ctx, doc.ID); err != nil {
		return err
	}
	return nil
}

// DeleteByProject removes the stored objects and metadata of every
// document of a deleted project.
func (s *Service) DeleteByProject(ctx context.Context, projectID string) error {
	items, err := s.repo.ListByProject(ctx, strings.TrimSpace(projectID), "")
	if err != nil {
		return err
	}
	for _, doc := range items {
		if err := s.storage.Delete(ctx, doc.StoragePath); err != nil && !errors.Is(err, ErrObjectNotFound) {
			return fmt.Errorf("delete object: %w", err)
		}
		if _, err := s.repo.Delete(ctx, doc.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) withURL(ctx context.Context, doc Document) (Document, error) {
	u, err := s.storage.URL(ctx, doc.StoragePath)
	if err != nil {
		return Document{}, fmt.Errorf("sign url: %w", err)
	}
	doc.URL = u
	return doc, nil
}
