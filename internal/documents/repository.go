package documents

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"salesagent-backend/internal/store"
)

type Repository interface {
	Create(ctx context.Context, item Document) error
	Get(ctx context.Context, id string) (Document, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListByProject(ctx context.Context, projectID, docType string) ([]Document, error)
}

type MemoryRepository struct {
	table *store.Table[Document]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{table: store.NewTable(func(d Document) string { return d.ID }, nil)}
}

func (r *MemoryRepository) Create(_ context.Context, item Document) error {
	return r.table.Insert(item)
}

func (r *MemoryRepository) Get(_ context.Context, id string) (Document, error) {
	return r.table.Get(id)
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (bool, error) {
	return r.table.Delete(id), nil
}

func (r *MemoryRepository) ListByProject(_ context.Context, projectID, docType string) ([]Document, error) {
	return r.table.Find(func(d Document) bool {
		return d.ProjectID == projectID && (docType == "" || d.Type == docType)
	}), nil
}

type MongoRepository struct {
	table *store.MongoTable[Document]
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{table: store.NewMongoTable[Document](col)}
}

func (r *MongoRepository) Create(ctx context.Context, item Document) error {
	return r.table.Insert(ctx, item)
}

func (r *MongoRepository) Get(ctx context.Context, id string) (Document, error) {
	return r.table.Get(ctx, id)
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.table.Delete(ctx, id)
}

func (r *MongoRepository) ListByProject(ctx context.Context, projectID, docType string) ([]Document, error) {
	query := bson.M{"projectId": projectID}
	if docType != "" {
		query["type"] = docType
	}
	return r.table.Find(ctx, query, store.PageOptions("createdAt", 1, 0, 0))
}
