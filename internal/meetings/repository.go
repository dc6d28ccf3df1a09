// Package meetings stores the customer meeting of each project.
package meetings

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"salesagent-backend/internal/models"
	"salesagent-backend/internal/store"
)

type Repository interface {
	GetByProject(ctx context.Context, projectID string) (models.Meeting, error)
	Put(ctx context.Context, item models.Meeting) error
	DeleteByProject(ctx context.Context, projectID string) error
}

type MemoryRepository struct {
	table *store.Table[models.Meeting]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{table: store.NewTable(func(m models.Meeting) string { return m.ProjectID }, models.Meeting.Clone)}
}

func (r *MemoryRepository) GetByProject(_ context.Context, projectID string) (models.Meeting, error) {
	return r.table.Get(projectID)
}

func (r *MemoryRepository) Put(_ context.Context, item models.Meeting) error {
	r.table.Put(item)
	return nil
}

func (r *MemoryRepository) DeleteByProject(_ context.Context, projectID string) error {
	r.table.Delete(projectID)
	return nil
}

type MongoRepository struct {
	table *store.MongoTable[models.Meeting]
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{table: store.NewMongoTable[models.Meeting](col)}
}

func (r *MongoRepository) GetByProject(ctx context.Context, projectID string) (models.Meeting, error) {
	return r.table.FindOne(ctx, bson.M{"projectId": projectID})
}

// Put keeps the stored _id; the service never changes a meeting's id once
// it exists.
func (r *MongoRepository) Put(ctx context.Context, item models.Meeting) error {
	return r.table.Upsert(ctx, bson.M{"_id": item.ID}, item)
}

func (r *MongoRepository) DeleteByProject(ctx context.Context, projectID string) error {
	_, err := r.table.DeleteMany(ctx, bson.M{"projectId": projectID})
	return err
}
