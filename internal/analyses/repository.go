// Package analyses stores the latest RFP analysis of each project.
package analyses

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"salesagent-backend/internal/models"
	"salesagent-backend/internal/store"
)

type Repository interface {
	GetByProject(ctx context.Context, projectID string) (models.RFPAnalysis, error)
	Put(ctx context.Context, item models.RFPAnalysis) error
	DeleteByProject(ctx context.Context, projectID string) error
}

// MemoryRepository keys records by project id so a new analysis replaces
// the previous one.
type MemoryRepository struct {
	table *store.Table[models.RFPAnalysis]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{table: store.NewTable(func(a models.RFPAnalysis) string { return a.ProjectID }, models.RFPAnalysis.Clone)}
}

func (r *MemoryRepository) GetByProject(_ context.Context, projectID string) (models.RFPAnalysis, error) {
	return r.table.Get(projectID)
}

func (r *MemoryRepository) Put(_ context.Context, item models.RFPAnalysis) error {
	r.table.Put(item)
	return nil
}

func (r *MemoryRepository) DeleteByProject(_ context.Context, projectID string) error {
	r.table.Delete(projectID)
	return nil
}

type MongoRepository struct {
	table *store.MongoTable[models.RFPAnalysis]
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{table: store.NewMongoTable[models.RFPAnalysis](col)}
}

func (r *MongoRepository) GetByProject(ctx context.Context, projectID string) (models.RFPAnalysis, error) {
	return r.table.FindOne(ctx, bson.M{"projectId": projectID})
}

// Put swaps the project's document. A replace cannot be used because the
// new analysis carries a new _id.
func (r *MongoRepository) Put(ctx context.Context, item models.RFPAnalysis) error {
	if _, err := r.table.DeleteMany(ctx, bson.M{"projectId": item.ProjectID}); err != nil {
		return err
	}
	return r.table.Insert(ctx, item)
}

func (r *MongoRepository) DeleteByProject(ctx context.Context, projectID string) error {
	_, err := r.table.DeleteMany(ctx, bson.M{"projectId": projectID})
	return err
}
