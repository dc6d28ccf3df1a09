// Package proposals stores the proposal document of each project and runs
// its editing, generation, export and send actions.
package proposals

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"salesagent-backend/internal/models"
	"salesagent-backend/internal/store"
)

type Repository interface {
	GetByProject(ctx context.Context, projectID string) (models.Proposal, error)
	Put(ctx context.Context, item models.Proposal) error
	DeleteByProject(ctx context.Context, projectID string) error
}

type MemoryRepository struct {
	table *store.Table[models.Proposal]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{table: store.NewTable(func(p models.Proposal) string { return p.ProjectID }, models.Proposal.Clone)}
}

func (r *MemoryRepository) GetByProject(_ context.Context, projectID string) (models.Proposal, error) {
	return r.table.Get(projectID)
}

func (r *MemoryRepository) Put(_ context.Context, item models.Proposal) error {
	r.table.Put(item)
	return nil
}

func (r *MemoryRepository) DeleteByProject(_ context.Context, projectID string) error {
	r.table.Delete(projectID)
	return nil
}

type MongoRepository struct {
	table *store.MongoTable[models.Proposal]
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{table: store.NewMongoTable[models.Proposal](col)}
}

func (r *MongoRepository) GetByProject(ctx context.Context, projectID string) (models.Proposal, error) {
	return r.table.FindOne(ctx, bson.M{"projectId": projectID})
}

// Put matches on the project so a regenerated structure with a fresh id
// replaces the old document instead of adding a second one.
func (r *MongoRepository) Put(ctx context.Context, item models.Proposal) error {
	if _, err := r.table.DeleteMany(ctx, bson.M{"projectId": item.ProjectID, "_id": bson.M{"$ne": item.ID}}); err != nil {
		return err
	}
	return r.table.Upsert(ctx, bson.M{"_id": item.ID}, item)
}

func (r *MongoRepository) DeleteByProject(ctx context.Context, projectID string) error {
	_, err := r.table.DeleteMany(ctx, bson.M{"projectId": projectID})
	return err
}
