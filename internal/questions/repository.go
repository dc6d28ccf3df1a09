package questions

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"salesagent-backend/internal/models"
	"salesagent-backend/internal/store"
)

type Repository interface {
	Create(ctx context.Context, items []models.Question) error
	Get(ctx context.Context, id string) (models.Question, error)
	Replace(ctx context.Context, item models.Question) error
	ListByProject(ctx context.Context, projectID string) ([]models.Question, error)
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
}

type MemoryRepository struct {
	table *store.Table[models.Question]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{table: store.NewTable(func(q models.Question) string { return q.ID }, models.Question.Clone)}
}

func (r *MemoryRepository) Create(_ context.Context, items []models.Question) error {
	for _, item := range items {
		if err := r.table.Insert(item); err != nil {
			return err
		}
	}
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (models.Question, error) {
	return r.table.Get(id)
}

func (r *MemoryRepository) Replace(_ context.Context, item models.Question) error {
	return r.table.Replace(item)
}

func (r *MemoryRepository) ListByProject(_ context.Context, projectID string) ([]models.Question, error) {
	return r.table.Find(func(q models.Question) bool { return q.ProjectID == projectID }), nil
}

func (r *MemoryRepository) DeleteByProject(_ context.Context, projectID string) (int64, error) {
	return int64(r.table.DeleteWhere(func(q models.Question) bool { return q.ProjectID == projectID })), nil
}

type MongoRepository struct {
	col   *mongo.Collection
	table *store.MongoTable[models.Question]
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col, table: store.NewMongoTable[models.Question](col)}
}

func (r *MongoRepository) Create(ctx context.Context, items []models.Question) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(items))
	for _, item := range items {
		docs = append(docs, item)
	}
	_, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	return err
}

func (r *MongoRepository) Get(ctx context.Context, id string) (models.Question, error) {
	return r.table.Get(ctx, id)
}

func (r *MongoRepository) Replace(ctx context.Context, item models.Question) error {
	return r.table.Replace(ctx, item.ID, item)
}

func (r *MongoRepository) ListByProject(ctx context.Context, projectID string) ([]models.Question, error) {
	return r.table.Find(ctx, bson.M{"projectId": projectID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
}

func (r *MongoRepository) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	return r.table.DeleteMany(ctx, bson.M{"projectId": projectID})
}
