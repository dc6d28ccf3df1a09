package projects

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"salesagent-backend/internal/store"
)

type Repository interface {
	Create(ctx context.Context, item Project) error
	Get(ctx context.Context, id string) (Project, error)
	Replace(ctx context.Context, item Project) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Project, int64, error)
}

type MemoryRepository struct {
	table *store.Table[Project]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{table: store.NewTable(func(p Project) string { return p.ID }, Project.Clone)}
}

func (r *MemoryRepository) Create(_ context.Context, item Project) error {
	return r.table.Insert(item)
}

func (r *MemoryRepository) Get(_ context.Context, id string) (Project, error) {
	return r.table.Get(id)
}

func (r *MemoryRepository) Replace(_ context.Context, item Project) error {
	return r.table.Replace(item)
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (bool, error) {
	return r.table.Delete(id), nil
}

func (r *MemoryRepository) List(_ context.Context, filter ListFilter, limit, offset int64) ([]Project, int64, error) {
	items := r.table.Find(func(p Project) bool {
		if filter.Status != "" && p.Status != filter.Status {
			return false
		}
		if filter.CustomerID != "" && p.CustomerID != filter.CustomerID {
			return false
		}
		if filter.CreatedBy != "" && p.CreatedBy != filter.CreatedBy {
			return false
		}
		return true
	})
	return store.Page(items, limit, offset), int64(len(items)), nil
}

type MongoRepository struct {
	table *store.MongoTable[Project]
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{table: store.NewMongoTable[Project](col)}
}

func (r *MongoRepository) Create(ctx context.Context, item Project) error {
	return r.table.Insert(ctx, item)
}

func (r *MongoRepository) Get(ctx context.Context, id string) (Project, error) {
	return r.table.Get(ctx, id)
}

func (r *MongoRepository) Replace(ctx context.Context, item Project) error {
	return r.table.Replace(ctx, item.ID, item)
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.table.Delete(ctx, id)
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Project, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.CustomerID != "" {
		query["customerId"] = filter.CustomerID
	}
	if filter.CreatedBy != "" {
		query["createdBy"] = filter.CreatedBy
	}
	items, err := r.table.Find(ctx, query, store.PageOptions("updatedAt", -1, limit, offset))
	if err != nil {
		return nil, 0, err
	}
	total, err := r.table.Count(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
