package references

import (
	"context"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"salesagent-backend/internal/store"
)

type Repository interface {
	Create(ctx context.Context, item Reference) error
	Get(ctx context.Context, id string) (Reference, error)
	Replace(ctx context.Context, item Reference) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Reference, int64, error)
}

type MemoryRepository struct {
	table *store.Table[Reference]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{table: store.NewTable(func(r Reference) string { return r.ID }, Reference.Clone)}
}

func (r *MemoryRepository) Create(_ context.Context, item Reference) error {
	return r.table.Insert(item)
}

func (r *MemoryRepository) Get(_ context.Context, id string) (Reference, error) {
	return r.table.Get(id)
}

func (r *MemoryRepository) Replace(_ context.Context, item Reference) error {
	return r.table.Replace(item)
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (bool, error) {
	return r.table.Delete(id), nil
}

func (r *MemoryRepository) List(_ context.Context, filter ListFilter, limit, offset int64) ([]Reference, int64, error) {
	items := r.table.Find(func(ref Reference) bool {
		if filter.PublicOnly && !ref.IsPublic {
			return false
		}
		if filter.CustomerID != "" && ref.CustomerID != filter.CustomerID {
			return false
		}
		if filter.Industry != "" && !strings.EqualFold(ref.Industry, filter.Industry) {
			return false
		}
		return true
	})
	return store.Page(items, limit, offset), int64(len(items)), nil
}

type MongoRepository struct {
	table *store.MongoTable[Reference]
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{table: store.NewMongoTable[Reference](col)}
}

func (r *MongoRepository) Create(ctx context.Context, item Reference) error {
	return r.table.Insert(ctx, item)
}

func (r *MongoRepository) Get(ctx context.Context, id string) (Reference, error) {
	return r.table.Get(ctx, id)
}

func (r *MongoRepository) Replace(ctx context.Context, item Reference) error {
	return r.table.Replace(ctx, item.ID, item)
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.table.Delete(ctx, id)
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Reference, int64, error) {
	query := bson.M{}
	if filter.PublicOnly {
		query["isPublic"] = true
	}
	if filter.CustomerID != "" {
		query["customerId"] = filter.CustomerID
	}
	if filter.Industry != "" {
		query["industry"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(filter.Industry) + "$", Options: "i"}
	}
	items, err := r.table.Find(ctx, query, store.PageOptions("createdAt", -1, limit, offset))
	if err != nil {
		return nil, 0, err
	}
	total, err := r.table.Count(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
