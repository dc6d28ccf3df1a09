package customers

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
	Create(ctx context.Context, item Customer) error
	Get(ctx context.Context, id string) (Customer, error)
	Replace(ctx context.Context, item Customer) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Customer, int64, error)
}

type MemoryRepository struct {
	table *store.Table[Customer]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{table: store.NewTable(func(c Customer) string { return c.ID }, Customer.Clone)}
}

func (r *MemoryRepository) Create(_ context.Context, item Customer) error {
	return r.table.Insert(item)
}

func (r *MemoryRepository) Get(_ context.Context, id string) (Customer, error) {
	return r.table.Get(id)
}

func (r *MemoryRepository) Replace(_ context.Context, item Customer) error {
	return r.table.Replace(item)
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (bool, error) {
	return r.table.Delete(id), nil
}

func (r *MemoryRepository) List(_ context.Context, filter ListFilter, limit, offset int64) ([]Customer, int64, error) {
	query := strings.ToLower(filter.Query)
	items := r.table.Find(func(c Customer) bool {
		if filter.Industry != "" && !strings.EqualFold(c.Industry, filter.Industry) {
			return false
		}
		if query != "" && !strings.Contains(strings.ToLower(c.CompanyName), query) &&
			!strings.Contains(strings.ToLower(c.ContactPerson), query) {
			return false
		}
		return true
	})
	return store.Page(items, limit, offset), int64(len(items)), nil
}

type MongoRepository struct {
	table *store.MongoTable[Customer]
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{table: store.NewMongoTable[Customer](col)}
}

func (r *MongoRepository) Create(ctx context.Context, item Customer) error {
	return r.table.Insert(ctx, item)
}

func (r *MongoRepository) Get(ctx context.Context, id string) (Customer, error) {
	return r.table.Get(ctx, id)
}

func (r *MongoRepository) Replace(ctx context.Context, item Customer) error {
	return r.table.Replace(ctx, item.ID, item)
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.table.Delete(ctx, id)
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Customer, int64, error) {
	query := bson.M{}
	if filter.Industry != "" {
		query["industry"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(filter.Industry) + "$", Options: "i"}
	}
	if filter.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"companyName": pattern},
			bson.M{"contactPerson": pattern},
		}
	}
	items, err := r.table.Find(ctx, query, store.PageOptions("createdAt", 1, limit, offset))
	if err != nil {
		return nil, 0, err
	}
	total, err := r.table.Count(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
