package employees

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
	Create(ctx context.Context, item Employee) error
	Get(ctx context.Context, id string) (Employee, error)
	Replace(ctx context.Context, item Employee) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Employee, int64, error)
}

type MemoryRepository struct {
	table *store.Table[Employee]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{table: store.NewTable(func(e Employee) string { return e.ID }, Employee.Clone)}
}

func (r *MemoryRepository) Create(_ context.Context, item Employee) error {
	return r.table.Insert(item)
}

func (r *MemoryRepository) Get(_ context.Context, id string) (Employee, error) {
	return r.table.Get(id)
}

func (r *MemoryRepository) Replace(_ context.Context, item Employee) error {
	return r.table.Replace(item)
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (bool, error) {
	return r.table.Delete(id), nil
}

func (r *MemoryRepository) List(_ context.Context, filter ListFilter, limit, offset int64) ([]Employee, int64, error) {
	items := r.table.Find(func(e Employee) bool {
		if filter.Department != "" && !strings.EqualFold(e.Department, filter.Department) {
			return false
		}
		if filter.Availability != "" && e.Availability != filter.Availability {
			return false
		}
		if filter.Skill != "" && !hasSkill(e, filter.Skill) {
			return false
		}
		return true
	})
	return store.Page(items, limit, offset), int64(len(items)), nil
}

func hasSkill(e Employee, name string) bool {
	for _, s := range e.Skills {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

type MongoRepository struct {
	table *store.MongoTable[Employee]
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{table: store.NewMongoTable[Employee](col)}
}

func (r *MongoRepository) Create(ctx context.Context, item Employee) error {
	return r.table.Insert(ctx, item)
}

func (r *MongoRepository) Get(ctx context.Context, id string) (Employee, error) {
	return r.table.Get(ctx, id)
}

func (r *MongoRepository) Replace(ctx context.Context, item Employee) error {
	return r.table.Replace(ctx, item.ID, item)
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.table.Delete(ctx, id)
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Employee, int64, error) {
	query := bson.M{}
	if filter.Department != "" {
		query["department"] = exact(filter.Department)
	}
	if filter.Availability != "" {
		query["availability"] = filter.Availability
	}
	if filter.Skill != "" {
		query["skills.name"] = exact(filter.Skill)
	}
	items, err := r.table.Find(ctx, query, store.PageOptions("lastName", 1, limit, offset))
	if err != nil {
		return nil, 0, err
	}
	total, err := r.table.Count(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func exact(value string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value) + "$", Options: "i"}
}
