package users

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"salesagent-backend/internal/store"
)

type Repository interface {
	Create(ctx context.Context, item User) error
	Get(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, limit, offset int64) ([]User, int64, error)
}

// MemoryRepository keeps emails unique the way the Mongo unique index does.
type MemoryRepository struct {
	table *store.Table[User]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{table: store.NewTable(func(u User) string { return u.ID }, nil)}
}

func (r *MemoryRepository) Create(_ context.Context, item User) error {
	if _, err := r.table.FindOne(func(u User) bool { return strings.EqualFold(u.Email, item.Email) }); err == nil {
		return store.ErrDuplicate
	}
	return r.table.Insert(item)
}

func (r *MemoryRepository) Get(_ context.Context, id string) (User, error) {
	return r.table.Get(id)
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (User, error) {
	return r.table.FindOne(func(u User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *MemoryRepository) List(_ context.Context, limit, offset int64) ([]User, int64, error) {
	items := r.table.Find(func(User) bool { return true })
	return store.Page(items, limit, offset), int64(len(items)), nil
}

type MongoRepository struct {
	table *store.MongoTable[User]
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{table: store.NewMongoTable[User](col)}
}

func (r *MongoRepository) Create(ctx context.Context, item User) error {
	return r.table.Insert(ctx, item)
}

func (r *MongoRepository) Get(ctx context.Context, id string) (User, error) {
	return r.table.Get(ctx, id)
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.table.FindOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) List(ctx context.Context, limit, offset int64) ([]User, int64, error) {
	items, err := r.table.Find(ctx, bson.M{}, store.PageOptions("email", 1, limit, offset))
	if err != nil {
		return nil, 0, err
	}
	total, err := r.table.Count(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
