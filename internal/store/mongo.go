package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTable wraps a collection whose documents use the record id as _id.
type MongoTable[T any] struct {
	col *mongo.Collection
}

func NewMongoTable[T any](col *mongo.Collection) *MongoTable[T] {
	return &MongoTable[T]{col: col}
}

func (m *MongoTable[T]) Insert(ctx context.Context, item T) error {
	_, err := m.col.InsertOne(ctx, item)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (m *MongoTable[T]) Get(ctx context.Context, id string) (T, error) {
	return m.FindOne(ctx, bson.M{"_id": id})
}

func (m *MongoTable[T]) FindOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (T, error) {
	var item T
	if err := m.col.FindOne(ctx, filter, opts...).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return item, ErrNotFound
		}
		return item, err
	}
	return item, nil
}

func (m *MongoTable[T]) Replace(ctx context.Context, id string, item T) error {
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": id}, item)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert replaces the document matching filter or inserts item.
func (m *MongoTable[T]) Upsert(ctx context.Context, filter bson.M, item T) error {
	_, err := m.col.ReplaceOne(ctx, filter, item, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoTable[T]) UpdateOne(ctx context.Context, id string, set bson.M) (T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated T
	if err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return updated, ErrNotFound
		}
		return updated, err
	}
	return updated, nil
}

func (m *MongoTable[T]) Delete(ctx context.Context, id string) (bool, error) {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (m *MongoTable[T]) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	res, err := m.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoTable[T]) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := m.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]T, 0)
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (m *MongoTable[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	return m.col.CountDocuments(ctx, filter)
}

// PageOptions sorts by the given field and applies skip/limit.
func PageOptions(sortField string, sortDir int, limit, offset int64) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: sortDir}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}
	return opts
}
