package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Collections struct {
	Users      *mongo.Collection
	Projects   *mongo.Collection
	Customers  *mongo.Collection
	Employees  *mongo.Collection
	References *mongo.Collection
	Analyses   *mongo.Collection
	Questions  *mongo.Collection
	Meetings   *mongo.Collection
	Proposals  *mongo.Collection
	Documents  *mongo.Collection
}

func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *Collections, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, err
	}

	db := client.Database(dbName)

	cols := &Collections{
		Users:      db.Collection("users"),
		Projects:   db.Collection("projects"),
		Customers:  db.Collection("customers"),
		Employees:  db.Collection("employees"),
		References: db.Collection("references"),
		Analyses:   db.Collection("rfp_analyses"),
		Questions:  db.Collection("questions"),
		Meetings:   db.Collection("meetings"),
		Proposals:  db.Collection("proposals"),
		Documents:  db.Collection("documents"),
	}

	return client, cols, nil
}

func EnsureIndexes(ctx context.Context, cols *Collections) error {
	indexTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	byProject := bson.D{{Key: "projectId", Value: 1}}

	plan := []struct {
		col    *mongo.Collection
		models []mongo.IndexModel
	}{
		{cols.Users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		}},
		{cols.Projects, []mongo.IndexModel{
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: -1}}},
			{Keys: bson.D{{Key: "customerId", Value: 1}}},
			{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		}},
		{cols.Customers, []mongo.IndexModel{
			{Keys: bson.D{{Key: "companyName", Value: 1}}},
		}},
		{cols.Employees, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}},
			{Keys: bson.D{{Key: "department", Value: 1}}},
		}},
		{cols.References, []mongo.IndexModel{
			{Keys: bson.D{{Key: "customerId", Value: 1}}},
			{Keys: bson.D{{Key: "isPublic", Value: 1}, {Key: "createdAt", Value: -1}}},
		}},
		{cols.Analyses, []mongo.IndexModel{
			{Keys: byProject, Options: unique},
		}},
		{cols.Questions, []mongo.IndexModel{
			{Keys: bson.D{{Key: "projectId", Value: 1}, {Key: "createdAt", Value: 1}}},
		}},
		{cols.Meetings, []mongo.IndexModel{
			{Keys: byProject, Options: unique},
		}},
		{cols.Proposals, []mongo.IndexModel{
			{Keys: byProject, Options: unique},
		}},
		{cols.Documents, []mongo.IndexModel{
			{Keys: bson.D{{Key: "projectId", Value: 1}, {Key: "type", Value: 1}}},
		}},
	}

	for _, p := range plan {
		if _, err := p.col.Indexes().CreateMany(indexTimeout, p.models); err != nil {
			return err
		}
	}

	return nil
}
