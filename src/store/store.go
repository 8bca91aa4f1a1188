package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client hands out databases by name. Both the MongoDB adapter and the
// in-memory store implement it.
type Client interface {
	Database(name string) Database
}

type Database interface {
	Name() string
	Collection(name string) Collection
}

// Collection is the subset of collection operations models and the populate
// engine need. Find returns an empty slice when nothing matches and FindOne
// returns a nil document.
type Collection interface {
	Name() string
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]bson.M, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (bson.M, error)
	InsertOne(ctx context.Context, document interface{}) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error)
	CreateUniqueIndex(ctx context.Context, field string) (string, error)
}

// IndexName returns the name MongoDB gives a single-field ascending index.
func IndexName(field string) string {
	return field + "_1"
}
