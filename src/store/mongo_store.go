package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/tsotimus/monkko/src/helpers"
)

// MongoClient adapts a *mongo.Client to the Client interface.
type MongoClient struct {
	client *mongo.Client
	logger *zap.SugaredLogger
}

// Connect dials uri and pings the primary before returning.
func Connect(ctx context.Context, uri string, logger *zap.SugaredLogger) (*MongoClient, error) {
	logger = helpers.OrNop(logger)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB primary: %w", err)
	}

	logger.Infow("Connected to MongoDB")
	return NewMongoClient(client, logger), nil
}

// NewMongoClient wraps an already connected driver client.
func NewMongoClient(client *mongo.Client, logger *zap.SugaredLogger) *MongoClient {
	return &MongoClient{client: client, logger: helpers.OrNop(logger)}
}

// Driver exposes the underlying driver client.
func (c *MongoClient) Driver() *mongo.Client {
	return c.client
}

func (c *MongoClient) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	c.logger.Infow("Disconnected from MongoDB")
	return nil
}

func (c *MongoClient) Database(name string) Database {
	return &mongoDatabase{db: c.client.Database(name), logger: c.logger}
}

type mongoDatabase struct {
	db     *mongo.Database
	logger *zap.SugaredLogger
}

func (d *mongoDatabase) Name() string {
	return d.db.Name()
}

func (d *mongoDatabase) Collection(name string) Collection {
	return &mongoCollection{coll: d.db.Collection(name), logger: d.logger}
}

type mongoCollection struct {
	coll   *mongo.Collection
	logger *zap.SugaredLogger
}

func (c *mongoCollection) Name() string {
	return c.coll.Name()
}

func (c *mongoCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]bson.M, error) {
	cursor, err := c.coll.Find(ctx, orEmpty(filter), opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []bson.M{}
	}
	for i, doc := range docs {
		docs[i] = helpers.NormalizeDocument(doc)
	}

	c.logger.Debugw("find", "collection", c.coll.Name(), "count", len(docs))
	return docs, nil
}

func (c *mongoCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (bson.M, error) {
	var doc bson.M
	err := c.coll.FindOne(ctx, orEmpty(filter), opts...).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return helpers.NormalizeDocument(doc), nil
}

func (c *mongoCollection) InsertOne(ctx context.Context, document interface{}) (*mongo.InsertOneResult, error) {
	return c.coll.InsertOne(ctx, document)
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
	return c.coll.UpdateOne(ctx, orEmpty(filter), update)
}

func (c *mongoCollection) DeleteOne(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error) {
	return c.coll.DeleteOne(ctx, orEmpty(filter))
}

func (c *mongoCollection) CreateUniqueIndex(ctx context.Context, field string) (string, error) {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	return c.coll.Indexes().CreateOne(ctx, model)
}

// The driver rejects a nil filter, the store contract treats it as match-all.
func orEmpty(filter interface{}) interface{} {
	if filter == nil {
		return bson.M{}
	}
	return filter
}
