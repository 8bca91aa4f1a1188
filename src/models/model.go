package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/tsotimus/monkko/src/engine"
	"github.com/tsotimus/monkko/src/helpers"
	"github.com/tsotimus/monkko/src/schemas"
	"github.com/tsotimus/monkko/src/store"
)

// Model binds a schema to its collection. Reads are deferred queries,
// writes run immediately.
type Model struct {
	schema   schemas.Definition
	coll     store.Collection
	executor *engine.Executor
	logger   *zap.SugaredLogger

	now func() time.Time
}

// NewModel validates schema, binds its collection on client and registers
// it in catalog so other models can populate references to it. A nil
// catalog means the process-wide default.
func NewModel(schema schemas.Definition, client store.Client, catalog *schemas.Catalog, logger *zap.SugaredLogger) (*Model, error) {
	def, err := schemas.DefineSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("failed to create model for %s: %w", def.Name, ErrNoClient)
	}
	if catalog == nil {
		catalog = schemas.Default()
	}
	logger = helpers.OrNop(logger)

	catalog.Register(def)
	logger.Debugw("model created", "schema", def.Name, "db", def.DB, "collection", def.Collection)

	return &Model{
		schema:   def,
		coll:     client.Database(def.DB).Collection(def.Collection),
		executor: engine.NewExecutor(client, catalog, logger),
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (m *Model) Schema() schemas.Definition {
	return m.schema
}

func (m *Model) Collection() store.Collection {
	return m.coll
}

// Find returns a deferred query for every document matching filter.
func (m *Model) Find(filter interface{}) *engine.Query {
	return engine.NewQuery(m.executor, m.schema, filter)
}

// FindOne returns a deferred query for the first document matching filter.
func (m *Model) FindOne(filter interface{}) *engine.SingleQuery {
	return engine.NewSingleQuery(m.executor, m.schema, filter)
}

// Create fills declared defaults, validates the document and inserts it.
// With timestamps on, createdAt and updatedAt get the same instant.
func (m *Model) Create(ctx context.Context, doc interface{}) (*mongo.InsertOneResult, error) {
	d, err := helpers.ToDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s document: %w", m.schema.Name, err)
	}
	if id, ok := d[schemas.IDField].(primitive.ObjectID); ok && id.IsZero() {
		delete(d, schemas.IDField)
	}

	schemas.ApplyDefaults(m.schema, d)
	if err := schemas.Validate(m.schema, d); err != nil {
		return nil, err
	}

	if m.schema.Options.Timestamps {
		stamp := primitive.NewDateTimeFromTime(m.now())
		d[schemas.CreatedAtField] = stamp
		d[schemas.UpdatedAtField] = stamp
	}

	res, err := m.coll.InsertOne(ctx, d)
	if err != nil {
		return nil, err
	}
	m.logger.Debugw("created document", "schema", m.schema.Name, "id", helpers.IDString(res.InsertedID))
	return res, nil
}

// Update applies update to the first document matching filter. updatedAt is
// only stamped when the schema opts in with StampUpdates.
func (m *Model) Update(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
	if m.schema.Options.StampUpdates {
		u, err := helpers.ToDocument(update)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s update: %w", m.schema.Name, err)
		}
		set, _ := u["$set"].(bson.M)
		if set == nil {
			set = bson.M{}
		}
		if _, ok := set[schemas.UpdatedAtField]; !ok {
			set[schemas.UpdatedAtField] = primitive.NewDateTimeFromTime(m.now())
		}
		u["$set"] = set
		update = u
	}

	return m.coll.UpdateOne(ctx, filter, update)
}

func (m *Model) Delete(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error) {
	return m.coll.DeleteOne(ctx, filter)
}

// EnsureIndexes creates a unique index for every top-level field declared
// Unique and returns the index names.
func (m *Model) EnsureIndexes(ctx context.Context) ([]string, error) {
	var names []string
	for _, field := range m.schema.FieldNames() {
		d := m.schema.Fields[field]
		if !d.Unique() {
			continue
		}
		name, err := m.coll.CreateUniqueIndex(ctx, field)
		if err != nil {
			return names, fmt.Errorf("failed to create unique index on %s.%s: %w", m.schema.Name, field, err)
		}
		names = append(names, name)
	}
	return names, nil
}
