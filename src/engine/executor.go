package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/tsotimus/monkko/src/helpers"
	"github.com/tsotimus/monkko/src/schemas"
	"github.com/tsotimus/monkko/src/store"
)

// Executor runs query plans against a store, resolving reference targets
// through a schema catalog.
type Executor struct {
	client  store.Client
	catalog *schemas.Catalog
	logger  *zap.SugaredLogger
}

// NewExecutor returns an executor bound to client. A nil catalog means the
// process-wide default catalog.
func NewExecutor(client store.Client, catalog *schemas.Catalog, logger *zap.SugaredLogger) *Executor {
	if catalog == nil {
		catalog = schemas.Default()
	}
	return &Executor{
		client:  client,
		catalog: catalog,
		logger:  helpers.OrNop(logger),
	}
}

func (e *Executor) Catalog() *schemas.Catalog {
	return e.catalog
}

// Execute runs the base fetch of plan and then each populate request in
// order. A single plan yields at most one document. Store errors are
// returned as they are.
func (e *Executor) Execute(ctx context.Context, plan Plan) ([]bson.M, error) {
	log := e.logger.With("execution", helpers.GenerateUUID(), "schema", plan.Schema.Name)
	coll := e.collection(plan.Schema)

	var docs []bson.M
	if plan.Single {
		doc, err := coll.FindOne(ctx, plan.Filter)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			docs = []bson.M{doc}
		}
	} else {
		found, err := coll.Find(ctx, plan.Filter)
		if err != nil {
			return nil, err
		}
		docs = found
	}

	if len(docs) == 0 {
		log.Debugw("no documents matched, skipping populate", "populates", len(plan.Populates))
		return docs, nil
	}

	for _, req := range plan.Populates {
		if err := e.populate(ctx, log, docs, req, plan.Schema); err != nil {
			return nil, err
		}
	}

	log.Debugw("query executed", "count", len(docs), "populated", plan.PopulatedFields())
	return docs, nil
}

func (e *Executor) collection(def schemas.Definition) store.Collection {
	return e.client.Database(def.DB).Collection(def.Collection)
}
