package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tsotimus/monkko/src/fields"
	"github.com/tsotimus/monkko/src/schemas"
	"github.com/tsotimus/monkko/src/store"
)

func orgSchema() schemas.Definition {
	return schemas.MustDefineSchema(schemas.Definition{
		Name:       "Organisation",
		DB:         "app",
		Collection: "organisations",
		Fields: map[string]fields.Descriptor{
			"name":     fields.String(fields.StringProps{Required: true}),
			"industry": fields.String(fields.StringProps{Optional: true}),
		},
	})
}

func teamSchema() schemas.Definition {
	return schemas.MustDefineSchema(schemas.Definition{
		Name:       "Team",
		DB:         "app",
		Collection: "teams",
		Fields: map[string]fields.Descriptor{
			"name": fields.String(fields.StringProps{Required: true}),
		},
	})
}

func userSchema() schemas.Definition {
	return schemas.MustDefineSchema(schemas.Definition{
		Name:       "User",
		DB:         "app",
		Collection: "users",
		Fields: map[string]fields.Descriptor{
			"name":           fields.String(fields.StringProps{Required: true}),
			"organisationId": fields.Reference(fields.ReferenceProps{Ref: "Organisation", Optional: true}),
			"teamIds":        fields.Array(fields.Reference(fields.ReferenceProps{Ref: "Team", Optional: true})),
			"mentorId":       fields.Reference(fields.ReferenceProps{Ref: "Mentor", Optional: true}),
		},
	})
}

type fixture struct {
	client   *store.MemoryClient
	catalog  *schemas.Catalog
	executor *Executor
	logs     *observer.ObservedLogs

	users store.Collection
	orgs  store.Collection
	teams store.Collection
}

// newFixture registers User plus the given targets, so leaving a target out
// simulates a model that was never created.
func newFixture(targets ...schemas.Definition) *fixture {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core).Sugar()

	client := store.NewMemoryClient(logger)
	catalog := schemas.NewCatalog()
	catalog.Register(userSchema())
	for _, def := range targets {
		catalog.Register(def)
	}

	db := client.Database("app")
	return &fixture{
		client:   client,
		catalog:  catalog,
		executor: NewExecutor(client, catalog, logger),
		logs:     logs,
		users:    db.Collection("users"),
		orgs:     db.Collection("organisations"),
		teams:    db.Collection("teams"),
	}
}

func (f *fixture) insert(t *testing.T, coll store.Collection, doc bson.M) interface{} {
	res, err := coll.InsertOne(context.Background(), doc)
	require.NoError(t, err)
	return res.InsertedID
}

func (f *fixture) find(filter interface{}) *Query {
	return NewQuery(f.executor, userSchema(), filter)
}

func (f *fixture) findOne(filter interface{}) *SingleQuery {
	return NewSingleQuery(f.executor, userSchema(), filter)
}

func (f *fixture) lookups(collection string) int {
	return f.client.Journal().Count("find", "app."+collection)
}

func (f *fixture) warnings(snippet string) int {
	return f.logs.FilterLevelExact(zapcore.WarnLevel).FilterMessageSnippet(snippet).Len()
}
