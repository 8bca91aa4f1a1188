package engine

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tsotimus/monkko/src/schemas"
)

// deferred holds the plan shared by Query and SingleQuery and runs it at
// most once.
type deferred struct {
	executor *Executor

	mu      sync.Mutex
	plan    Plan
	started bool

	once sync.Once
	docs []bson.M
	err  error
}

func newDeferred(executor *Executor, schema schemas.Definition, filter interface{}, single bool) *deferred {
	return &deferred{
		executor: executor,
		plan: Plan{
			Schema: schema,
			Filter: filter,
			Single: single,
		},
	}
}

func (d *deferred) addPopulate(req PopulateRequest) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		panic(&IllegalStateError{Schema: d.plan.Schema.Name, Op: "populate"})
	}
	d.plan.Populates = append(d.plan.Populates, req)
}

func (d *deferred) snapshot() Plan {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.plan.Clone()
}

// run executes the plan on first call. Later calls return the memoized
// result and ignore ctx.
func (d *deferred) run(ctx context.Context) ([]bson.M, error) {
	d.once.Do(func() {
		d.mu.Lock()
		d.started = true
		plan := d.plan.Clone()
		d.mu.Unlock()

		d.docs, d.err = d.executor.Execute(ctx, plan)
	})
	return d.docs, d.err
}

// Query is a deferred multi-document query. Nothing is fetched until Exec.
type Query struct {
	d *deferred
}

func NewQuery(executor *Executor, schema schemas.Definition, filter interface{}) *Query {
	return &Query{d: newDeferred(executor, schema, filter, false)}
}

// Populate records a request to resolve field and returns the same query.
// It panics with an *IllegalStateError once Exec has been called.
func (q *Query) Populate(field string, opts ...PopulateOption) *Query {
	return q.PopulateFields([]string{field}, opts...)
}

func (q *Query) PopulateFields(fieldNames []string, opts ...PopulateOption) *Query {
	q.d.addPopulate(NewPopulateRequest(fieldNames, opts...))
	return q
}

// Plan returns a copy of the query's current plan.
func (q *Query) Plan() Plan {
	return q.d.snapshot()
}

// Exec runs the query once. Every call returns the same documents and error.
func (q *Query) Exec(ctx context.Context) ([]bson.M, error) {
	return q.d.run(ctx)
}

// SingleQuery is a deferred query for at most one document.
type SingleQuery struct {
	d *deferred
}

func NewSingleQuery(executor *Executor, schema schemas.Definition, filter interface{}) *SingleQuery {
	return &SingleQuery{d: newDeferred(executor, schema, filter, true)}
}

func (q *SingleQuery) Populate(field string, opts ...PopulateOption) *SingleQuery {
	return q.PopulateFields([]string{field}, opts...)
}

func (q *SingleQuery) PopulateFields(fieldNames []string, opts ...PopulateOption) *SingleQuery {
	q.d.addPopulate(NewPopulateRequest(fieldNames, opts...))
	return q
}

func (q *SingleQuery) Plan() Plan {
	return q.d.snapshot()
}

// Exec runs the query once and returns the matched document, or nil when
// nothing matched.
func (q *SingleQuery) Exec(ctx context.Context) (bson.M, error) {
	docs, err := q.d.run(ctx)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}
