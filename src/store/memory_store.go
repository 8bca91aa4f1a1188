package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/tsotimus/monkko/src/helpers"
)

// MemoryClient is an in-memory document store with the Client contract.
// Documents are stored as detached BSON copies, so callers never share
// state with the store. Unique indexes skip documents that lack the field.
type MemoryClient struct {
	mu        sync.Mutex
	databases map[string]*memoryDatabase
	journal   *Journal
	logger    *zap.SugaredLogger
}

func NewMemoryClient(logger *zap.SugaredLogger) *MemoryClient {
	return &MemoryClient{
		databases: make(map[string]*memoryDatabase),
		journal:   &Journal{},
		logger:    helpers.OrNop(logger),
	}
}

func (c *MemoryClient) Database(name string) Database {
	c.mu.Lock()
	defer c.mu.Unlock()

	db, ok := c.databases[name]
	if !ok {
		db = &memoryDatabase{
			name:        name,
			collections: make(map[string]*memoryCollection),
			client:      c,
		}
		c.databases[name] = db
	}
	return db
}

// Journal returns the operation log shared by every collection of c.
func (c *MemoryClient) Journal() *Journal {
	return c.journal
}

type memoryDatabase struct {
	name        string
	mu          sync.Mutex
	collections map[string]*memoryCollection
	client      *MemoryClient
}

func (d *memoryDatabase) Name() string {
	return d.name
}

func (d *memoryDatabase) Collection(name string) Collection {
	d.mu.Lock()
	defer d.mu.Unlock()

	coll, ok := d.collections[name]
	if !ok {
		coll = &memoryCollection{
			name:      name,
			namespace: d.name + "." + name,
			unique:    make(map[string]string),
			journal:   d.client.journal,
			logger:    d.client.logger,
		}
		d.collections[name] = coll
	}
	return coll
}

type memoryCollection struct {
	name      string
	namespace string

	mu     sync.RWMutex
	docs   []bson.M
	unique map[string]string // field -> index name

	journal *Journal
	logger  *zap.SugaredLogger
}

func (c *memoryCollection) Name() string {
	return c.name
}

func (c *memoryCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]bson.M, error) {
	var projection interface{}
	var skip, limit int64
	for _, o := range opts {
		if o == nil {
			continue
		}
		if o.Projection != nil {
			projection = o.Projection
		}
		if o.Skip != nil {
			skip = *o.Skip
		}
		if o.Limit != nil {
			limit = *o.Limit
		}
	}

	if limit < 0 {
		limit = -limit
	}
	return c.find(ctx, "find", filter, projection, skip, limit)
}

func (c *memoryCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (bson.M, error) {
	var projection interface{}
	var skip int64
	for _, o := range opts {
		if o == nil {
			continue
		}
		if o.Projection != nil {
			projection = o.Projection
		}
		if o.Skip != nil {
			skip = *o.Skip
		}
	}

	docs, err := c.find(ctx, "findOne", filter, projection, skip, 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func (c *memoryCollection) find(ctx context.Context, command string, filter, projection interface{}, skip, limit int64) ([]bson.M, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := helpers.ToDocument(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFilter, err)
	}
	proj, err := helpers.ToDocument(projection)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFilter, err)
	}

	c.journal.record(command, c.namespace, f)

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []bson.M{}
	var skipped int64
	for _, doc := range c.docs {
		ok, err := matchDocument(doc, f)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if skipped < skip {
			skipped++
			continue
		}

		projected, err := project(helpers.CloneDocument(doc), proj)
		if err != nil {
			return nil, err
		}
		out = append(out, projected)

		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}

	c.logger.Debugw("find", "namespace", c.namespace, "count", len(out))
	return out, nil
}

func (c *memoryCollection) InsertOne(ctx context.Context, document interface{}) (*mongo.InsertOneResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := helpers.ToDocument(document)
	if err != nil {
		return nil, err
	}
	if id, ok := doc["_id"]; !ok || id == nil {
		doc["_id"] = primitive.NewObjectID()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUnique(doc, -1); err != nil {
		return nil, err
	}

	c.docs = append(c.docs, doc)
	c.journal.record("insert", c.namespace, bson.M{"_id": doc["_id"]})
	return &mongo.InsertOneResult{InsertedID: doc["_id"]}, nil
}

func (c *memoryCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := helpers.ToDocument(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFilter, err)
	}
	u, err := helpers.ToDocument(update)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadUpdate, err)
	}
	if err := validateUpdate(u); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.journal.record("update", c.namespace, f)

	idx, err := c.firstMatch(f)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return &mongo.UpdateResult{}, nil
	}

	updated := helpers.CloneDocument(c.docs[idx])
	if err := applyUpdate(updated, u); err != nil {
		return nil, err
	}
	// Round trip once more so stored values keep their BSON types.
	updated = helpers.CloneDocument(updated)
	if err := c.checkUnique(updated, idx); err != nil {
		return nil, err
	}

	result := &mongo.UpdateResult{MatchedCount: 1}
	if !reflect.DeepEqual(c.docs[idx], updated) {
		result.ModifiedCount = 1
		c.docs[idx] = updated
	}
	return result, nil
}

func (c *memoryCollection) DeleteOne(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := helpers.ToDocument(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFilter, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.journal.record("delete", c.namespace, f)

	idx, err := c.firstMatch(f)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return &mongo.DeleteResult{}, nil
	}

	c.docs = append(c.docs[:idx], c.docs[idx+1:]...)
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func (c *memoryCollection) CreateUniqueIndex(ctx context.Context, field string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	name := IndexName(field)
	if _, ok := c.unique[field]; ok {
		return name, nil
	}

	for i, doc := range c.docs {
		value, found := lookupPath(doc, field)
		if !found {
			continue
		}
		for _, other := range c.docs[i+1:] {
			if otherValue, ok := lookupPath(other, field); ok && valuesEqual(value, otherValue) {
				return "", duplicateKeyError(c.namespace, name, fmt.Sprintf("%s: %v", field, value))
			}
		}
	}

	c.unique[field] = name
	c.journal.record("createIndex", c.namespace, bson.M{field: 1})
	c.logger.Debugw("created unique index", "namespace", c.namespace, "index", name)
	return name, nil
}

func (c *memoryCollection) firstMatch(filter bson.M) (int, error) {
	for i, doc := range c.docs {
		ok, err := matchDocument(doc, filter)
		if err != nil {
			return -1, err
		}
		if ok {
			return i, nil
		}
	}
	return -1, nil
}

// checkUnique must be called with the write lock held. skip is the index of
// the document being replaced, or -1 for an insert.
func (c *memoryCollection) checkUnique(doc bson.M, skip int) error {
	for i, other := range c.docs {
		if i == skip {
			continue
		}
		if valuesEqual(other["_id"], doc["_id"]) {
			return duplicateKeyError(c.namespace, "_id_", fmt.Sprintf("_id: %v", doc["_id"]))
		}
	}

	for field, index := range c.unique {
		value, found := lookupPath(doc, field)
		if !found {
			continue
		}
		for i, other := range c.docs {
			if i == skip {
				continue
			}
			if otherValue, ok := lookupPath(other, field); ok && valuesEqual(value, otherValue) {
				return duplicateKeyError(c.namespace, index, fmt.Sprintf("%s: %v", field, value))
			}
		}
	}
	return nil
}
