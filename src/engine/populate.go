package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/tsotimus/monkko/src/fields"
	"github.com/tsotimus/monkko/src/helpers"
	"github.com/tsotimus/monkko/src/schemas"
)

// Populate resolves the reference fields named by req in docs, in place.
// Fields that cannot be resolved are skipped with a warning. Documents are
// never removed or reordered, and identifiers with no matching document are
// left as they are.
func (e *Executor) Populate(ctx context.Context, docs []bson.M, req PopulateRequest, schema schemas.Definition) error {
	return e.populate(ctx, e.logger.With("schema", schema.Name), docs, req, schema)
}

func (e *Executor) populate(ctx context.Context, log *zap.SugaredLogger, docs []bson.M, req PopulateRequest, schema schemas.Definition) error {
	switch req.Strategy {
	case StrategyMultiple, "":
	case StrategyAggregation:
		log.Debugw("aggregation strategy runs as batched lookups", "fields", req.Fields)
	default:
		log.Warnw("unknown populate strategy, using batched lookups", "strategy", req.Strategy, "fields", req.Fields)
	}

	for _, field := range req.Fields {
		if err := e.populateField(ctx, log, docs, field, req.Select, schema); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) populateField(ctx context.Context, log *zap.SugaredLogger, docs []bson.M, field string, selectFields []string, schema schemas.Definition) error {
	d, ok := schema.Field(field)
	if !ok {
		log.Warnw("populate skipped: field is not declared", "field", field)
		return nil
	}
	if d.Kind() != fields.KindReference {
		log.Warnw("populate skipped: field is not a reference", "field", field, "kind", d.Kind())
		return nil
	}
	if d.Ref() == "" {
		log.Warnw("populate skipped: reference has no target schema", "field", field)
		return nil
	}

	target, ok := e.catalog.Lookup(d.Ref())
	if !ok {
		log.Warnw("populate skipped: reference target is not registered, create its model first",
			"field", field, "target", d.Ref())
		return nil
	}

	ids := e.collectIDs(log, docs, field)
	if len(ids) == 0 {
		log.Debugw("nothing to populate", "field", field)
		return nil
	}

	var opts []*options.FindOptions
	if len(selectFields) > 0 {
		projection := bson.M{}
		for _, f := range selectFields {
			projection[f] = 1
		}
		projection[schemas.IDField] = 1
		opts = append(opts, options.Find().SetProjection(projection))
	}

	found, err := e.collection(target).Find(ctx, bson.M{schemas.IDField: bson.M{"$in": ids}}, opts...)
	if err != nil {
		return err
	}

	byID := make(map[string]bson.M, len(found))
	for _, doc := range found {
		byID[helpers.IDString(doc[schemas.IDField])] = doc
	}

	for _, doc := range docs {
		value, present := doc[field]
		if !present || value == nil {
			continue
		}
		if list, ok := asList(value); ok {
			spliced := make(bson.A, len(list))
			for i, item := range list {
				spliced[i] = resolve(item, byID)
			}
			doc[field] = spliced
			continue
		}
		doc[field] = resolve(value, byID)
	}

	log.Debugw("populated field", "field", field, "target", target.Name, "requested", len(ids), "resolved", len(found))
	return nil
}

// collectIDs gathers the distinct identifiers held by field across docs.
// Strings that parse as ObjectIDs are converted, anything else is matched
// verbatim.
func (e *Executor) collectIDs(log *zap.SugaredLogger, docs []bson.M, field string) bson.A {
	seen := make(map[string]bool)
	ids := bson.A{}

	add := func(value interface{}) {
		if value == nil || isDocument(value) {
			return
		}
		if s, ok := value.(string); ok {
			parsed, valid := helpers.ParseID(s)
			if !valid {
				log.Warnw("reference is not an ObjectID, matching it verbatim", "field", field, "id", s)
			}
			value = parsed
		}
		key := helpers.IDString(value)
		if seen[key] {
			return
		}
		seen[key] = true
		ids = append(ids, value)
	}

	for _, doc := range docs {
		value := doc[field]
		if list, ok := asList(value); ok {
			for _, item := range list {
				add(item)
			}
			continue
		}
		add(value)
	}
	return ids
}

// resolve maps one stored reference to its document. Each splice gets its
// own copy so parents sharing a reference do not share state.
func resolve(value interface{}, byID map[string]bson.M) interface{} {
	if value == nil || isDocument(value) {
		return value
	}
	if doc, ok := byID[helpers.IDString(value)]; ok {
		return helpers.CloneDocument(doc)
	}
	return value
}

func isDocument(value interface{}) bool {
	switch value.(type) {
	case bson.M, map[string]interface{}, bson.D:
		return true
	}
	return false
}

func asList(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case bson.A:
		return v, true
	case []interface{}:
		return v, true
	}
	return nil, false
}
