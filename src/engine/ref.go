package engine

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tsotimus/monkko/src/helpers"
	"github.com/tsotimus/monkko/src/schemas"
)

// Ref is the value of a reference field after a query. It is either
// Unresolved, holding only the stored identifier, or Resolved, holding the
// referenced document as well.
type Ref struct {
	ID  interface{}
	Doc bson.M
}

// RefOf classifies a reference field value.
func RefOf(value interface{}) Ref {
	switch v := value.(type) {
	case bson.M:
		return Ref{ID: v[schemas.IDField], Doc: v}
	case map[string]interface{}:
		doc := bson.M(v)
		return Ref{ID: doc[schemas.IDField], Doc: doc}
	case bson.D:
		doc := helpers.NormalizeDocument(v.Map())
		return Ref{ID: doc[schemas.IDField], Doc: doc}
	}
	return Ref{ID: value}
}

// RefsOf classifies every element of an array-valued reference field. A
// scalar value yields a single Ref and a nil value yields none.
func RefsOf(value interface{}) []Ref {
	if value == nil {
		return nil
	}
	list, ok := asList(value)
	if !ok {
		return []Ref{RefOf(value)}
	}
	out := make([]Ref, len(list))
	for i, item := range list {
		out[i] = RefOf(item)
	}
	return out
}

func (r Ref) IsResolved() bool {
	return r.Doc != nil
}

// IsZero reports whether the field was absent or null.
func (r Ref) IsZero() bool {
	return r.ID == nil && r.Doc == nil
}

// Key is the canonical textual form of the identifier.
func (r Ref) Key() string {
	if r.ID == nil {
		return ""
	}
	return helpers.IDString(r.ID)
}
