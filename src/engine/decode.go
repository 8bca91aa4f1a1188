package engine

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Decode converts a result document into T through BSON, so T may use bson
// struct tags. Declare reference fields as primitive.ObjectID for plain
// queries and as the referenced struct for populated ones.
func Decode[T any](doc bson.M) (T, error) {
	var out T
	if doc == nil {
		return out, ErrNilDocument
	}

	data, err := bson.Marshal(doc)
	if err != nil {
		return out, fmt.Errorf("error encoding document: %w", err)
	}
	if err := bson.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("error decoding document into %T: %w", out, err)
	}
	return out, nil
}

func DecodeAll[T any](docs []bson.M) ([]T, error) {
	out := make([]T, 0, len(docs))
	for i, doc := range docs {
		v, err := Decode[T](doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
