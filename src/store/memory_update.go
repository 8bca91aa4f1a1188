package store

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

func validateUpdate(update bson.M) error {
	if len(update) == 0 {
		return ErrReplacementUpdate
	}
	for op, arg := range update {
		if !strings.HasPrefix(op, "$") {
			return ErrReplacementUpdate
		}
		if _, ok := arg.(bson.M); !ok {
			return fmt.Errorf("%w: %s expects a document", ErrBadUpdate, op)
		}
		switch op {
		case "$set", "$unset", "$inc":
		default:
			return fmt.Errorf("%w: %s", ErrUnknownOperator, op)
		}
	}
	return nil
}

// applyUpdate applies a validated update document to doc in place. Callers
// pass a copy so a failed update leaves the stored document untouched.
func applyUpdate(doc bson.M, update bson.M) error {
	for op, arg := range update {
		for path, value := range arg.(bson.M) {
			if path == "_id" && (op != "$set" || !valuesEqual(doc["_id"], value)) {
				return ErrImmutableID
			}

			var err error
			switch op {
			case "$set":
				err = setPath(doc, path, value)
			case "$unset":
				unsetPath(doc, path)
			case "$inc":
				err = incPath(doc, path, value)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func setPath(doc bson.M, path string, value interface{}) error {
	parts := strings.Split(path, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		existing, ok := cur[part]
		if !ok || existing == nil {
			next := bson.M{}
			cur[part] = next
			cur = next
			continue
		}
		next, ok := existing.(bson.M)
		if !ok {
			return fmt.Errorf("%w: cannot create field in non-document '%s'", ErrBadUpdate, part)
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
	return nil
}

func unsetPath(doc bson.M, path string) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(bson.M)
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, parts[len(parts)-1])
}

func incPath(doc bson.M, path string, delta interface{}) error {
	if !isNumber(delta) {
		return fmt.Errorf("%w: increment for '%s' is %T", ErrNonNumericIncrease, path, delta)
	}

	current, found := lookupPath(doc, path)
	if !found || current == nil {
		return setPath(doc, path, delta)
	}
	if !isNumber(current) {
		return fmt.Errorf("%w: '%s' holds %T", ErrNonNumericIncrease, path, current)
	}
	return setPath(doc, path, addNumbers(current, delta))
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int32, int64, float64:
		return true
	}
	return false
}

// addNumbers keeps integer results integral. Two int32 operands stay int32,
// mixed integers widen to int64 and any float makes the result a double.
func addNumbers(a, b interface{}) interface{} {
	ai, aInt := asInt64(a)
	bi, bInt := asInt64(b)
	if aInt && bInt {
		_, a32 := a.(int32)
		_, b32 := b.(int32)
		if a32 && b32 {
			return int32(ai + bi)
		}
		return ai + bi
	}

	af, _ := toFloat64(a)
	bf, _ := toFloat64(b)
	return af + bf
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func toFloat64(v interface{}) (float64, bool) {
	if f, ok := v.(float64); ok {
		return f, true
	}
	n, ok := asInt64(v)
	return float64(n), ok
}

// project applies an inclusion or exclusion projection. _id is kept unless
// it is explicitly excluded.
func project(doc bson.M, projection bson.M) (bson.M, error) {
	if len(projection) == 0 {
		return doc, nil
	}

	include := false
	exclude := false
	for field, v := range projection {
		if field == "_id" {
			continue
		}
		if truthy(v) {
			include = true
		} else {
			exclude = true
		}
	}
	if include && exclude {
		return nil, fmt.Errorf("%w: cannot mix inclusion and exclusion in a projection", ErrBadFilter)
	}

	keepID := true
	if v, ok := projection["_id"]; ok {
		keepID = truthy(v)
	}

	if !include {
		for field := range projection {
			if field == "_id" && keepID {
				continue
			}
			unsetPath(doc, field)
		}
		return doc, nil
	}

	out := bson.M{}
	for field := range projection {
		if field == "_id" {
			continue
		}
		if value, found := lookupPath(doc, field); found {
			if err := setPath(out, field, value); err != nil {
				return nil, err
			}
		}
	}
	if id, ok := doc["_id"]; ok && keepID {
		out["_id"] = id
	}
	return out, nil
}
