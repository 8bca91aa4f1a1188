package store

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tsotimus/monkko/src/helpers"
)

// matchDocument evaluates a query filter against doc the way the server
// does for the operators the in-memory store supports.
func matchDocument(doc bson.M, filter bson.M) (bool, error) {
	for key, cond := range filter {
		var ok bool
		var err error

		switch key {
		case "$and", "$or", "$nor":
			ok, err = matchLogical(doc, key, cond)
		default:
			if strings.HasPrefix(key, "$") {
				return false, fmt.Errorf("%w: %s", ErrUnknownOperator, key)
			}
			value, found := lookupPath(doc, key)
			ok, err = matchCondition(value, found, cond)
		}

		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchLogical(doc bson.M, op string, cond interface{}) (bool, error) {
	list, ok := cond.(bson.A)
	if !ok || len(list) == 0 {
		return false, fmt.Errorf("%w: %s needs a non-empty array", ErrBadFilter, op)
	}

	for _, item := range list {
		sub, ok := item.(bson.M)
		if !ok {
			return false, fmt.Errorf("%w: %s entries must be documents", ErrBadFilter, op)
		}
		matched, err := matchDocument(doc, sub)
		if err != nil {
			return false, err
		}
		switch {
		case op == "$and" && !matched:
			return false, nil
		case op == "$or" && matched:
			return true, nil
		case op == "$nor" && matched:
			return false, nil
		}
	}

	return op != "$or", nil
}

func matchCondition(value interface{}, found bool, cond interface{}) (bool, error) {
	ops, ok := operatorDocument(cond)
	if !ok {
		return equalsValue(value, cond), nil
	}

	for op, arg := range ops {
		matched, err := applyOperator(op, value, found, arg)
		if err != nil {
			return false, err
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

func applyOperator(op string, value interface{}, found bool, arg interface{}) (bool, error) {
	switch op {
	case "$eq":
		return equalsValue(value, arg), nil
	case "$ne":
		return !equalsValue(value, arg), nil
	case "$gt":
		return compareAny(value, arg, func(c int) bool { return c > 0 }), nil
	case "$gte":
		return compareAny(value, arg, func(c int) bool { return c >= 0 }), nil
	case "$lt":
		return compareAny(value, arg, func(c int) bool { return c < 0 }), nil
	case "$lte":
		return compareAny(value, arg, func(c int) bool { return c <= 0 }), nil
	case "$in", "$nin":
		list, ok := arg.(bson.A)
		if !ok {
			return false, fmt.Errorf("%w: %s needs an array", ErrBadFilter, op)
		}
		in := false
		for _, candidate := range list {
			if equalsValue(value, candidate) {
				in = true
				break
			}
		}
		if op == "$in" {
			return in, nil
		}
		return !in, nil
	case "$exists":
		return found == truthy(arg), nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownOperator, op)
	}
}

// operatorDocument reports whether cond is a document made only of
// operators, as opposed to a literal embedded document to compare against.
func operatorDocument(cond interface{}) (bson.M, bool) {
	m, ok := cond.(bson.M)
	if !ok || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return m, true
}

// lookupPath resolves a dotted path. Crossing an array either indexes it
// numerically or collects the rest of the path from every element.
func lookupPath(doc bson.M, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var cur interface{} = doc

	for i, part := range parts {
		switch v := cur.(type) {
		case bson.M:
			next, ok := v[part]
			if !ok {
				return nil, false
			}
			cur = next
		case bson.A:
			if idx, err := strconv.Atoi(part); err == nil {
				if idx < 0 || idx >= len(v) {
					return nil, false
				}
				cur = v[idx]
				continue
			}

			rest := strings.Join(parts[i:], ".")
			var out bson.A
			for _, el := range v {
				sub, ok := el.(bson.M)
				if !ok {
					continue
				}
				if val, found := lookupPath(sub, rest); found {
					if arr, ok := val.(bson.A); ok {
						out = append(out, arr...)
					} else {
						out = append(out, val)
					}
				}
			}
			if len(out) == 0 {
				return nil, false
			}
			return out, true
		default:
			return nil, false
		}
	}

	return cur, true
}

// equalsValue matches value against target, or any element of value when
// value is an array.
func equalsValue(value, target interface{}) bool {
	if valuesEqual(value, target) {
		return true
	}
	if arr, ok := value.(bson.A); ok {
		for _, el := range arr {
			if valuesEqual(el, target) {
				return true
			}
		}
	}
	return false
}

func valuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if af, ok := helpers.ToFloat(a); ok {
		bf, ok := helpers.ToFloat(b)
		return ok && af == bf
	}

	if ad, ok := asDateTime(a); ok {
		bd, ok := asDateTime(b)
		return ok && ad == bd
	}

	return reflect.DeepEqual(a, b)
}

func compareAny(value, arg interface{}, pred func(int) bool) bool {
	if arr, ok := value.(bson.A); ok {
		for _, el := range arr {
			if c, ok := compareValues(el, arg); ok && pred(c) {
				return true
			}
		}
		return false
	}

	c, ok := compareValues(value, arg)
	return ok && pred(c)
}

// compareValues orders two values of the same BSON type. Values of
// different types are not comparable.
func compareValues(a, b interface{}) (int, bool) {
	if af, ok := helpers.ToFloat(a); ok {
		bf, ok := helpers.ToFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}

	if ad, ok := asDateTime(a); ok {
		bd, ok := asDateTime(b)
		if !ok {
			return 0, false
		}
		switch {
		case ad < bd:
			return -1, true
		case ad > bd:
			return 1, true
		}
		return 0, true
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case primitive.ObjectID:
		bv, ok := b.(primitive.ObjectID)
		if !ok {
			return 0, false
		}
		return bytes.Compare(av[:], bv[:]), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		}
		return 1, true
	}

	return 0, false
}

func asDateTime(v interface{}) (primitive.DateTime, bool) {
	switch t := v.(type) {
	case primitive.DateTime:
		return t, true
	case time.Time:
		return primitive.NewDateTimeFromTime(t), true
	}
	return 0, false
}

func truthy(v interface{}) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	if n, ok := helpers.ToFloat(v); ok {
		return n != 0
	}
	return v != nil
}
