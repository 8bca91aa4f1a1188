package fields

import (
	"reflect"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tsotimus/monkko/src/helpers"
)

// Check validates value against d using the same rules GoType infers. A nil
// value is treated as absent and always passes; presence of required fields
// is the caller's concern. Nested object fields are reported with dotted
// paths.
func Check(name string, d Descriptor, value interface{}) error {
	if value == nil {
		return nil
	}

	if d.many {
		items, ok := asList(value)
		if !ok {
			return invalid(name, "expected an array, got %T", value)
		}
		for i, item := range items {
			if err := checkOne(name+"."+strconv.Itoa(i), d, item); err != nil {
				return err
			}
		}
		return nil
	}

	return checkOne(name, d, value)
}

func checkOne(name string, d Descriptor, value interface{}) error {
	if value == nil {
		return nil
	}

	switch d.kind {
	case KindString:
		s, ok := value.(string)
		if !ok {
			return invalid(name, "expected a string, got %T", value)
		}
		return checkString(name, d, s)
	case KindNumber:
		n, ok := helpers.ToFloat(value)
		if !ok {
			return invalid(name, "expected a number, got %T", value)
		}
		if d.min != nil && n < *d.min {
			return invalid(name, "%v is below the minimum %v", n, *d.min)
		}
		if d.max != nil && n > *d.max {
			return invalid(name, "%v is above the maximum %v", n, *d.max)
		}
		return nil
	case KindBoolean:
		if _, ok := value.(bool); !ok {
			return invalid(name, "expected a boolean, got %T", value)
		}
		return nil
	case KindDate:
		switch value.(type) {
		case time.Time, primitive.DateTime:
			return nil
		}
		return invalid(name, "expected a date, got %T", value)
	case KindReference:
		switch v := value.(type) {
		case primitive.ObjectID:
			return nil
		case string:
			if v == "" {
				return invalid(name, "empty identifier")
			}
			return nil
		}
		return invalid(name, "expected an identifier, got %T", value)
	case KindObject:
		doc, ok := asMap(value)
		if !ok {
			return invalid(name, "expected an embedded document, got %T", value)
		}
		for _, nestedName := range SortedNames(d.fields) {
			nested := d.fields[nestedName]
			v, present := doc[nestedName]
			if (!present || v == nil) && nested.IsRequired() {
				return invalid(name+"."+nestedName, "is required")
			}
			if err := Check(name+"."+nestedName, nested, v); err != nil {
				return err
			}
		}
		return nil
	default:
		return invalid(name, "unknown field kind '%s'", d.kind)
	}
}

func checkString(name string, d Descriptor, s string) error {
	length := utf8.RuneCountInString(s)
	if d.minLength > 0 && length < d.minLength {
		return invalid(name, "length %d is shorter than %d", length, d.minLength)
	}
	if d.maxLength > 0 && length > d.maxLength {
		return invalid(name, "length %d is longer than %d", length, d.maxLength)
	}
	if d.pattern != "" {
		re, err := regexp.Compile(d.pattern)
		if err != nil {
			return invalid(name, "bad pattern %q: %v", d.pattern, err)
		}
		if !re.MatchString(s) {
			return invalid(name, "%q does not match %q", s, d.pattern)
		}
	}
	if len(d.enum) > 0 {
		for _, allowed := range d.enum {
			if s == allowed {
				return nil
			}
		}
		return invalid(name, "%q is not one of %v", s, d.enum)
	}
	return nil
}

func asMap(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case bson.M:
		return v, true
	case map[string]interface{}:
		return v, true
	case bson.D:
		return v.Map(), true
	default:
		return nil, false
	}
}

func asList(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case bson.A:
		return v, true
	case []interface{}:
		return v, true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
