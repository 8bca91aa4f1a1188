package schemas

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tsotimus/monkko/src/fields"
	"github.com/tsotimus/monkko/src/helpers"
)

// Validate checks doc against every declared field of def. Missing required
// fields and values that do not conform to their descriptor are collected
// into one *ValidationError. Keys not declared in def are ignored.
func Validate(def Definition, doc bson.M) error {
	var problems []error

	for _, name := range def.FieldNames() {
		d := def.Fields[name]
		value, present := doc[name]
		if (!present || value == nil) && d.IsRequired() {
			problems = append(problems, &fields.ValueError{Field: name, Reason: "is required"})
			continue
		}
		if err := fields.Check(name, d, value); err != nil {
			problems = append(problems, err)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Schema: def.Name, Problems: problems}
	}
	return nil
}

// ApplyDefaults fills absent fields that declare a default, recursing into
// embedded documents that are present. Defaults are stored in their BSON
// form: dates as primitive.DateTime and reference defaults as ObjectIDs when
// they parse as one.
func ApplyDefaults(def Definition, doc bson.M) {
	applyDefaults(def.Fields, doc)
}

func applyDefaults(fieldMap map[string]fields.Descriptor, doc bson.M) {
	for name, d := range fieldMap {
		value, present := doc[name]
		if !present || value == nil {
			if def, ok := d.Default(); ok {
				doc[name] = bsonDefault(d, def)
			}
			continue
		}
		if d.Kind() == fields.KindObject && !d.Many() {
			if nested, ok := value.(bson.M); ok {
				applyDefaults(d.Fields(), nested)
			}
		}
	}
}

func bsonDefault(d fields.Descriptor, def interface{}) interface{} {
	switch d.Kind() {
	case fields.KindDate:
		if t, ok := def.(time.Time); ok {
			return primitive.NewDateTimeFromTime(t)
		}
	case fields.KindReference:
		if s, ok := def.(string); ok {
			id, _ := helpers.ParseID(s)
			return id
		}
	}
	return def
}
