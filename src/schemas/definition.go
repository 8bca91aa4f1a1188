package schemas

import (
	"regexp"
	"strings"

	"github.com/tsotimus/monkko/src/fields"
)

// Names of the fields maintained when Options.Timestamps is set.
const (
	CreatedAtField = "createdAt"
	UpdatedAtField = "updatedAt"
	IDField        = "_id"
)

// Options are per-schema behaviours applied by the model layer.
type Options struct {
	// Timestamps stamps createdAt and updatedAt on create.
	Timestamps bool `yaml:"timestamps" json:"timestamps"`
	// StampUpdates additionally refreshes updatedAt on every update. It
	// requires Timestamps.
	StampUpdates bool `yaml:"stampUpdates" json:"stampUpdates"`
}

// Definition is the plain-data description of one collection's documents.
// Name is the key other schemas use in reference fields; it need not match
// the Go identifier holding the definition.
type Definition struct {
	Name       string
	DB         string
	Collection string
	Fields     map[string]fields.Descriptor
	Options    Options
}

// Field returns the descriptor of a top-level field.
func (d Definition) Field(name string) (fields.Descriptor, bool) {
	f, ok := d.Fields[name]
	return f, ok
}

// FieldNames returns the top-level field names in lexical order.
func (d Definition) FieldNames() []string {
	return fields.SortedNames(d.Fields)
}

// DefineSchema validates def and returns it with its field map snapshotted.
func DefineSchema(def Definition) (Definition, error) {
	if strings.TrimSpace(def.Name) == "" {
		return Definition{}, &DefinitionError{Schema: def.Name, Reason: "name is required"}
	}
	if strings.TrimSpace(def.DB) == "" {
		return Definition{}, &DefinitionError{Schema: def.Name, Reason: "db is required"}
	}
	if strings.TrimSpace(def.Collection) == "" {
		return Definition{}, &DefinitionError{Schema: def.Name, Reason: "collection is required"}
	}
	if len(def.Fields) == 0 {
		return Definition{}, &DefinitionError{Schema: def.Name, Reason: "at least one field is required"}
	}
	if def.Options.StampUpdates && !def.Options.Timestamps {
		return Definition{}, &DefinitionError{Schema: def.Name, Reason: "stampUpdates requires timestamps"}
	}

	if err := validateFields(def.Name, "", def.Fields); err != nil {
		return Definition{}, err
	}

	if def.Options.Timestamps {
		for _, reserved := range []string{CreatedAtField, UpdatedAtField} {
			if _, exists := def.Fields[reserved]; exists {
				return Definition{}, &DefinitionError{Schema: def.Name, Field: reserved, Reason: "is maintained by timestamps"}
			}
		}
	}

	def.Fields = snapshot(def.Fields)
	return def, nil
}

// MustDefineSchema is like DefineSchema but panics on an invalid definition.
// It suits package-level schema variables.
func MustDefineSchema(def Definition) Definition {
	defined, err := DefineSchema(def)
	if err != nil {
		panic(err)
	}
	return defined
}

func validateFields(schema, prefix string, fieldMap map[string]fields.Descriptor) error {
	for _, name := range fields.SortedNames(fieldMap) {
		path := prefix + name
		d := fieldMap[name]

		switch {
		case strings.TrimSpace(name) == "":
			return &DefinitionError{Schema: schema, Field: path, Reason: "field name is empty"}
		case strings.HasPrefix(name, "$"):
			return &DefinitionError{Schema: schema, Field: path, Reason: "field name must not start with '$'"}
		case strings.Contains(name, "."):
			return &DefinitionError{Schema: schema, Field: path, Reason: "field name must not contain '.'"}
		case prefix == "" && name == IDField:
			return &DefinitionError{Schema: schema, Field: path, Reason: "_id is implicit"}
		}

		if !d.Kind().Valid() {
			return &DefinitionError{Schema: schema, Field: path, Reason: "unknown field kind '" + string(d.Kind()) + "'"}
		}

		switch d.Kind() {
		case fields.KindReference:
			if d.Ref() == "" {
				return &DefinitionError{Schema: schema, Field: path, Reason: "reference field needs a ref"}
			}
		case fields.KindString:
			if d.Pattern() != "" {
				if _, err := regexp.Compile(d.Pattern()); err != nil {
					return &DefinitionError{Schema: schema, Field: path, Reason: "bad pattern: " + err.Error()}
				}
			}
			if d.MaxLength() > 0 && d.MinLength() > d.MaxLength() {
				return &DefinitionError{Schema: schema, Field: path, Reason: "minLength exceeds maxLength"}
			}
		case fields.KindNumber:
			min, hasMin := d.Min()
			max, hasMax := d.Max()
			if hasMin && hasMax && min > max {
				return &DefinitionError{Schema: schema, Field: path, Reason: "min exceeds max"}
			}
		case fields.KindObject:
			nested := d.Fields()
			if len(nested) == 0 {
				return &DefinitionError{Schema: schema, Field: path, Reason: "object field has no fields"}
			}
			if err := validateFields(schema, path+".", nested); err != nil {
				return err
			}
		}
	}
	return nil
}

func snapshot(in map[string]fields.Descriptor) map[string]fields.Descriptor {
	out := make(map[string]fields.Descriptor, len(in))
	for name, d := range in {
		out[name] = d
	}
	return out
}
