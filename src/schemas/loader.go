package schemas

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tsotimus/monkko/src/fields"
	"github.com/tsotimus/monkko/src/helpers"
)

type schemaFile struct {
	Schemas []schemaEntry `yaml:"schemas"`
}

type schemaEntry struct {
	Name       string               `yaml:"name"`
	DB         string               `yaml:"db"`
	Collection string               `yaml:"collection"`
	Options    Options              `yaml:"options"`
	Fields     map[string]fieldEntry `yaml:"fields"`
}

type fieldEntry struct {
	Type      string               `yaml:"type"`
	Required  bool                 `yaml:"required"`
	Optional  bool                 `yaml:"optional"`
	Unique    bool                 `yaml:"unique"`
	Array     bool                 `yaml:"array"`
	Default   interface{}          `yaml:"default"`
	MinLength int                  `yaml:"minLength"`
	MaxLength int                  `yaml:"maxLength"`
	Pattern   string               `yaml:"pattern"`
	Enum      []string             `yaml:"enum"`
	Min       *float64             `yaml:"min"`
	Max       *float64             `yaml:"max"`
	Ref       string               `yaml:"ref"`
	Fields    map[string]fieldEntry `yaml:"fields"`
}

// LoadFile reads schema definitions from a YAML file.
func LoadFile(path string) ([]Definition, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening schema file %s: %w", path, err)
	}
	defer file.Close()

	defs, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("error loading schema file %s: %w", path, err)
	}
	return defs, nil
}

// Load reads schema definitions from a YAML document of the form
//
//	schemas:
//	  - name: User
//	    db: app
//	    collection: users
//	    options: {timestamps: true}
//	    fields:
//	      name: {type: string, required: true}
//	      organisationId: {type: reference, ref: Organisation}
//
// Every definition goes through DefineSchema. Unknown keys and duplicate
// field names are rejected.
func Load(r io.Reader) ([]Definition, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var file schemaFile
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("error decoding schemas: %w", err)
	}

	defs := make([]Definition, 0, len(file.Schemas))
	seen := make(map[string]bool, len(file.Schemas))
	for _, entry := range file.Schemas {
		if seen[entry.Name] {
			return nil, &DefinitionError{Schema: entry.Name, Reason: "schema defined more than once"}
		}
		seen[entry.Name] = true

		fieldMap, err := buildFields(entry.Name, "", entry.Fields)
		if err != nil {
			return nil, err
		}

		def, err := DefineSchema(Definition{
			Name:       entry.Name,
			DB:         entry.DB,
			Collection: entry.Collection,
			Fields:     fieldMap,
			Options:    entry.Options,
		})
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func buildFields(schema, prefix string, entries map[string]fieldEntry) (map[string]fields.Descriptor, error) {
	out := make(map[string]fields.Descriptor, len(entries))
	for name, entry := range entries {
		d, err := buildField(schema, prefix+name, entry)
		if err != nil {
			return nil, err
		}
		out[name] = d
	}
	return out, nil
}

func buildField(schema, path string, entry fieldEntry) (fields.Descriptor, error) {
	var d fields.Descriptor

	switch fields.Kind(entry.Type) {
	case fields.KindString:
		props := fields.StringProps{
			Required:  entry.Required,
			Optional:  entry.Optional,
			Unique:    entry.Unique,
			MinLength: entry.MinLength,
			MaxLength: entry.MaxLength,
			Pattern:   entry.Pattern,
			Enum:      entry.Enum,
		}
		if entry.Default != nil {
			s, ok := entry.Default.(string)
			if !ok {
				return d, badDefault(schema, path, entry.Default)
			}
			props.Default = &s
		}
		d = fields.String(props)
	case fields.KindNumber:
		props := fields.NumberProps{
			Required: entry.Required,
			Optional: entry.Optional,
			Unique:   entry.Unique,
			Min:      entry.Min,
			Max:      entry.Max,
		}
		if entry.Default != nil {
			n, ok := helpers.ToFloat(entry.Default)
			if !ok {
				return d, badDefault(schema, path, entry.Default)
			}
			props.Default = &n
		}
		d = fields.Number(props)
	case fields.KindBoolean:
		props := fields.BooleanProps{Required: entry.Required, Optional: entry.Optional, Unique: entry.Unique}
		if entry.Default != nil {
			b, ok := entry.Default.(bool)
			if !ok {
				return d, badDefault(schema, path, entry.Default)
			}
			props.Default = &b
		}
		d = fields.Boolean(props)
	case fields.KindDate:
		props := fields.DateProps{Required: entry.Required, Optional: entry.Optional, Unique: entry.Unique}
		if entry.Default != nil {
			t, ok := parseDate(entry.Default)
			if !ok {
				return d, badDefault(schema, path, entry.Default)
			}
			props.Default = &t
		}
		d = fields.Date(props)
	case fields.KindReference:
		props := fields.ReferenceProps{Required: entry.Required, Optional: entry.Optional, Unique: entry.Unique, Ref: entry.Ref}
		if entry.Default != nil {
			s, ok := entry.Default.(string)
			if !ok {
				return d, badDefault(schema, path, entry.Default)
			}
			props.Default = &s
		}
		d = fields.Reference(props)
	case fields.KindObject:
		nested, err := buildFields(schema, path+".", entry.Fields)
		if err != nil {
			return d, err
		}
		d = fields.Object(nested, fields.Props{Required: entry.Required, Optional: entry.Optional, Unique: entry.Unique})
	default:
		return d, &DefinitionError{Schema: schema, Field: path, Reason: fmt.Sprintf("unknown field type '%s'", entry.Type)}
	}

	if entry.Array {
		d = fields.Array(d)
	}
	return d, nil
}

func parseDate(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
			if t, err := time.Parse(layout, val); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func badDefault(schema, path string, v interface{}) error {
	return &DefinitionError{Schema: schema, Field: path, Reason: fmt.Sprintf("default %v (%T) does not match the field type", v, v)}
}
