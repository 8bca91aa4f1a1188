package schemas

import (
	"github.com/tsotimus/monkko/src/fields"
)

// ShapeField is one field of an inferred document shape.
type ShapeField struct {
	Name      string       `yaml:"name" json:"name"`
	Kind      fields.Kind  `yaml:"kind" json:"kind"`
	Type      string       `yaml:"type" json:"type"`
	Optional  bool         `yaml:"optional,omitempty" json:"optional,omitempty"`
	Array     bool         `yaml:"array,omitempty" json:"array,omitempty"`
	Ref       string       `yaml:"ref,omitempty" json:"ref,omitempty"`
	Populated bool         `yaml:"populated,omitempty" json:"populated,omitempty"`
	Fields    []ShapeField `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// Shape is the static document shape derived from a schema definition.
type Shape struct {
	Name   string       `yaml:"name" json:"name"`
	Fields []ShapeField `yaml:"fields" json:"fields"`
}

// Field returns the shape field called name.
func (s Shape) Field(name string) (ShapeField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ShapeField{}, false
}

// TypeName is the Go type name used for documents of this shape.
func (s Shape) TypeName() string {
	return s.Name + "Document"
}

// InferShape derives the unpopulated document shape of def: _id first, the
// declared fields in lexical order, then createdAt and updatedAt when
// timestamps are enabled.
func InferShape(def Definition) Shape {
	shape := Shape{Name: def.Name}
	shape.Fields = append(shape.Fields, ShapeField{Name: IDField, Kind: fields.KindReference, Type: "primitive.ObjectID"})
	shape.Fields = append(shape.Fields, inferFields(def.Fields)...)
	if def.Options.Timestamps {
		shape.Fields = append(shape.Fields,
			ShapeField{Name: CreatedAtField, Kind: fields.KindDate, Type: "time.Time"},
			ShapeField{Name: UpdatedAtField, Kind: fields.KindDate, Type: "time.Time"},
		)
	}
	return shape
}

func inferFields(fieldMap map[string]fields.Descriptor) []ShapeField {
	out := make([]ShapeField, 0, len(fieldMap))
	for _, name := range fields.SortedNames(fieldMap) {
		d := fieldMap[name]
		f := ShapeField{
			Name:     name,
			Kind:     d.Kind(),
			Type:     fields.GoType(d),
			Optional: !d.IsRequired(),
			Array:    d.Many(),
			Ref:      d.Ref(),
		}
		if d.Kind() == fields.KindObject {
			f.Fields = inferFields(d.Fields())
		}
		out = append(out, f)
	}
	return out
}

// Populate returns the populated variant of s: each named reference field
// whose target schema is registered in catalog takes the target's document
// shape. Fields that are not references, or whose target is unknown, keep
// their identifier type.
func (s Shape) Populate(catalog *Catalog, names ...string) Shape {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	out := Shape{Name: s.Name, Fields: make([]ShapeField, len(s.Fields))}
	for i, f := range s.Fields {
		out.Fields[i] = f
		if !wanted[f.Name] || f.Kind != fields.KindReference || f.Ref == "" {
			continue
		}
		target, ok := catalog.Lookup(f.Ref)
		if !ok {
			continue
		}
		targetShape := InferShape(target)
		f.Type = targetShape.TypeName()
		if f.Array {
			f.Type = "[]" + f.Type
		}
		f.Populated = true
		f.Fields = targetShape.Fields
		out.Fields[i] = f
	}
	return out
}
