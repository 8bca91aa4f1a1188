package fields

import "time"

// Kind is the type tag stamped on every field descriptor.
type Kind string

const (
	KindString    Kind = "string"
	KindNumber    Kind = "number"
	KindBoolean   Kind = "boolean"
	KindDate      Kind = "date"
	KindReference Kind = "reference"
	KindObject    Kind = "object"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindString, KindNumber, KindBoolean, KindDate, KindReference, KindObject}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Descriptor is an immutable description of one schema field. The zero
// value is not a usable descriptor; build one with the constructors in this
// package.
type Descriptor struct {
	kind     Kind
	many     bool
	required bool
	optional bool
	unique   bool

	def interface{}

	// string
	minLength int
	maxLength int
	pattern   string
	enum      []string

	// number
	min *float64
	max *float64

	// reference
	ref string

	// object
	fields map[string]Descriptor
}

// Kind returns the field's type tag.
func (d Descriptor) Kind() Kind { return d.kind }

// Many reports whether the field holds an array of values.
func (d Descriptor) Many() bool { return d.many }

func (d Descriptor) Required() bool { return d.required }
func (d Descriptor) Optional() bool { return d.optional }
func (d Descriptor) Unique() bool   { return d.unique }

// IsRequired reports whether a document must carry the field. Optional wins
// over Required when both are set.
func (d Descriptor) IsRequired() bool { return d.required && !d.optional }

// Default returns the declared default value, if any.
func (d Descriptor) Default() (interface{}, bool) {
	return d.def, d.def != nil
}

func (d Descriptor) MinLength() int  { return d.minLength }
func (d Descriptor) MaxLength() int  { return d.maxLength }
func (d Descriptor) Pattern() string { return d.pattern }

// Enum returns a copy of the allowed string values.
func (d Descriptor) Enum() []string {
	if d.enum == nil {
		return nil
	}
	out := make([]string, len(d.enum))
	copy(out, d.enum)
	return out
}

func (d Descriptor) Min() (float64, bool) {
	if d.min == nil {
		return 0, false
	}
	return *d.min, true
}

func (d Descriptor) Max() (float64, bool) {
	if d.max == nil {
		return 0, false
	}
	return *d.max, true
}

// Ref returns the name of the schema a reference field points to.
func (d Descriptor) Ref() string { return d.ref }

// Fields returns a copy of the nested field map of an object field.
func (d Descriptor) Fields() map[string]Descriptor {
	return copyFields(d.fields)
}

// Props are the flags shared by every field kind. Object fields and
// sub-document instantiations take them directly.
type Props struct {
	Required bool
	Optional bool
	Unique   bool
}

type StringProps struct {
	Required  bool
	Optional  bool
	Unique    bool
	Default   *string
	MinLength int
	MaxLength int
	Pattern   string
	Enum      []string
}

type NumberProps struct {
	Required bool
	Optional bool
	Unique   bool
	Default  *float64
	Min      *float64
	Max      *float64
}

type BooleanProps struct {
	Required bool
	Optional bool
	Unique   bool
	Default  *bool
}

type DateProps struct {
	Required bool
	Optional bool
	Unique   bool
	Default  *time.Time
}

type ReferenceProps struct {
	Required bool
	Optional bool
	Unique   bool
	// Default is the hex form of the default identifier.
	Default *string
	// Ref is the name of the referenced schema.
	Ref string
}

func copyFields(in map[string]Descriptor) map[string]Descriptor {
	if in == nil {
		return nil
	}
	out := make(map[string]Descriptor, len(in))
	for name, d := range in {
		if d.fields != nil {
			d.fields = copyFields(d.fields)
		}
		out[name] = d
	}
	return out
}
