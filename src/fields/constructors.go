package fields

// Ptr returns a pointer to v. It keeps optional props such as defaults and
// number bounds readable at the call site.
func Ptr[T any](v T) *T {
	return &v
}

func String(props StringProps) Descriptor {
	d := Descriptor{
		kind:      KindString,
		required:  props.Required,
		optional:  props.Optional,
		unique:    props.Unique,
		minLength: props.MinLength,
		maxLength: props.MaxLength,
		pattern:   props.Pattern,
	}
	if props.Default != nil {
		d.def = *props.Default
	}
	if props.Enum != nil {
		d.enum = make([]string, len(props.Enum))
		copy(d.enum, props.Enum)
	}
	return d
}

func Number(props NumberProps) Descriptor {
	d := Descriptor{
		kind:     KindNumber,
		required: props.Required,
		optional: props.Optional,
		unique:   props.Unique,
	}
	if props.Default != nil {
		d.def = *props.Default
	}
	if props.Min != nil {
		d.min = Ptr(*props.Min)
	}
	if props.Max != nil {
		d.max = Ptr(*props.Max)
	}
	return d
}

func Boolean(props BooleanProps) Descriptor {
	d := Descriptor{
		kind:     KindBoolean,
		required: props.Required,
		optional: props.Optional,
		unique:   props.Unique,
	}
	if props.Default != nil {
		d.def = *props.Default
	}
	return d
}

func Date(props DateProps) Descriptor {
	d := Descriptor{
		kind:     KindDate,
		required: props.Required,
		optional: props.Optional,
		unique:   props.Unique,
	}
	if props.Default != nil {
		d.def = *props.Default
	}
	return d
}

// Reference declares a field holding the identifier of a document described
// by the schema named props.Ref.
func Reference(props ReferenceProps) Descriptor {
	d := Descriptor{
		kind:     KindReference,
		required: props.Required,
		optional: props.Optional,
		unique:   props.Unique,
		ref:      props.Ref,
	}
	if props.Default != nil {
		d.def = *props.Default
	}
	return d
}

// Object embeds a nested field map. The map is copied, so later changes to
// the caller's map are not observed and an object can never contain itself.
func Object(fieldMap map[string]Descriptor, props Props) Descriptor {
	nested := copyFields(fieldMap)
	if nested == nil {
		nested = map[string]Descriptor{}
	}
	return Descriptor{
		kind:     KindObject,
		required: props.Required,
		optional: props.Optional,
		unique:   props.Unique,
		fields:   nested,
	}
}

// Array marks d as holding a list of values of its kind.
func Array(d Descriptor) Descriptor {
	d.many = true
	return d
}
