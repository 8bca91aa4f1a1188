package schemas

import "github.com/tsotimus/monkko/src/fields"

// DefineSubDocument captures an embedded document shape once. Each call of
// the returned function produces an object field for one embedding site, so
// the same shape can be reused by several parent schemas with different
// required/optional settings.
func DefineSubDocument(fieldMap map[string]fields.Descriptor) func(props fields.Props) fields.Descriptor {
	shape := fields.Object(fieldMap, fields.Props{}).Fields()
	return func(props fields.Props) fields.Descriptor {
		return fields.Object(shape, props)
	}
}
