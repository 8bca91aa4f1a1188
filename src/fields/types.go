package fields

import (
	"sort"
	"strings"
)

// GoType renders the static type a field infers to:
//
//	string    -> string
//	number    -> float64
//	boolean   -> bool
//	date      -> time.Time
//	reference -> primitive.ObjectID
//	object    -> struct{...} of its nested fields
//
// Array fields infer to a slice of the element type.
func GoType(d Descriptor) string {
	var elem string
	switch d.kind {
	case KindString:
		elem = "string"
	case KindNumber:
		elem = "float64"
	case KindBoolean:
		elem = "bool"
	case KindDate:
		elem = "time.Time"
	case KindReference:
		elem = "primitive.ObjectID"
	case KindObject:
		elem = objectType(d.fields)
	default:
		elem = "interface{}"
	}
	if d.many {
		return "[]" + elem
	}
	return elem
}

func objectType(fieldMap map[string]Descriptor) string {
	names := SortedNames(fieldMap)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+GoType(fieldMap[name]))
	}
	return "struct{" + strings.Join(parts, "; ") + "}"
}

// SortedNames returns the keys of fieldMap in lexical order.
func SortedNames(fieldMap map[string]Descriptor) []string {
	names := make([]string, 0, len(fieldMap))
	for name := range fieldMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
