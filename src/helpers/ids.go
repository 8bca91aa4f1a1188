package helpers

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IsObjectID reports whether s is a 24 character hex ObjectID.
func IsObjectID(s string) bool {
	return primitive.IsValidObjectID(s)
}

// ParseID converts the textual form of an identifier back into the store's
// canonical identifier type. Strings that are not valid ObjectIDs are
// returned unchanged, with ok set to false.
func ParseID(s string) (interface{}, bool) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return s, false
	}
	return oid, true
}

// IDString returns the canonical textual form of an identifier value. It is
// used as the key when matching references to looked up documents.
func IDString(id interface{}) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case *primitive.ObjectID:
		if v == nil {
			return ""
		}
		return v.Hex()
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
