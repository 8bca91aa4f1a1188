package helpers

import (
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// FileExists checks if a file exists and is not a directory
func FileExists(filename string, logger *zap.SugaredLogger) bool {
	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debugf("File does not exist: %s", filename)
			return false
		}

		logger.Infof("Error checking file %s for existence: %s", filename, err)
		return false
	}

	return !info.IsDir()
}

// ToDocument converts a struct, map or bson.D into a detached bson.M by
// round-tripping it through BSON. Nested documents come back as bson.M and
// arrays as bson.A. A nil value yields an empty document.
func ToDocument(v interface{}) (bson.M, error) {
	if v == nil {
		return bson.M{}, nil
	}

	data, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error encoding document: %w", err)
	}

	var decoded bson.M
	if err := bson.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("error decoding document: %w", err)
	}

	return normalize(decoded).(bson.M), nil
}

// CloneDocument returns a deep copy of doc. It panics only if doc holds
// values BSON cannot encode, which cannot happen for documents produced by
// ToDocument.
func CloneDocument(doc bson.M) bson.M {
	if doc == nil {
		return nil
	}
	clone, err := ToDocument(doc)
	if err != nil {
		panic(err)
	}
	return clone
}

// NormalizeDocument rewrites nested bson.D and plain maps inside doc into
// bson.M, and plain slices into bson.A, in place.
func NormalizeDocument(doc bson.M) bson.M {
	if doc == nil {
		return nil
	}
	return normalize(doc).(bson.M)
}

func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.M:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case map[string]interface{}:
		out := make(bson.M, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case bson.D:
		out := make(bson.M, len(val))
		for _, e := range val {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	case []interface{}:
		out := make(bson.A, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}
