package store

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrUnknownOperator    = errors.New("unknown query operator")
	ErrBadFilter          = errors.New("malformed filter")
	ErrReplacementUpdate  = errors.New("update document must contain only update operators")
	ErrBadUpdate          = errors.New("malformed update")
	ErrImmutableID        = errors.New("the _id field is immutable")
	ErrNonNumericIncrease = errors.New("cannot apply $inc to a non-numeric value")
)

// DuplicateKeyCode is the server error code for unique index violations.
const DuplicateKeyCode = 11000

func duplicateKeyError(namespace, index string, value interface{}) error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{
			Index:   0,
			Code:    DuplicateKeyCode,
			Message: fmt.Sprintf("E11000 duplicate key error collection: %s index: %s dup key: { %v }", namespace, index, value),
		}},
	}
}
