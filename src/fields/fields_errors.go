package fields

import (
	"errors"
	"fmt"
)

// ErrInvalidValue is matched by every ValueError.
var ErrInvalidValue = errors.New("invalid field value")

// ValueError reports a value that does not satisfy its field descriptor.
type ValueError struct {
	Field  string
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("field '%s': %s", e.Field, e.Reason)
}

func (e *ValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

func invalid(field, format string, args ...interface{}) error {
	return &ValueError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
