package engine

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalState = errors.New("illegal query state")
	ErrNilDocument  = errors.New("cannot decode a nil document")
)

// IllegalStateError is raised when a query is changed after its execution
// has started.
type IllegalStateError struct {
	Schema string
	Op     string
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("cannot %s on a %s query after execution has started", e.Op, e.Schema)
}

func (e *IllegalStateError) Is(target error) bool {
	return target == ErrIllegalState
}
