package schemas

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchemaDefinition = errors.New("invalid schema definition")
	ErrValidation       = errors.New("document failed validation")
)

// DefinitionError describes why a schema definition was rejected.
type DefinitionError struct {
	Schema string
	Field  string
	Reason string
}

func (e *DefinitionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema '%s': field '%s': %s", e.Schema, e.Field, e.Reason)
	}
	return fmt.Sprintf("schema '%s': %s", e.Schema, e.Reason)
}

func (e *DefinitionError) Is(target error) bool {
	return target == ErrSchemaDefinition
}

// ValidationError collects every problem found in one document.
type ValidationError struct {
	Schema   string
	Problems []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	return fmt.Sprintf("%s document failed validation: %s", e.Schema, strings.Join(msgs, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() []error {
	return e.Problems
}
