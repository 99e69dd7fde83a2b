package template

import (
	"errors"
	"fmt"
)

// Sentinel errors for template operations.
var (
	// ErrEmpty is returned by Parse when the template string is empty.
	ErrEmpty = errors.New("template is empty")

	// ErrMissingPath is returned when a variable path cannot be resolved
	// under the strict policy.
	ErrMissingPath = errors.New("missing variable path")

	// ErrVariable is returned when a required variable is missing.
	ErrVariable = errors.New("required variable missing")

	// ErrUnsupportedValue is returned when a path reaches a value outside
	// the variable model, such as a slice.
	ErrUnsupportedValue = errors.New("unsupported variable value")
)

// MissingPathError identifies a dotted path that is not defined in the
// variables.
type MissingPathError struct {
	Path string
}

// Error implements the error interface.
func (e *MissingPathError) Error() string {
	return fmt.Sprintf("object path %q must be defined in variables", e.Path)
}

// Unwrap returns ErrMissingPath for errors.Is support.
func (e *MissingPathError) Unwrap() error {
	return ErrMissingPath
}

// UnsupportedValueError reports a path whose value has a type templates
// cannot render or descend into.
type UnsupportedValueError struct {
	Path string
	Type string
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("object path %q holds unsupported type %s", e.Path, e.Type)
}

// Unwrap returns ErrUnsupportedValue for errors.Is support.
func (e *UnsupportedValueError) Unwrap() error {
	return ErrUnsupportedValue
}
