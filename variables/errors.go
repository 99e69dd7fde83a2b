package variables

import "errors"

// Sentinel errors for variable loading.
var (
	// ErrFormat is returned for file extensions with no known decoder.
	ErrFormat = errors.New("unknown variables format")

	// ErrUnsupported is returned when decoded data is not a mapping.
	ErrUnsupported = errors.New("unsupported variable value")

	// ErrAssignment is returned for malformed path=value assignments.
	ErrAssignment = errors.New("invalid assignment")

	// ErrFrontMatter is returned when a front matter block is not closed.
	ErrFrontMatter = errors.New("front matter not closed (missing ---)")
)
