package mapper

import (
	"errors"
	"fmt"
)

var (
	// ErrMapping is wrapped by every failure to turn a record into an object.
	ErrMapping = errors.New("cannot map result")
	// ErrNoSuchColumn is returned when a projection field names a column the record lacks.
	ErrNoSuchColumn = errors.New("no such column")
	// ErrNullResult is returned when a record holds no value where one was required.
	ErrNullResult = errors.New("null result")
)

// mappingError wraps ErrMapping; format may use %w for the cause.
func mappingError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMapping}, args...)...)
}
