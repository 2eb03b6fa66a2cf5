package query

import (
	"errors"
	"fmt"
)

var (
	// ErrDerivation is wrapped by every error found while deriving a query from a method.
	ErrDerivation = errors.New("cannot derive query")
	// ErrInvalidParameter is wrapped when call arguments do not fit the declared parameters.
	ErrInvalidParameter = errors.New("invalid query parameter")
)

func derivationError(method, format string, args ...any) error {
	return fmt.Errorf("%w for '%s': %s", ErrDerivation, method, fmt.Sprintf(format, args...))
}

func parameterError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
