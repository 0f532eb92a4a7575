package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for chain operations.
var (
	// ErrVoltageMismatch indicates arithmetic between conditions supplied at
	// different voltages.
	ErrVoltageMismatch = errors.New("dynamo: operating conditions have different supply voltages")

	// ErrLengthMismatch indicates condition lists of different lengths.
	ErrLengthMismatch = errors.New("dynamo: condition lists have different lengths")
)

// ComponentError wraps an error with the chain position that produced it.
type ComponentError struct {
	Index   int
	Kind    Kind
	Wrapped error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("component %d (%s): %v", e.Index, e.Kind, e.Wrapped)
}

func (e *ComponentError) Unwrap() error {
	return e.Wrapped
}
