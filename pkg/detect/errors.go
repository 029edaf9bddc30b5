package detect

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrUnknownSKU is returned when a group references a SKU that is
	// not present in the catalog snapshot
	ErrUnknownSKU = errors.New("unknown SKU")

	// ErrDimensionMismatch is returned when two embedding vectors have
	// different lengths
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyGroup is returned when a merge recommendation is requested
	// for a group with no members
	ErrEmptyGroup = errors.New("group has no members")
)

// DetectError wraps errors with operation context
type DetectError struct {
	Op  string // Operation name
	Err error  // Underlying error
}

// Error implements the error interface
func (e *DetectError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("detect: %v", e.Err)
	}
	return fmt.Sprintf("detect: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *DetectError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target
func (e *DetectError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// wrapError wraps an error with operation context
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DetectError{Op: op, Err: err}
}
