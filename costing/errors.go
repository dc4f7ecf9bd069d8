/*
errors.go - Input validation errors for the cost calculator

PURPOSE:
  The calculator rejects negative or out-of-range numeric arguments before
  any computation. Callers (API layer) map these to client-addressable
  failures; nothing here is retryable.

USAGE:
  if errors.Is(err, costing.ErrInvalidInput) {
      // 400, not 500
  }
*/
package costing

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when a numeric argument is negative or outside
// its documented range. Use errors.Is to detect it.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError carries which argument was rejected and why.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s=%s (%s)", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

func invalidInput(field, value, reason string) error {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}
