/*
errors.go - Centralized error taxonomy for the engines

PURPOSE:
  Four outcomes matter to callers, and each maps to a distinct handling
  strategy:

    ErrNotFound      referenced project/invoice absent; client-addressable,
                     never retried
    ErrConflict      duplicate invoice number from the persistence sink;
                     retry with an incremented sequence
    ErrUnavailable   repository/collaborator failure; transient, retry with
                     backoff (the engines never retry internally)
    ErrInvalidPeriod malformed period (end before start); client-addressable

  Invalid numeric input is rejected by the costing package before any
  computation (costing.ErrInvalidInput). Empty aggregation periods and empty
  recommendation samples are NOT errors; they yield explicit absence.

USAGE:
  if ledger.IsNotFound(err) { ... 404 ... }
  if ledger.IsConflict(err) { ... retry with next sequence ... }
*/
package ledger

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced project or invoice does not
	// exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when the persistence sink rejects a duplicate
	// invoice number. Callers retry with an incremented sequence.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable is returned when a repository call fails for transient
	// reasons. Callers may retry with backoff.
	ErrUnavailable = errors.New("repository unavailable")

	// ErrInvalidPeriod is returned when a period ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies which record was missing.
type NotFoundError struct {
	Kind string // "project", "invoice", "work_log"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports a duplicate invoice number.
type ConflictError struct {
	InvoiceNumber string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("invoice number %q already exists", e.InvoiceNumber)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// PeriodError reports a malformed period.
type PeriodError struct {
	From time.Time
	To   time.Time
}

func (e *PeriodError) Error() string {
	return fmt.Sprintf("invalid period: %s after %s",
		e.From.Format("2006-01-02"), e.To.Format("2006-01-02"))
}

func (e *PeriodError) Unwrap() error { return ErrInvalidPeriod }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether the error indicates a duplicate invoice number.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsRetryable reports whether the error might succeed on retry.
func IsRetryable(err error) bool { return errors.Is(err, ErrUnavailable) }
