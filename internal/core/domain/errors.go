package domain

import (
	"context"
	"errors"
	"fmt"
)

// Boundary names for error classification and metrics labels.
const (
	BoundaryGateway   = "gateway"
	BoundaryOCR       = "ocr"
	BoundaryRedaction = "redaction"
	BoundaryAI        = "ai"
	BoundaryMail      = "mail"
)

// BoundaryError wraps a failure from one of the external boundaries with a
// transient-vs-permanent distinction. Transient errors are retryable;
// permanent ones are not.
type BoundaryError struct {
	Boundary  string
	Transient bool
	Err       error
}

func (e *BoundaryError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s boundary: %s: %v", e.Boundary, kind, e.Err)
}

func (e *BoundaryError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a retryable boundary failure.
func Transient(boundary string, err error) error {
	return &BoundaryError{Boundary: boundary, Transient: true, Err: err}
}

// Permanent wraps err as a non-retryable boundary failure.
func Permanent(boundary string, err error) error {
	return &BoundaryError{Boundary: boundary, Transient: false, Err: err}
}

// IsTransient reports whether err should be retried. Timeouts and
// cancellations are treated as transient.
func IsTransient(err error) bool {
	var be *BoundaryError
	if errors.As(err, &be) {
		return be.Transient
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	return false
}
