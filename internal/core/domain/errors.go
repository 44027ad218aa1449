package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrValidation indicates malformed or missing caller input.
	ErrValidation = errors.New("validation error")

	// ErrDimensionMismatch indicates two embeddings of different lengths were compared,
	// or an embedding disagrees with the corpus dimensionality.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrStorage indicates a durable I/O failure.
	// It is distinct from the missing/corrupt read recovery, which yields an empty corpus.
	ErrStorage = errors.New("storage error")

	// ErrProviderUnavailable indicates the embedding provider failed.
	// It is propagated untouched and never retried inside the core.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrNotFound indicates a requested entity does not exist.
	// Collection stores also return it when nothing has been persisted yet.
	ErrNotFound = errors.New("not found")

	// ErrCorrupt indicates persisted data could not be decoded.
	ErrCorrupt = errors.New("corrupt collection")
)

// Error is a typed failure carrying a stable kind and a human-readable message.
type Error struct {
	// Kind is one of the sentinel errors above.
	Kind error

	// Op names the operation that failed (e.g. "ingest", "search").
	Op string

	// Message is the human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewValidationError returns a validation failure with a formatted message.
func NewValidationError(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NewDimensionMismatch returns a dimension failure describing both lengths.
func NewDimensionMismatch(expected, got int) error {
	return &Error{
		Kind:    ErrDimensionMismatch,
		Message: fmt.Sprintf("expected %d dimensions, got %d", expected, got),
	}
}

// NewStorageError wraps a durable I/O failure for the given operation.
func NewStorageError(op string, err error) error {
	return &Error{Kind: ErrStorage, Op: op, Err: err}
}

// NewProviderUnavailable wraps an embedding provider failure for the given operation.
func NewProviderUnavailable(op string, err error) error {
	return &Error{Kind: ErrProviderUnavailable, Op: op, Err: err}
}

// Stable error kinds reported to callers.
const (
	KindValidation          = "validation"
	KindDimensionMismatch   = "dimension_mismatch"
	KindStorage             = "storage"
	KindProviderUnavailable = "provider_unavailable"
	KindNotFound            = "not_found"
	KindInternal            = "internal"
)

// KindOf returns the stable kind name for err.
// Errors outside the taxonomy report KindInternal.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrDimensionMismatch):
		return KindDimensionMismatch
	case errors.Is(err, ErrProviderUnavailable):
		return KindProviderUnavailable
	case errors.Is(err, ErrStorage), errors.Is(err, ErrCorrupt):
		return KindStorage
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}
