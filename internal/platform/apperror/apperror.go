// Package apperror defines the error taxonomy shared by the data layer and
// the HTTP layer. Repositories and services return these values; only the
// echo error handler turns them into status codes.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrStorageUnavailable reports that the backing store could not be reached.
// It is the only error a caller may reasonably retry.
var ErrStorageUnavailable = errors.New("storage unavailable")

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a request payload does not satisfy its
// create contract. It is raised before any storage access.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validation builds a ValidationError for a single field.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// NewValidationError builds a ValidationError with fields sorted by name so
// responses are deterministic.
func NewValidationError(fields []FieldError) *ValidationError {
	sorted := append([]FieldError(nil), fields...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Field < sorted[j].Field })
	return &ValidationError{Fields: sorted}
}

// NotFoundError reports that a resource with the requested id does not exist.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// NotFound builds a NotFoundError. The id is kept for server-side logs and is
// not part of the client-facing message.
func NotFound(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictKind distinguishes the constraint that rejected a write.
type ConflictKind int

const (
	UniqueViolation ConflictKind = iota + 1
	ForeignKeyViolation
	CheckViolation
)

func (k ConflictKind) String() string {
	switch k {
	case UniqueViolation:
		return "unique_violation"
	case ForeignKeyViolation:
		return "foreign_key_violation"
	case CheckViolation:
		return "check_violation"
	default:
		return "constraint_violation"
	}
}

// ConflictError is a storage constraint violation translated into a message
// that is safe to show to clients.
type ConflictError struct {
	Kind   ConflictKind
	Detail string
	Err    error
}

func (e *ConflictError) Error() string {
	return e.Detail
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// Conflict builds a ConflictError.
func Conflict(kind ConflictKind, detail string, cause error) *ConflictError {
	return &ConflictError{Kind: kind, Detail: detail, Err: cause}
}

// Unavailable wraps cause so that errors.Is(err, ErrStorageUnavailable) holds.
func Unavailable(cause error) error {
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, cause)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is, or wraps, a ConflictError of the given
// kind. A zero kind matches any conflict.
func IsConflict(err error, kind ConflictKind) bool {
	var ce *ConflictError
	if !errors.As(err, &ce) {
		return false
	}
	return kind == 0 || ce.Kind == kind
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
