package via

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for generated handlers.
var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("via: resource not found")

	// ErrBadRequest is returned when a request parameter or body cannot
	// be read.
	ErrBadRequest = errors.New("via: bad request")

	// ErrNotAcceptable is returned when a request accepts none of the
	// representations an action responds with.
	ErrNotAcceptable = errors.New("via: no acceptable representation")
)

// NotFoundError reports that a resource was looked up and missed.
type NotFoundError struct {
	label string
	id    any // Optional: the id that was looked up
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("via: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("via: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the resource label.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the id that was looked up, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given resource.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the id that
// was looked up.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// BadRequestError reports a request part that could not be read.
type BadRequestError struct {
	part  string // "body" or "param <name>"
	cause error
}

// Error returns the error string.
func (e *BadRequestError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("via: bad request: %s: %v", e.part, e.cause)
	}
	return fmt.Sprintf("via: bad request: %s", e.part)
}

// Is reports whether the target error matches BadRequestError.
// This allows errors.Is(badReqErr, ErrBadRequest) to return true.
func (e *BadRequestError) Is(err error) bool {
	return err == ErrBadRequest
}

// Unwrap returns the underlying error.
func (e *BadRequestError) Unwrap() error {
	return e.cause
}

// Part returns the request part that failed to read.
func (e *BadRequestError) Part() string {
	return e.part
}

// NewBadRequestError returns a new BadRequestError for the given
// request part.
func NewBadRequestError(part string, cause error) *BadRequestError {
	return &BadRequestError{part: part, cause: cause}
}

// IsBadRequest returns true if the error is a BadRequestError.
func IsBadRequest(err error) bool {
	if err == nil {
		return false
	}
	var e *BadRequestError
	return errors.As(err, &e) || errors.Is(err, ErrBadRequest)
}

// FormatError reports a failed content negotiation.
type FormatError struct {
	requested string
	allowed   []string
}

// Error returns the error string.
func (e *FormatError) Error() string {
	return fmt.Sprintf("via: no acceptable representation for %q (supported: %s)",
		e.requested, strings.Join(e.allowed, ", "))
}

// Is reports whether the target error matches FormatError.
// This allows errors.Is(formatErr, ErrNotAcceptable) to return true.
func (e *FormatError) Is(err error) bool {
	return err == ErrNotAcceptable
}

// Requested returns the Accept header value that failed to match.
func (e *FormatError) Requested() string {
	return e.requested
}

// Allowed returns the formats the action responds with.
func (e *FormatError) Allowed() []string {
	return e.allowed
}

// NewFormatError returns a new FormatError.
func NewFormatError(requested string, allowed []string) *FormatError {
	return &FormatError{requested: requested, allowed: allowed}
}

// IsFormatError returns true if the error is a FormatError.
func IsFormatError(err error) bool {
	if err == nil {
		return false
	}
	var e *FormatError
	return errors.As(err, &e) || errors.Is(err, ErrNotAcceptable)
}
