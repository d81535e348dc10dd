package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is implemented by every domain error so the boundary layer can map
// it to a status code without knowing the concrete type.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrConflict        = errors.New("already exists")
	ErrTransaction     = errors.New("transaction failed")
	ErrIO              = errors.New("content unavailable")
	ErrPaymentRequired = errors.New("subscription expired")
)

type (
	// NotFoundError indicates a referenced id does not exist
	NotFoundError struct {
		Resource string
		ID       string
	}

	// ValidationError indicates malformed input, detected before any mutation
	ValidationError struct {
		Message string
	}

	// ForbiddenError indicates the folder access gate rejected the request
	ForbiddenError struct {
		Message string
	}

	// UnauthorizedError indicates missing or invalid credentials
	UnauthorizedError struct {
		Message string
	}

	// ConflictError indicates a uniqueness violation
	ConflictError struct {
		Message string
	}

	// PaymentRequiredError indicates the service subscription has lapsed
	PaymentRequiredError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}
func (e *ValidationError) Error() string      { return e.Message }
func (e *ForbiddenError) Error() string       { return e.Message }
func (e *UnauthorizedError) Error() string    { return e.Message }
func (e *ConflictError) Error() string        { return e.Message }
func (e *PaymentRequiredError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int        { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int      { return http.StatusBadRequest }
func (e *ForbiddenError) StatusCode() int       { return http.StatusForbidden }
func (e *UnauthorizedError) StatusCode() int    { return http.StatusUnauthorized }
func (e *ConflictError) StatusCode() int        { return http.StatusConflict }
func (e *PaymentRequiredError) StatusCode() int { return http.StatusPaymentRequired }

func (e *NotFoundError) Is(target error) bool        { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool      { return target == ErrValidation }
func (e *ForbiddenError) Is(target error) bool       { return target == ErrForbidden }
func (e *UnauthorizedError) Is(target error) bool    { return target == ErrUnauthorized }
func (e *ConflictError) Is(target error) bool        { return target == ErrConflict }
func (e *PaymentRequiredError) Is(target error) bool { return target == ErrPaymentRequired }

// TransactionError wraps a data-layer failure inside a multi-step mutation.
// The transaction has been rolled back when this is returned.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: transaction rolled back: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error        { return e.Err }
func (e *TransactionError) StatusCode() int      { return http.StatusInternalServerError }
func (e *TransactionError) Is(target error) bool { return target == ErrTransaction }

// IOError reports stored bytes that are missing or unreadable despite a
// recorded content locator.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read content %q: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error        { return e.Err }
func (e *IOError) StatusCode() int      { return http.StatusInternalServerError }
func (e *IOError) Is(target error) bool { return target == ErrIO }

// Validation returns a ValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a NotFoundError for the given resource and id.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// Forbidden returns a ForbiddenError with the given message.
func Forbidden(message string) error {
	return &ForbiddenError{Message: message}
}
