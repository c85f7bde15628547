package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType classifies an AppError. It is rendered verbatim in API responses.
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeRateLimit    ErrorType = "RATE_LIMIT"
	ErrorTypeUnavailable  ErrorType = "UNAVAILABLE"
	ErrorTypeInternal     ErrorType = "INTERNAL"

	// Provenance engine failures.
	ErrorTypeHierarchyCycle   ErrorType = "HIERARCHY_CYCLE"
	ErrorTypeCyclicProvenance ErrorType = "CYCLIC_PROVENANCE"
	ErrorTypeTransaction      ErrorType = "TRANSACTION"
)

// AppError is the error value carried from the domain up to the transport layer.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode sets a machine readable code.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetail adds a single detail entry.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return b.String()
}

func newAppError(t ErrorType, status int, message string) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		HTTPStatus: status,
		StackTrace: captureStackTrace(),
	}
}

// NewValidationError reports malformed input.
func NewValidationError(message string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message)
}

// NewNotFoundError reports a missing resource, e.g. NewNotFoundError("unit", 4).
func NewNotFoundError(resource string, id interface{}) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, fmt.Sprintf("%s %v not found", resource, id)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message)
}

// NewForbiddenError reports an authenticated caller lacking a required role.
func NewForbiddenError(role string) *AppError {
	return newAppError(ErrorTypeForbidden, http.StatusForbidden,
		fmt.Sprintf("role '%s' required", role)).
		WithDetail("role", role)
}

// NewRateLimitError reports that a caller exceeded limit requests per window.
func NewRateLimitError(limit int, window string) *AppError {
	return newAppError(ErrorTypeRateLimit, http.StatusTooManyRequests,
		fmt.Sprintf("rate limit exceeded: %d requests per %s", limit, window))
}

func NewUnavailableError(service string) *AppError {
	return newAppError(ErrorTypeUnavailable, http.StatusServiceUnavailable,
		fmt.Sprintf("service '%s' is unavailable", service))
}

func NewInternalError(message string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message)
}

// NewHierarchyCycleError reports that the unit parent relation is not a forest.
// remaining lists the units that could not be ordered.
func NewHierarchyCycleError(remaining []int64) *AppError {
	return newAppError(ErrorTypeHierarchyCycle, http.StatusInternalServerError,
		fmt.Sprintf("unit hierarchy contains a cycle; %d units could not be ordered", len(remaining))).
		WithDetail("unit_ids", remaining)
}

// NewCyclicProvenanceError reports a bullet point revisited on its own expansion path.
func NewCyclicProvenanceError(bulletID int64) *AppError {
	return newAppError(ErrorTypeCyclicProvenance, http.StatusConflict,
		fmt.Sprintf("bullet point %d appears on its own provenance path", bulletID)).
		WithDetail("bullet_point_id", bulletID)
}

// NewTransactionError reports a persistence failure. Nothing from the
// aborted operation is visible afterwards.
func NewTransactionError(operation string, err error) *AppError {
	return newAppError(ErrorTypeTransaction, http.StatusInternalServerError,
		fmt.Sprintf("transaction '%s' failed", operation)).WithCause(err)
}

// GetAppError extracts the first AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func IsAppError(err error) bool {
	return GetAppError(err) != nil
}

// IsType checks if an error chain carries an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

func IsNotFound(err error) bool         { return IsType(err, ErrorTypeNotFound) }
func IsValidation(err error) bool       { return IsType(err, ErrorTypeValidation) }
func IsUnauthorized(err error) bool     { return IsType(err, ErrorTypeUnauthorized) }
func IsHierarchyCycle(err error) bool   { return IsType(err, ErrorTypeHierarchyCycle) }
func IsCyclicProvenance(err error) bool { return IsType(err, ErrorTypeCyclicProvenance) }
func IsTransaction(err error) bool      { return IsType(err, ErrorTypeTransaction) }

// Wrap adds context to err. AppErrors keep their type; anything else
// becomes an internal error.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
