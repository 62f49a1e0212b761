package conduit

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HttpError represents an HTTP error with a specific status code and message
type HttpError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *HttpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHttpError creates a new HttpError with the given status code and message
func NewHttpError(statusCode int, message string) *HttpError {
	return &HttpError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewHttpErrorWithDetails creates a new HttpError with additional details
func NewHttpErrorWithDetails(statusCode int, message string, details any) *HttpError {
	return &HttpError{
		StatusCode: statusCode,
		Message:    message,
		Details:    details,
	}
}

// Common HTTP error constructors for convenience

// ErrBadRequest creates a 400 Bad Request error
func ErrBadRequest(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message)
}

// ErrUnauthorized creates a 401 Unauthorized error
func ErrUnauthorized(message string) *HttpError {
	return NewHttpError(http.StatusUnauthorized, message)
}

// ErrForbidden creates a 403 Forbidden error
func ErrForbidden(message string) *HttpError {
	return NewHttpError(http.StatusForbidden, message)
}

// ErrNotFound creates a 404 Not Found error
func ErrNotFound(message string) *HttpError {
	return NewHttpError(http.StatusNotFound, message)
}

// ErrConflict creates a 409 Conflict error
func ErrConflict(message string) *HttpError {
	return NewHttpError(http.StatusConflict, message)
}

// ErrUnprocessableEntity creates a 422 Unprocessable Entity error
func ErrUnprocessableEntity(message string) *HttpError {
	return NewHttpError(http.StatusUnprocessableEntity, message)
}

// ErrInternalServerError creates a 500 Internal Server Error
func ErrInternalServerError(message string) *HttpError {
	return NewHttpError(http.StatusInternalServerError, message)
}

// Sentinel errors used by binders and parsers to signal binding outcomes.
var (
	// ErrNoBindingValue is returned by a RequestBinder when the request
	// carries no value for it. For a required parameter this becomes a 400;
	// for a nilable one the parameter is bound to nil. Any other error from
	// a binder is treated as fatal.
	ErrNoBindingValue = errors.New("no binding value present")

	// ErrServiceNotResolved reports a required service type the registry
	// could not satisfy. It propagates out of Execute as a fatal error
	// because it indicates server misconfiguration, not bad input.
	ErrServiceNotResolved = errors.New("service type not resolved")
)

// PlanErrorCode classifies construction-time resolution failures
type PlanErrorCode int

const (
	ErrCodeUnknown PlanErrorCode = iota
	ErrCodeDuplicateBodyParameter
	ErrCodeUnresolvableParameter
	ErrCodeBadHandlerShape
	ErrCodeBadDefaultValue
	ErrCodeBadDirective
)

// String returns the string representation of the code
func (c PlanErrorCode) String() string {
	switch c {
	case ErrCodeDuplicateBodyParameter:
		return "DuplicateBodyParameter"
	case ErrCodeUnresolvableParameter:
		return "UnresolvableParameter"
	case ErrCodeBadHandlerShape:
		return "BadHandlerShape"
	case ErrCodeBadDefaultValue:
		return "BadDefaultValue"
	case ErrCodeBadDirective:
		return "BadDirective"
	default:
		return "Unknown"
	}
}

// PlanError is a single construction-time error for one endpoint. It carries
// the parameter it concerns (empty for endpoint-level problems) and a
// suggestion for fixing the declaration.
type PlanError struct {
	Code       PlanErrorCode
	Parameter  string
	Message    string
	Suggestion string
}

// Error implements the error interface
func (e *PlanError) Error() string {
	if e.Parameter != "" {
		return fmt.Sprintf("%s: parameter %q: %s", e.Code, e.Parameter, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// PlanErrors aggregates every construction error found while resolving one
// endpoint. Resolve returns all of them at once rather than stopping at the
// first, so a route table builder can report the full set.
type PlanErrors struct {
	Errors []*PlanError
}

// Error implements the error interface
func (e *PlanErrors) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, pe := range e.Errors {
		msgs[i] = pe.Error()
	}
	return fmt.Sprintf("endpoint construction failed: %s", strings.Join(msgs, "; "))
}

// Unwrap exposes the individual errors to errors.Is/As
func (e *PlanErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		errs[i] = pe
	}
	return errs
}

func (e *PlanErrors) add(code PlanErrorCode, parameter, message, suggestion string) {
	e.Errors = append(e.Errors, &PlanError{
		Code:       code,
		Parameter:  parameter,
		Message:    message,
		Suggestion: suggestion,
	})
}
