package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCategory represents the category of error
type ErrorCategory string

const (
	// ErrorCategoryValidation represents malformed input (bad index, bad body, empty title)
	ErrorCategoryValidation ErrorCategory = "VALIDATION"
	// ErrorCategoryNotFound represents an index or route that does not exist
	ErrorCategoryNotFound ErrorCategory = "NOT_FOUND"
	// ErrorCategoryContract represents a response that reached us but did not confirm success
	ErrorCategoryContract ErrorCategory = "CONTRACT"
	// ErrorCategoryTransport represents network failures talking to the server
	ErrorCategoryTransport ErrorCategory = "TRANSPORT"
	// ErrorCategoryParse represents response bodies that are not the expected JSON shape
	ErrorCategoryParse ErrorCategory = "PARSE"
	// ErrorCategoryConfiguration represents configuration errors
	ErrorCategoryConfiguration ErrorCategory = "CONFIGURATION"
)

// TaskError represents a structured error with context and troubleshooting information
type TaskError struct {
	Category        ErrorCategory
	Code            string
	Message         string
	Operation       string
	Context         map[string]interface{}
	Troubleshooting []string
	OriginalError   error
}

// Error implements the error interface
func (e *TaskError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s-%s: %s", e.Category, e.Code, e.Message))

	if e.Operation != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", e.Operation))
	}

	if e.OriginalError != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.OriginalError))
	}

	return sb.String()
}

// Unwrap returns the original error for error chain compatibility
func (e *TaskError) Unwrap() error {
	return e.OriginalError
}

// NewTaskError creates a new task error with the specified parameters
func NewTaskError(category ErrorCategory, code, message, operation string) *TaskError {
	return &TaskError{
		Category:        category,
		Code:            code,
		Message:         message,
		Operation:       operation,
		Context:         make(map[string]interface{}),
		Troubleshooting: []string{},
	}
}

// WithContext adds context information to the error
func (e *TaskError) WithContext(key string, value interface{}) *TaskError {
	e.Context[key] = value
	return e
}

// WithTroubleshooting adds troubleshooting steps to the error
func (e *TaskError) WithTroubleshooting(steps ...string) *TaskError {
	e.Troubleshooting = append(e.Troubleshooting, steps...)
	return e
}

// WithOriginalError adds the original error to the task error
func (e *TaskError) WithOriginalError(err error) *TaskError {
	e.OriginalError = err
	return e
}

// HTTPStatus maps the error category to the status code the server replies with.
func (e *TaskError) HTTPStatus() int {
	switch e.Category {
	case ErrorCategoryValidation:
		return http.StatusBadRequest
	case ErrorCategoryNotFound:
		return http.StatusNotFound
	case ErrorCategoryTransport:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// As extracts a *TaskError from anywhere in err's chain.
func As(err error) (*TaskError, bool) {
	var taskErr *TaskError
	if stderrors.As(err, &taskErr) {
		return taskErr, true
	}
	return nil, false
}

// IsCategory reports whether err carries a TaskError of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	taskErr, ok := As(err)
	return ok && taskErr.Category == category
}

// Common error constructors

// NewValidationError creates a new validation error
func NewValidationError(code, message, operation string) *TaskError {
	return NewTaskError(ErrorCategoryValidation, code, message, operation)
}

// NewNotFoundError creates a new not-found error
func NewNotFoundError(code, message, operation string) *TaskError {
	return NewTaskError(ErrorCategoryNotFound, code, message, operation)
}

// NewContractError creates a new contract violation error
func NewContractError(code, message, operation string) *TaskError {
	return NewTaskError(ErrorCategoryContract, code, message, operation)
}

// NewTransportError creates a new transport error
func NewTransportError(code, message, operation string) *TaskError {
	return NewTaskError(ErrorCategoryTransport, code, message, operation)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(code, message, operation string) *TaskError {
	return NewTaskError(ErrorCategoryConfiguration, code, message, operation)
}
