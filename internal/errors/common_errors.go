package errors

import (
	"fmt"
	"strings"
)

// Common error codes
const (
	// Validation error codes
	CodeInvalidParameter = "001"
	CodeInvalidBody      = "002"
	CodeEmptyTitle       = "003"
	CodeInvalidConfig    = "004"

	// Not found error codes
	CodeTaskIndex = "001"
	CodeRoute     = "002"

	// Contract error codes
	CodeNotConfirmed = "001"
	CodeRejected     = "002"

	// Transport error codes
	CodeUnreachable = "001"
	CodeUnavailable = "002"

	// Parse error codes
	CodeMalformedResponse = "001"
)

// Messages shared by the server envelope and the client display.
const (
	MsgInvalidParameter = "Invalid parameter"
	MsgTaskError        = "Task error"
	MsgInvalidBody      = "Invalid body"
	MsgEmptyTitle       = "Task can't be empty"
	MsgNotFound         = "Not found"
)

// NewInvalidParameterError creates an error for a missing or unparseable path parameter
func NewInvalidParameterError(param, value, operation string) *TaskError {
	return NewValidationError(CodeInvalidParameter, MsgInvalidParameter, operation).
		WithContext("parameter", param).
		WithContext("value", value).
		WithTroubleshooting(
			"Task indexes are non-negative integers",
			"Run 'taskboard list' to see the current task numbers",
		)
}

// NewTaskIndexError creates an error for an index outside the task list
func NewTaskIndexError(index, length int, operation string) *TaskError {
	return NewNotFoundError(CodeTaskIndex, MsgTaskError, operation).
		WithContext("index", index).
		WithContext("length", length).
		WithTroubleshooting(
			"The task list may have changed since it was last listed",
			"Run 'taskboard list' and retry with a current task number",
		)
}

// NewInvalidBodyError creates an error for a request body that is not a task
func NewInvalidBodyError(operation string, originalErr error) *TaskError {
	return NewValidationError(CodeInvalidBody, MsgInvalidBody, operation).
		WithOriginalError(originalErr)
}

// NewEmptyTitleError creates an error for an add or edit with a blank title
func NewEmptyTitleError(operation string) *TaskError {
	return NewValidationError(CodeEmptyTitle, MsgEmptyTitle, operation).
		WithTroubleshooting("Provide a non-empty task title")
}

// NewRouteNotFoundError creates an error for an unknown method/path pair
func NewRouteNotFoundError(method, path string) *TaskError {
	return NewNotFoundError(CodeRoute, MsgNotFound, "Route lookup").
		WithContext("method", method).
		WithContext("path", path)
}

// NewNotConfirmedError creates an error for a response without success:true
func NewNotConfirmedError(operation string) *TaskError {
	return NewContractError(CodeNotConfirmed, "Server did not confirm the operation", operation).
		WithTroubleshooting(
			"Local changes were reconciled against the server's task list",
			"Check the server logs for the request ID",
		)
}

// NewRejectedError creates an error for a structured error envelope returned by the server
func NewRejectedError(operation string, status int, code, message string) *TaskError {
	return NewContractError(CodeRejected, fmt.Sprintf("Server rejected the operation: %s", message), operation).
		WithContext("status", status).
		WithContext("remote_code", code)
}

// NewUnreachableError creates an error for transport failures
func NewUnreachableError(operation, url string, originalErr error) *TaskError {
	return NewTransportError(CodeUnreachable, "Task server unreachable", operation).
		WithContext("url", url).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Check that 'taskboard serve' is running",
			"Verify the --server address or TASKBOARD_SERVER",
		)
}

// NewUnavailableError creates an error for a store that cannot take requests
func NewUnavailableError(operation string, originalErr error) *TaskError {
	return NewTransportError(CodeUnavailable, "Service unavailable", operation).
		WithOriginalError(originalErr)
}

// NewMalformedResponseError creates an error for response bodies we cannot decode
func NewMalformedResponseError(operation string, originalErr error) *TaskError {
	return NewTaskError(ErrorCategoryParse, CodeMalformedResponse, "Parse error", operation).
		WithOriginalError(originalErr)
}

// NewInvalidConfigError creates an error for invalid configuration values
func NewInvalidConfigError(field, value, reason string) *TaskError {
	return NewConfigurationError(CodeInvalidConfig,
		fmt.Sprintf("Invalid value for %s: '%s' (%s)", field, value, reason),
		"Configuration loading").
		WithContext("field", field).
		WithContext("value", value)
}

// IsRetryableError determines if an error is retryable
func IsRetryableError(err error) bool {
	taskErr, ok := As(err)
	if !ok {
		return false
	}
	if taskErr.Category == ErrorCategoryTransport {
		return true
	}
	if taskErr.Category == ErrorCategoryContract {
		if status, ok := taskErr.Context["status"].(int); ok {
			return status == 502 || status == 503 || status == 504
		}
	}
	if taskErr.OriginalError != nil {
		errStr := strings.ToLower(taskErr.OriginalError.Error())
		return strings.Contains(errStr, "timeout") ||
			strings.Contains(errStr, "connection reset")
	}
	return false
}

// GetErrorSeverity returns the severity level of an error
func GetErrorSeverity(err error) string {
	if taskErr, ok := As(err); ok {
		switch taskErr.Category {
		case ErrorCategoryValidation, ErrorCategoryConfiguration, ErrorCategoryNotFound:
			return "WARNING"
		case ErrorCategoryContract, ErrorCategoryParse:
			return "CRITICAL"
		default:
			return "ERROR"
		}
	}
	return "ERROR"
}
