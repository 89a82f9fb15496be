package errors

import (
	"fmt"
	"sort"
	"strings"
)

// DisplayErrorSummary provides a brief summary of the error for logs
func DisplayErrorSummary(err error) string {
	if taskErr, ok := As(err); ok {
		return fmt.Sprintf("%s-%s: %s", taskErr.Category, taskErr.Code, taskErr.Message)
	}

	errStr := err.Error()
	if len(errStr) > 100 {
		return errStr[:97] + "..."
	}
	return errStr
}

// ShouldDisplayTroubleshooting determines if troubleshooting info should be shown
func ShouldDisplayTroubleshooting(err error) bool {
	if taskErr, ok := As(err); ok {
		return len(taskErr.Troubleshooting) > 0
	}
	return false
}

// FormatForCLI formats an error for command-line display with proper spacing
func FormatForCLI(err error) string {
	taskErr, ok := As(err)
	if !ok {
		return fmt.Sprintf("\nError: %v\n", err)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\nError [%s-%s]\n", taskErr.Category, taskErr.Code))
	sb.WriteString(fmt.Sprintf("  %s\n", taskErr.Message))

	if taskErr.Operation != "" {
		sb.WriteString(fmt.Sprintf("\nFailed Operation: %s\n", taskErr.Operation))
	}

	if len(taskErr.Context) > 0 {
		sb.WriteString("\nDetails:\n")
		for _, line := range ContextLines(taskErr) {
			sb.WriteString(fmt.Sprintf("  %s\n", line))
		}
	}

	if len(taskErr.Troubleshooting) > 0 {
		sb.WriteString("\nHow to resolve:\n")
		for i, step := range taskErr.Troubleshooting {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	}

	if taskErr.OriginalError != nil {
		sb.WriteString(fmt.Sprintf("\nTechnical details: %v\n", taskErr.OriginalError))
	}

	return sb.String()
}

// ContextLines returns the error context as sorted "key: value" lines.
func ContextLines(taskErr *TaskError) []string {
	keys := make([]string, 0, len(taskErr.Context))
	for k := range taskErr.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, taskErr.Context[k]))
	}
	return lines
}

// IsUserError determines if an error is due to user input/configuration
func IsUserError(err error) bool {
	if taskErr, ok := As(err); ok {
		return taskErr.Category == ErrorCategoryValidation ||
			taskErr.Category == ErrorCategoryNotFound ||
			taskErr.Category == ErrorCategoryConfiguration
	}
	return false
}

// GetErrorCode extracts the error code for reporting
func GetErrorCode(err error) string {
	if taskErr, ok := As(err); ok {
		return fmt.Sprintf("%s-%s", taskErr.Category, taskErr.Code)
	}
	return "UNKNOWN"
}
