// Package validation checks task indexes and titles before they reach a
// task list, on either side of the wire.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	taskerrors "github.com/maxkimambo/taskboard/internal/errors"
)

// ValidationResult represents the result of a position check
type ValidationResult struct {
	Valid  bool
	Reason string
}

// CheckIndex reports whether index addresses an existing position in a list
// of the given length.
func CheckIndex(index, length int) ValidationResult {
	if index < 0 {
		return ValidationResult{
			Valid:  false,
			Reason: fmt.Sprintf("index %d is negative", index),
		}
	}
	if index >= length {
		return ValidationResult{
			Valid:  false,
			Reason: fmt.Sprintf("index %d is out of range for %d task(s)", index, length),
		}
	}
	return ValidationResult{
		Valid:  true,
		Reason: fmt.Sprintf("index %d addresses task %d of %d", index, index+1, length),
	}
}

// ParseIndex turns a raw path parameter into a non-negative integer. Only
// plain decimal digits are accepted: signs, spaces and missing, negative or
// overflowing values are all "Invalid parameter".
func ParseIndex(raw, operation string) (int, error) {
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		return 0, taskerrors.NewInvalidParameterError("index", raw, operation)
	}
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, taskerrors.NewInvalidParameterError("index", raw, operation)
	}
	return index, nil
}

// ValidateIndex checks an already-parsed index against length.
func ValidateIndex(index, length int, operation string) error {
	if result := CheckIndex(index, length); !result.Valid {
		return taskerrors.NewTaskIndexError(index, length, operation).
			WithContext("reason", result.Reason)
	}
	return nil
}

// ValidateTitle rejects titles that are empty once whitespace is trimmed.
func ValidateTitle(title, operation string) error {
	if strings.TrimSpace(title) == "" {
		return taskerrors.NewEmptyTitleError(operation)
	}
	return nil
}

// DisplayNumber converts a 0-based wire index to the 1-based number shown to users.
func DisplayNumber(index int) int {
	return index + 1
}

// ParseDisplayNumber converts a 1-based task number typed by a user into a
// 0-based wire index.
func ParseDisplayNumber(raw, operation string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, taskerrors.NewInvalidParameterError("task number", raw, operation).
			WithTroubleshooting("Task numbers start at 1")
	}
	return n - 1, nil
}
