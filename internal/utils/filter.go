package utils

import (
	"fmt"
	"strings"

	"github.com/maxkimambo/taskboard/internal/api"
)

// StatusFilter selects tasks by their done flag.
type StatusFilter string

const (
	StatusAll     StatusFilter = "all"
	StatusDone    StatusFilter = "done"
	StatusPending StatusFilter = "pending"
)

// ParseStatusFilter parses the value of `list --status`.
// Input examples:
//   - "" or "all" → every task
//   - "done"      → finished tasks
//   - "pending"   → unfinished tasks ("todo" is accepted too)
func ParseStatusFilter(raw string) (StatusFilter, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all":
		return StatusAll, nil
	case "done":
		return StatusDone, nil
	case "pending", "todo":
		return StatusPending, nil
	default:
		return "", fmt.Errorf("invalid status filter %q: expected all, done or pending", raw)
	}
}

// Matches reports whether task passes the filter.
func (f StatusFilter) Matches(task api.Task) bool {
	switch f {
	case StatusDone:
		return task.Done
	case StatusPending:
		return !task.Done
	default:
		return true
	}
}
