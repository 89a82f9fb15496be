// Package api defines the JSON bodies exchanged on /api/tasks.
package api

import (
	"slices"
	"strconv"
	"strings"

	taskerrors "github.com/maxkimambo/taskboard/internal/errors"
)

// Route paths served by the task server.
const (
	TasksPath = "/api/tasks"
	TaskPath  = "/api/tasks/{index}"
	PingPath  = "/api/ping"

	// RequestIDHeader correlates client requests with server access logs.
	RequestIDHeader = "X-Request-ID"
)

// TaskPathFor fills the {index} placeholder of TaskPath.
func TaskPathFor(index int) string {
	return strings.Replace(TaskPath, "{index}", strconv.Itoa(index), 1)
}

// Task is a single entry of the ordered list. It has no identifier of its
// own: its position in the list is its identity.
type Task struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// CloneTasks copies a task list so the copy can be mutated freely.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return []Task{}
	}
	return slices.Clone(tasks)
}

// TaskListResponse is the body of GET /api/tasks.
type TaskListResponse struct {
	Tasks []Task `json:"tasks"`
}

// SuccessResponse is the body of every successful mutation.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorDetail describes why a request failed.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the single envelope used for every failed request.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// PingResponse is the body of GET /api/ping.
type PingResponse struct {
	Pong bool `json:"pong"`
}

// NewErrorResponse builds the envelope for err.
func NewErrorResponse(err *taskerrors.TaskError) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    taskerrors.GetErrorCode(err),
			Message: err.Message,
		},
	}
}
