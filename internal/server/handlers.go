package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/maxkimambo/taskboard/internal/api"
	taskerrors "github.com/maxkimambo/taskboard/internal/errors"
	"github.com/maxkimambo/taskboard/internal/logger"
	"github.com/maxkimambo/taskboard/internal/validation"
)

const maxBodyBytes = 1 << 20

var (
	errNotObject    = errors.New("body is not a JSON object")
	errTrailingData = errors.New("unexpected data after the task object")
)

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.TaskListResponse{Tasks: tasks})
}

func (s *Server) addTask(w http.ResponseWriter, r *http.Request) {
	task, err := decodeTask(w, r, "Add task")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Append(r.Context(), task); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.SuccessResponse{Success: true})
}

func (s *Server) replaceTask(w http.ResponseWriter, r *http.Request) {
	index, err := validation.ParseIndex(mux.Vars(r)["index"], "Replace task")
	if err != nil {
		writeError(w, err)
		return
	}
	task, err := decodeTask(w, r, "Replace task")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Replace(r.Context(), index, task); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.SuccessResponse{Success: true})
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	index, err := validation.ParseIndex(mux.Vars(r)["index"], "Delete task")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Remove(r.Context(), index); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.SuccessResponse{Success: true})
}

func (s *Server) ping(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.PingResponse{Pong: true})
}

// decodeTask reads exactly one {title, done} object from the body. null,
// other JSON values and anything after the object are rejected.
func decodeTask(w http.ResponseWriter, r *http.Request, operation string) (api.Task, error) {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	var raw json.RawMessage
	if err := decoder.Decode(&raw); err != nil {
		return api.Task{}, taskerrors.NewInvalidBodyError(operation, err)
	}
	if err := decoder.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return api.Task{}, taskerrors.NewInvalidBodyError(operation, errTrailingData)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return api.Task{}, taskerrors.NewInvalidBodyError(operation, errNotObject)
	}

	var task api.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return api.Task{}, taskerrors.NewInvalidBodyError(operation, err)
	}
	return task, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Op.WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Warn("Failed to write response")
	}
}

// writeError replies with the structured envelope. Errors that are not
// TaskErrors (store closed, cancelled request) become 503s.
func writeError(w http.ResponseWriter, err error) {
	taskErr, ok := taskerrors.As(err)
	if !ok {
		taskErr = taskerrors.NewUnavailableError("Task store", err)
	}
	writeJSON(w, taskErr.HTTPStatus(), api.NewErrorResponse(taskErr))
}
