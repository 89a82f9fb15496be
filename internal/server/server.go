// Package server holds the authoritative task list and serves it over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/maxkimambo/taskboard/internal/api"
	"github.com/maxkimambo/taskboard/internal/config"
	taskerrors "github.com/maxkimambo/taskboard/internal/errors"
	"github.com/maxkimambo/taskboard/internal/logger"
)

// Server exposes a Store on /api/tasks.
type Server struct {
	store  *Store
	router *mux.Router
	cfg    config.ServerConfig
}

// New wires the routes for store.
func New(cfg config.ServerConfig, store *Store) *Server {
	s := &Server{
		store:  store,
		router: mux.NewRouter(),
		cfg:    cfg,
	}
	s.routes()
	return s
}

// SeedTasks converts configured seed entries into tasks.
func SeedTasks(seed []config.SeedTask) []api.Task {
	tasks := make([]api.Task, 0, len(seed))
	for _, t := range seed {
		tasks = append(tasks, api.Task{Title: t.Title, Done: t.Done})
	}
	return tasks
}

func (s *Server) routes() {
	s.router.Use(accessLog)

	s.router.Methods(http.MethodGet).Path(api.TasksPath).HandlerFunc(s.listTasks)
	s.router.Methods(http.MethodPost).Path(api.TasksPath).HandlerFunc(s.addTask)
	s.router.Methods(http.MethodPut).Path(api.TaskPath).HandlerFunc(s.replaceTask)
	s.router.Methods(http.MethodDelete).Path(api.TaskPath).HandlerFunc(s.deleteTask)
	s.router.Methods(http.MethodGet).Path(api.PingPath).HandlerFunc(s.ping)

	// mux skips middleware for these, so wrap them explicitly
	s.router.NotFoundHandler = accessLog(http.HandlerFunc(notFound))
	s.router.MethodNotAllowedHandler = accessLog(http.HandlerFunc(notFound))
}

// Handler returns the HTTP handler serving the task API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.User.Starting("Listening on " + listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Op.Info("Shutting down task server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		_ = httpServer.Close()
		return err
	}
	return <-errCh
}

func accessLog(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		m := httpsnoop.CaptureMetrics(handler, writer, request)
		logger.Op.WithFields(map[string]interface{}{
			"method":     request.Method,
			"url":        request.URL.String(),
			"status":     m.Code,
			"duration":   m.Duration,
			"request_id": request.Header.Get(api.RequestIDHeader),
		}).Info("handled")
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, taskerrors.NewRouteNotFoundError(r.Method, r.URL.Path))
}
