// Package app owns the client's application state and mounts the views
// onto it.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/maxkimambo/taskboard/internal/api"
	taskerrors "github.com/maxkimambo/taskboard/internal/errors"
	"github.com/maxkimambo/taskboard/internal/logger"
	"github.com/maxkimambo/taskboard/internal/scheduler"
	"github.com/maxkimambo/taskboard/internal/signal"
	"github.com/maxkimambo/taskboard/internal/taskstore"
	"github.com/maxkimambo/taskboard/internal/ticker"
	"github.com/maxkimambo/taskboard/internal/view"
)

// Page is a navigable path.
type Page string

const (
	PageTasks Page = "/tasks"
	PageAbout Page = "/about"
)

// Pages lists every page Navigate accepts.
var Pages = []Page{PageTasks, PageAbout}

// Runner is the scheduler the app runs on. Daemon starts the ticker, which
// never finishes on its own.
type Runner interface {
	scheduler.Scheduler
	Daemon(name string, fn func(ctx context.Context))
}

// State is everything the client UI reads from.
type State struct {
	Page  *signal.Signal[Page]
	Tasks *taskstore.Store
	Clock *ticker.Ticker
}

// Navigate switches to the page at path. Unknown paths leave the current
// page in place.
func (s *State) Navigate(path string) error {
	for _, p := range Pages {
		if string(p) == path {
			s.Page.Set(p)
			return nil
		}
	}
	return taskerrors.NewRouteNotFoundError("NAVIGATE", path)
}

// App mounts the views for State onto a writer.
type App struct {
	state  *State
	runner Runner
	view   *view.View
	out    io.Writer

	lastFrame string
	frames    int
}

// New creates an app showing the tasks page.
func New(tasks *taskstore.Store, clock *ticker.Ticker, runner Runner, v *view.View, out io.Writer) *App {
	return &App{
		state: &State{
			Page:  signal.New(PageTasks),
			Tasks: tasks,
			Clock: clock,
		},
		runner: runner,
		view:   v,
		out:    out,
	}
}

// State returns the application state.
func (a *App) State() *State {
	return a.state
}

// Start mounts the views, starts the ticker and loads the task list. Must
// run on the scheduler loop.
func (a *App) Start() {
	a.Mount()
	a.runner.Daemon("ticker", a.state.Clock.Run)
	a.state.Tasks.Load()
}

// Mount subscribes the renderer to every signal the current page reads.
// Each subscription renders once immediately.
func (a *App) Mount() {
	a.state.Page.On(func(Page) { a.render() })
	a.state.Tasks.Tasks().On(func([]api.Task) { a.render() })
	a.state.Clock.Label().On(func(string) { a.render() })
}

// Frame renders the current page.
func (a *App) Frame() string {
	switch a.state.Page.Get() {
	case PageAbout:
		return a.view.AboutPage()
	default:
		return a.view.TasksPage(a.state.Tasks.Snapshot(), a.state.Clock.Label().Get())
	}
}

// Frames returns how many distinct frames were written.
func (a *App) Frames() int {
	return a.frames
}

func (a *App) render() {
	frame := a.Frame()
	if frame == a.lastFrame {
		return
	}
	a.lastFrame = frame
	a.frames++

	if _, err := fmt.Fprintf(a.out, "%s\n\n", frame); err != nil {
		logger.Op.WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Warn("Failed to render frame")
	}
}
