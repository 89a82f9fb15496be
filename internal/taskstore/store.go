// Package taskstore keeps the client's optimistic copy of the task list and
// mirrors every local mutation to the server.
package taskstore

import (
	"context"

	"github.com/maxkimambo/taskboard/internal/api"
	taskerrors "github.com/maxkimambo/taskboard/internal/errors"
	"github.com/maxkimambo/taskboard/internal/logger"
	"github.com/maxkimambo/taskboard/internal/scheduler"
	"github.com/maxkimambo/taskboard/internal/signal"
	"github.com/maxkimambo/taskboard/internal/validation"
)

// Syncer is the server side of the sync protocol. *client.Client satisfies it.
type Syncer interface {
	List(ctx context.Context) ([]api.Task, error)
	ListWithRetry(ctx context.Context) ([]api.Task, error)
	Add(ctx context.Context, task api.Task) error
	Replace(ctx context.Context, index int, task api.Task) error
	Delete(ctx context.Context, index int) error
}

// Reporter is told about every failed request. It runs on the scheduler loop.
type Reporter func(err error)

// Option configures a Store.
type Option func(*Store)

// WithReporter replaces the default reporter, which logs the failure.
func WithReporter(r Reporter) Option {
	return func(s *Store) {
		s.report = r
	}
}

// Store is the client-side task list.
//
// Every mutating method must run on the scheduler loop. It reads the current
// list, mutates a copy, sets it (the optimistic update) and only then queues
// the request. Requests leave in the order the mutations were made, one at a
// time, so every index is resolved against the same list on both sides. A
// failed request is reported and, once the queue drains, followed by a
// re-fetch of the server's list, which replaces the optimistic copy.
type Store struct {
	tasks  *signal.Signal[[]api.Task]
	syncer Syncer
	sched  scheduler.Scheduler
	report Reporter

	// outbox holds mutations not yet confirmed; the head is on the wire.
	// generation increases with every optimistic update so a fetch that
	// raced a newer local mutation can be recognised and repeated.
	outbox     []mutation
	generation uint64
	stale      bool
}

// mutation is one queued request.
type mutation struct {
	op   string
	call func(ctx context.Context) error
}

// New creates an empty store.
func New(syncer Syncer, sched scheduler.Scheduler, opts ...Option) *Store {
	s := &Store{
		tasks:  signal.New([]api.Task{}, signal.WithCopy(api.CloneTasks)),
		syncer: syncer,
		sched:  sched,
		report: logFailure,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tasks returns the signal views subscribe to.
func (s *Store) Tasks() *signal.Signal[[]api.Task] {
	return s.tasks
}

// Snapshot returns a copy of the current list.
func (s *Store) Snapshot() []api.Task {
	return s.tasks.Get()
}

// Load fetches the server's list and replaces the local one.
func (s *Store) Load() {
	generation := s.generation
	s.sched.Spawn("List tasks", func(ctx context.Context) {
		tasks, err := s.syncer.List(ctx)
		s.sched.Dispatch(func() {
			if err != nil {
				s.report(err)
				return
			}
			s.apply(tasks, generation)
		})
	})
}

// Add appends a new, unfinished task.
func (s *Store) Add(title string) error {
	const op = "Add task"
	if err := validation.ValidateTitle(title, op); err != nil {
		return err
	}

	task := api.Task{Title: title}
	tasks := s.tasks.Get()
	s.commit(append(tasks, task))

	logger.Op.WithFields(map[string]interface{}{
		"index": len(tasks),
		"title": title,
	}).Debug("Optimistic add")

	s.send(op, func(ctx context.Context) error {
		return s.syncer.Add(ctx, task)
	})
	return nil
}

// Toggle flips the done flag of the task at index.
func (s *Store) Toggle(index int) error {
	tasks := s.tasks.Get()
	if err := validation.ValidateIndex(index, len(tasks), "Toggle task"); err != nil {
		return err
	}
	return s.SetDone(index, !tasks[index].Done)
}

// SetDone marks the task at index done or not done.
func (s *Store) SetDone(index int, done bool) error {
	const op = "Toggle task"
	tasks := s.tasks.Get()
	if err := validation.ValidateIndex(index, len(tasks), op); err != nil {
		return err
	}

	tasks[index].Done = done
	return s.replace(op, tasks, index)
}

// Edit replaces the title of the task at index.
func (s *Store) Edit(index int, title string) error {
	const op = "Edit task"
	tasks := s.tasks.Get()
	if err := validation.ValidateIndex(index, len(tasks), op); err != nil {
		return err
	}
	if err := validation.ValidateTitle(title, op); err != nil {
		return err
	}

	tasks[index].Title = title
	return s.replace(op, tasks, index)
}

// Delete removes the task at index. Every later task moves down one position
// locally and, once the request lands, on the server.
func (s *Store) Delete(index int) error {
	const op = "Delete task"
	tasks := s.tasks.Get()
	if err := validation.ValidateIndex(index, len(tasks), op); err != nil {
		return err
	}

	s.commit(append(tasks[:index], tasks[index+1:]...))
	logger.Op.WithFields(map[string]interface{}{
		"index": index,
	}).Debug("Optimistic delete")

	s.send(op, func(ctx context.Context) error {
		return s.syncer.Delete(ctx, index)
	})
	return nil
}

// replace sets tasks and sends the full record at index.
func (s *Store) replace(op string, tasks []api.Task, index int) error {
	task := tasks[index]
	s.commit(tasks)

	logger.Op.WithFields(map[string]interface{}{
		"operation": op,
		"index":     index,
		"done":      task.Done,
	}).Debug("Optimistic update")

	s.send(op, func(ctx context.Context) error {
		return s.syncer.Replace(ctx, index, task)
	})
	return nil
}

func (s *Store) commit(tasks []api.Task) {
	s.generation++
	s.tasks.Set(tasks)
}

// send queues request behind any mutation still awaiting its reply.
func (s *Store) send(op string, request func(ctx context.Context) error) {
	s.outbox = append(s.outbox, mutation{op: op, call: request})
	if len(s.outbox) == 1 {
		s.transmit()
	}
}

// transmit spawns the head of the outbox and settles its result on the loop.
func (s *Store) transmit() {
	next := s.outbox[0]
	s.sched.Spawn(next.op, func(ctx context.Context) {
		err := next.call(ctx)
		s.sched.Dispatch(func() {
			s.settle(next.op, err)
		})
	})
}

func (s *Store) settle(op string, err error) {
	s.outbox[0] = mutation{}
	s.outbox = s.outbox[1:]

	if err != nil {
		logger.Op.WithFields(map[string]interface{}{
			"operation": op,
			"queued":    len(s.outbox),
			"error":     err.Error(),
		}).Warn("Request failed, reconciling with server")
		s.report(err)
		s.stale = true
	}
	if len(s.outbox) > 0 {
		s.transmit()
		return
	}
	if s.stale {
		s.reconcile()
	}
}

// reconcile replaces the local list with the server's.
func (s *Store) reconcile() {
	s.stale = false
	generation := s.generation
	s.sched.Spawn("Reconcile tasks", func(ctx context.Context) {
		tasks, err := s.syncer.ListWithRetry(ctx)
		s.sched.Dispatch(func() {
			if err != nil {
				s.report(err)
				return
			}
			s.apply(tasks, generation)
		})
	})
}

// apply sets a fetched list unless a newer optimistic update happened while
// it was in flight. In that case the store stays stale and the next settled
// request fetches again.
func (s *Store) apply(tasks []api.Task, generation uint64) {
	if generation != s.generation {
		s.stale = true
		if len(s.outbox) == 0 {
			s.reconcile()
		}
		return
	}
	s.tasks.Set(tasks)
	logger.Op.WithFields(map[string]interface{}{
		"count": len(tasks),
	}).Debug("Task list synced")
}

func logFailure(err error) {
	logger.User.Error(taskerrors.DisplayErrorSummary(err))
}
