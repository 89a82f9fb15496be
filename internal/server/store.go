package server

import (
	"context"
	"errors"

	"github.com/maxkimambo/taskboard/internal/api"
	"github.com/maxkimambo/taskboard/internal/validation"
)

// ErrStoreClosed is returned for operations submitted after the store's
// processing loop has stopped.
var ErrStoreClosed = errors.New("task store closed")

type operation struct {
	apply func(tasks []api.Task) ([]api.Task, error)
	reply chan error
}

// Store is the authoritative ordered task list. A single goroutine owns the
// slice and applies operations one at a time in arrival order, so every
// operation observes the result of the one before it.
type Store struct {
	ops  chan operation
	done chan struct{}
}

// NewStore starts the processing loop. It stops when ctx is cancelled; the
// list is lost with it.
func NewStore(ctx context.Context, initial ...api.Task) *Store {
	s := &Store{
		ops:  make(chan operation),
		done: make(chan struct{}),
	}
	go s.run(ctx, api.CloneTasks(initial))
	return s
}

func (s *Store) run(ctx context.Context, tasks []api.Task) {
	defer close(s.done)
	for {
		select {
		case op := <-s.ops:
			next, err := op.apply(tasks)
			if err == nil {
				tasks = next
			}
			op.reply <- err
		case <-ctx.Done():
			return
		}
	}
}

func (s *Store) submit(ctx context.Context, apply func([]api.Task) ([]api.Task, error)) error {
	op := operation{apply: apply, reply: make(chan error, 1)}
	select {
	case s.ops <- op:
	case <-s.done:
		return ErrStoreClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	// Once accepted the operation always completes; wait for it even if the
	// caller gives up so the reply is never lost mid-mutation.
	return <-op.reply
}

// List returns a snapshot of the tasks in order.
func (s *Store) List(ctx context.Context) ([]api.Task, error) {
	var snapshot []api.Task
	err := s.submit(ctx, func(tasks []api.Task) ([]api.Task, error) {
		snapshot = api.CloneTasks(tasks)
		return tasks, nil
	})
	return snapshot, err
}

// Len returns the number of tasks.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	err := s.submit(ctx, func(tasks []api.Task) ([]api.Task, error) {
		n = len(tasks)
		return tasks, nil
	})
	return n, err
}

// Append adds task to the end of the list.
func (s *Store) Append(ctx context.Context, task api.Task) error {
	return s.submit(ctx, func(tasks []api.Task) ([]api.Task, error) {
		return append(tasks, task), nil
	})
}

// Replace overwrites the whole record at index.
func (s *Store) Replace(ctx context.Context, index int, task api.Task) error {
	return s.submit(ctx, func(tasks []api.Task) ([]api.Task, error) {
		if err := validation.ValidateIndex(index, len(tasks), "Replace task"); err != nil {
			return tasks, err
		}
		tasks[index] = task
		return tasks, nil
	})
}

// Remove deletes the task at index; every later task moves down one position.
func (s *Store) Remove(ctx context.Context, index int) error {
	return s.submit(ctx, func(tasks []api.Task) ([]api.Task, error) {
		if err := validation.ValidateIndex(index, len(tasks), "Delete task"); err != nil {
			return tasks, err
		}
		return append(tasks[:index], tasks[index+1:]...), nil
	})
}
