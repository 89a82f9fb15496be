package server

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/maxkimambo/taskboard/internal/api"
	taskerrors "github.com/maxkimambo/taskboard/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, initial ...api.Task) *Store {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewStore(ctx, initial...)
}

func TestStore_AppendAndList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Append(ctx, api.Task{Title: "A"}))
	require.NoError(t, store.Append(ctx, api.Task{Title: "B", Done: true}))

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []api.Task{{Title: "A"}, {Title: "B", Done: true}}, tasks)
}

func TestStore_ListReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, api.Task{Title: "A"})

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	tasks[0].Title = "mutated"

	again, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", again[0].Title)
}

func TestStore_EmptyListIsNotNil(t *testing.T) {
	tasks, err := newTestStore(t).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestStore_IndexShift(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, api.Task{Title: "A"}, api.Task{Title: "B"}, api.Task{Title: "C"})

	require.NoError(t, store.Remove(ctx, 0))
	tasks, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []api.Task{{Title: "B"}, {Title: "C"}}, tasks)

	require.NoError(t, store.Replace(ctx, 0, api.Task{Title: "B", Done: true}))
	tasks, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []api.Task{{Title: "B", Done: true}, {Title: "C"}}, tasks)
}

func TestStore_OutOfRange(t *testing.T) {
	ctx := context.Background()
	initial := []api.Task{{Title: "A"}, {Title: "B"}}

	tests := []struct {
		name string
		op   func(*Store) error
	}{
		{"Replace past end", func(s *Store) error { return s.Replace(ctx, 5, api.Task{Title: "X"}) }},
		{"Replace at length", func(s *Store) error { return s.Replace(ctx, 2, api.Task{Title: "X"}) }},
		{"Remove past end", func(s *Store) error { return s.Remove(ctx, 2) }},
		{"Remove negative", func(s *Store) error { return s.Remove(ctx, -1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, initial...)

			err := tt.op(store)
			require.Error(t, err)
			assert.True(t, taskerrors.IsCategory(err, taskerrors.ErrorCategoryNotFound))

			tasks, err := store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, initial, tasks)
		})
	}
}

func TestStore_RemoveFromEmpty(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	assert.Error(t, store.Remove(ctx, 0))

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStore_ConcurrentAppendsAreSerialized(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Append(ctx, api.Task{Title: fmt.Sprintf("task-%d", i)}))
		}(i)
	}
	wg.Wait()

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}

func TestStore_Closed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewStore(ctx)
	cancel()
	<-store.done

	_, err := store.List(context.Background())
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestStore_CallerContextCancelled(t *testing.T) {
	store := newTestStore(t)

	// Hold the loop busy so the next submission cannot be accepted
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = store.submit(context.Background(), func(tasks []api.Task) ([]api.Task, error) {
			close(started)
			<-release
			return tasks, nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := store.Append(ctx, api.Task{Title: "late"})
	assert.ErrorIs(t, err, context.Canceled)
	close(release)
}
