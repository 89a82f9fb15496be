package taskstore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maxkimambo/taskboard/internal/api"
	"github.com/maxkimambo/taskboard/internal/client"
	"github.com/maxkimambo/taskboard/internal/config"
	taskerrors "github.com/maxkimambo/taskboard/internal/errors"
	"github.com/maxkimambo/taskboard/internal/scheduler"
	"github.com/maxkimambo/taskboard/internal/server"
)

// MockSyncer implements the Syncer interface for testing
type MockSyncer struct {
	mock.Mock
}

func (m *MockSyncer) List(ctx context.Context) ([]api.Task, error) {
	args := m.Called(ctx)
	tasks, _ := args.Get(0).([]api.Task)
	return tasks, args.Error(1)
}

func (m *MockSyncer) ListWithRetry(ctx context.Context) ([]api.Task, error) {
	args := m.Called(ctx)
	tasks, _ := args.Get(0).([]api.Task)
	return tasks, args.Error(1)
}

func (m *MockSyncer) Add(ctx context.Context, task api.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockSyncer) Replace(ctx context.Context, index int, task api.Task) error {
	return m.Called(ctx, index, task).Error(0)
}

func (m *MockSyncer) Delete(ctx context.Context, index int) error {
	return m.Called(ctx, index).Error(0)
}

// liveBackend runs a real task server behind handler wrapping.
type liveBackend struct {
	store  *server.Store
	client *client.Client
}

func newLiveBackend(t *testing.T, wrap func(http.Handler) http.Handler, initial ...api.Task) *liveBackend {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := server.NewStore(ctx, initial...)
	handler := server.New(config.Default().Server, store).Handler()
	if wrap != nil {
		handler = wrap(handler)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := config.Default().Client
	cfg.Server = ts.URL
	cfg.RetryMaxElapsed = time.Second
	return &liveBackend{store: store, client: client.New(cfg)}
}

func (b *liveBackend) serverTasks(t *testing.T) []api.Task {
	t.Helper()
	tasks, err := b.store.List(context.Background())
	require.NoError(t, err)
	return tasks
}

func newLoop(t *testing.T) *scheduler.Loop {
	t.Helper()
	loop := scheduler.NewLoop(context.Background())
	t.Cleanup(loop.Close)
	return loop
}

func TestStore_BuyMilkScenario(t *testing.T) {
	backend := newLiveBackend(t, nil)
	loop := newLoop(t)
	store := New(backend.client, loop)

	var seen [][]api.Task
	loop.Do(func() {
		store.Tasks().On(func(tasks []api.Task) { seen = append(seen, tasks) })
	})

	var err error
	loop.Do(func() { err = store.Add("Buy milk") })
	require.NoError(t, err)
	loop.Wait()

	require.Len(t, seen, 2)
	assert.Empty(t, seen[0])
	assert.Equal(t, []api.Task{{Title: "Buy milk", Done: false}}, seen[1])
	assert.Equal(t, []api.Task{{Title: "Buy milk"}}, backend.serverTasks(t))

	loop.Do(func() { err = store.Toggle(0) })
	require.NoError(t, err)
	loop.Wait()

	assert.Equal(t, []api.Task{{Title: "Buy milk", Done: true}}, store.Snapshot())
	assert.Equal(t, []api.Task{{Title: "Buy milk", Done: true}}, backend.serverTasks(t))
}

func TestStore_UpdateIsVisibleBeforeConfirmation(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{}, 1)
	backend := newLiveBackend(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				arrived <- struct{}{}
				<-release
			}
			next.ServeHTTP(w, r)
		})
	})
	loop := newLoop(t)
	store := New(backend.client, loop)

	var err error
	loop.Do(func() { err = store.Add("Buy milk") })
	require.NoError(t, err)
	<-arrived

	assert.Equal(t, []api.Task{{Title: "Buy milk"}}, store.Snapshot())
	assert.Empty(t, backend.serverTasks(t))

	close(release)
	loop.Wait()
	assert.Equal(t, []api.Task{{Title: "Buy milk"}}, backend.serverTasks(t))
}

func TestStore_Load(t *testing.T) {
	backend := newLiveBackend(t, nil, api.Task{Title: "A"}, api.Task{Title: "B", Done: true})
	loop := newLoop(t)
	store := New(backend.client, loop)

	loop.Do(store.Load)
	loop.Wait()

	assert.Equal(t, []api.Task{{Title: "A"}, {Title: "B", Done: true}}, store.Snapshot())
}

func TestStore_EditAndDeleteShiftIndexes(t *testing.T) {
	backend := newLiveBackend(t, nil, api.Task{Title: "A"}, api.Task{Title: "B"}, api.Task{Title: "C"})
	loop := newLoop(t)
	store := New(backend.client, loop)
	loop.Do(store.Load)
	loop.Wait()

	// One action at a time: indexes are only stable between settled requests
	var deleteErr, editErr error
	loop.Do(func() { deleteErr = store.Delete(0) })
	loop.Wait()
	loop.Do(func() { editErr = store.Edit(0, "B edited") })
	loop.Wait()
	require.NoError(t, deleteErr)
	require.NoError(t, editErr)

	want := []api.Task{{Title: "B edited"}, {Title: "C"}}
	assert.Equal(t, want, store.Snapshot())
	assert.Equal(t, want, backend.serverTasks(t))
}

func TestStore_PreflightValidation(t *testing.T) {
	syncer := &MockSyncer{}
	store := New(syncer, inlineScheduler{})

	tests := []struct {
		name     string
		op       func() error
		category taskerrors.ErrorCategory
	}{
		{"Empty title", func() error { return store.Add("") }, taskerrors.ErrorCategoryValidation},
		{"Whitespace title", func() error { return store.Add("   ") }, taskerrors.ErrorCategoryValidation},
		{"Toggle on empty list", func() error { return store.Toggle(0) }, taskerrors.ErrorCategoryNotFound},
		{"Edit out of range", func() error { return store.Edit(3, "x") }, taskerrors.ErrorCategoryNotFound},
		{"Delete negative", func() error { return store.Delete(-1) }, taskerrors.ErrorCategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			assert.True(t, taskerrors.IsCategory(err, tt.category), "got %v", err)
			assert.Empty(t, store.Snapshot())
		})
	}

	err := store.Add("")
	taskErr, ok := taskerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Task can't be empty", taskErr.Message)
	syncer.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestStore_FailedRequestIsReportedAndReconciled(t *testing.T) {
	syncer := &MockSyncer{}
	rejected := taskerrors.NewRejectedError("Replace task", 404, "NOT_FOUND-001", "Task error")
	syncer.On("List", mock.Anything).Return([]api.Task{{Title: "A"}}, nil).Once()
	syncer.On("Replace", mock.Anything, 0, api.Task{Title: "A", Done: true}).Return(rejected).Once()
	syncer.On("ListWithRetry", mock.Anything).Return([]api.Task{{Title: "A"}, {Title: "from elsewhere"}}, nil).Once()

	var reported []error
	store := New(syncer, inlineScheduler{}, WithReporter(func(err error) {
		reported = append(reported, err)
	}))

	var seen [][]api.Task
	store.Tasks().On(func(tasks []api.Task) { seen = append(seen, tasks) })
	store.Load()
	require.NoError(t, store.Toggle(0))

	require.Len(t, reported, 1)
	assert.Same(t, rejected, reported[0])
	assert.Equal(t, [][]api.Task{
		{},
		{{Title: "A"}},
		{{Title: "A", Done: true}},
		{{Title: "A"}, {Title: "from elsewhere"}},
	}, seen)
	syncer.AssertExpectations(t)
}

func TestStore_ReconcileFailureIsReported(t *testing.T) {
	syncer := &MockSyncer{}
	unreachable := taskerrors.NewUnreachableError("Add task", "http://x", errors.New("refused"))
	syncer.On("Add", mock.Anything, api.Task{Title: "x"}).Return(unreachable).Once()
	syncer.On("ListWithRetry", mock.Anything).Return(nil, unreachable).Once()

	var reported []error
	store := New(syncer, inlineScheduler{}, WithReporter(func(err error) {
		reported = append(reported, err)
	}))

	require.NoError(t, store.Add("x"))

	assert.Len(t, reported, 2)
	// Nothing authoritative arrived, so the optimistic copy stays
	assert.Equal(t, []api.Task{{Title: "x"}}, store.Snapshot())
	syncer.AssertExpectations(t)
}

func TestStore_ReconcileWaitsForQueuedMutations(t *testing.T) {
	syncer := &MockSyncer{}
	store := New(syncer, &manualScheduler{})
	sched := store.sched.(*manualScheduler)

	syncer.On("Add", mock.Anything, api.Task{Title: "a"}).Return(errors.New("boom")).Once()
	syncer.On("Add", mock.Anything, api.Task{Title: "b"}).Return(nil).Once()
	syncer.On("ListWithRetry", mock.Anything).Return([]api.Task{{Title: "b"}}, nil).Once()

	require.NoError(t, store.Add("a"))
	require.NoError(t, store.Add("b"))
	require.Equal(t, 1, sched.pendingSpawns(), "only the first request may be on the wire")

	// "a" fails while "b" is still queued: "b" goes out, no fetch yet
	sched.runSpawn(0)
	sched.drainDispatch()
	assert.Equal(t, 1, sched.pendingSpawns())
	syncer.AssertNotCalled(t, "ListWithRetry", mock.Anything)

	// "b" lands, now the store fetches
	sched.runSpawn(0)
	sched.drainDispatch()
	require.Equal(t, 1, sched.pendingSpawns())
	sched.runSpawn(0)
	sched.drainDispatch()

	assert.Equal(t, []api.Task{{Title: "b"}}, store.Snapshot())
	syncer.AssertExpectations(t)
}

func TestStore_RequestsLeaveInMutationOrder(t *testing.T) {
	syncer := &MockSyncer{}
	store := New(syncer, &manualScheduler{})
	sched := store.sched.(*manualScheduler)

	var calls []string
	record := func(name string) func(mock.Arguments) {
		return func(mock.Arguments) { calls = append(calls, name) }
	}
	syncer.On("Add", mock.Anything, api.Task{Title: "A"}).Run(record("add A")).Return(nil).Once()
	syncer.On("Replace", mock.Anything, 0, api.Task{Title: "A", Done: true}).Run(record("toggle 0")).Return(nil).Once()
	syncer.On("Add", mock.Anything, api.Task{Title: "B"}).Run(record("add B")).Return(nil).Once()
	syncer.On("Delete", mock.Anything, 0).Run(record("delete 0")).Return(nil).Once()

	require.NoError(t, store.Add("A"))
	require.NoError(t, store.Toggle(0))
	require.NoError(t, store.Add("B"))
	require.NoError(t, store.Delete(0))
	assert.Equal(t, []api.Task{{Title: "B"}}, store.Snapshot())

	for sched.pendingSpawns() > 0 {
		require.Equal(t, 1, sched.pendingSpawns())
		sched.runSpawn(0)
		sched.drainDispatch()
	}

	assert.Equal(t, []string{"add A", "toggle 0", "add B", "delete 0"}, calls)
	syncer.AssertExpectations(t)
}

func TestStore_SlowAddDoesNotReorderLaterMutations(t *testing.T) {
	backend := newLiveBackend(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				time.Sleep(100 * time.Millisecond)
			}
			next.ServeHTTP(w, r)
		})
	})
	loop := newLoop(t)

	var reported []error
	store := New(backend.client, loop, WithReporter(func(err error) {
		reported = append(reported, err)
	}))

	var err error
	loop.Do(func() {
		if err = store.Add("A"); err != nil {
			return
		}
		err = store.Toggle(0)
	})
	require.NoError(t, err)
	loop.Wait()

	loop.Do(func() {
		if err = store.Add("B"); err != nil {
			return
		}
		if err = store.Delete(0); err != nil {
			return
		}
		err = store.Edit(0, "B edited")
	})
	require.NoError(t, err)
	loop.Wait()

	var failures []error
	loop.Do(func() { failures = reported })
	assert.Empty(t, failures)

	want := []api.Task{{Title: "B edited"}}
	assert.Equal(t, want, store.Snapshot())
	assert.Equal(t, want, backend.serverTasks(t))
}

func TestStore_StaleFetchIsDiscarded(t *testing.T) {
	syncer := &MockSyncer{}
	store := New(syncer, &manualScheduler{})
	sched := store.sched.(*manualScheduler)

	syncer.On("List", mock.Anything).Return([]api.Task{}, nil).Once()
	syncer.On("Add", mock.Anything, api.Task{Title: "x"}).Return(nil).Once()
	syncer.On("ListWithRetry", mock.Anything).Return([]api.Task{{Title: "x"}}, nil).Once()

	store.Load()
	require.NoError(t, store.Add("x"))

	// Load's reply predates the add and must not wipe it
	sched.runSpawn(0)
	sched.drainDispatch()
	assert.Equal(t, []api.Task{{Title: "x"}}, store.Snapshot())

	// Once the add settles the store re-fetches
	sched.runSpawn(0)
	sched.drainDispatch()
	sched.runSpawn(0)
	sched.drainDispatch()

	assert.Equal(t, []api.Task{{Title: "x"}}, store.Snapshot())
	assert.Zero(t, sched.pendingSpawns())
	syncer.AssertExpectations(t)
}

// inlineScheduler runs everything synchronously on the caller's goroutine.
type inlineScheduler struct{}

func (inlineScheduler) Spawn(_ string, fn func(ctx context.Context)) {
	fn(context.Background())
}

func (inlineScheduler) Dispatch(fn func()) {
	fn()
}

// manualScheduler queues work so tests can choose the interleaving.
type manualScheduler struct {
	spawns   []func(ctx context.Context)
	dispatch []func()
}

func (m *manualScheduler) Spawn(_ string, fn func(ctx context.Context)) {
	m.spawns = append(m.spawns, fn)
}

func (m *manualScheduler) Dispatch(fn func()) {
	m.dispatch = append(m.dispatch, fn)
}

func (m *manualScheduler) pendingSpawns() int {
	return len(m.spawns)
}

func (m *manualScheduler) runSpawn(i int) {
	fn := m.spawns[i]
	m.spawns = append(m.spawns[:i], m.spawns[i+1:]...)
	fn(context.Background())
}

func (m *manualScheduler) drainDispatch() {
	for len(m.dispatch) > 0 {
		fn := m.dispatch[0]
		m.dispatch = m.dispatch[1:]
		fn()
	}
}
