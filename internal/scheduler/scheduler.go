// Package scheduler runs UI state changes on a single loop goroutine and
// launches fire-and-forget background tasks that post their results back
// to that loop.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/maxkimambo/taskboard/internal/logger"
)

// Scheduler is the task-spawning API event handlers talk to. Handlers never
// block on a spawned task; they hand it off and return.
type Scheduler interface {
	// Spawn starts fn in the background. The context is cancelled when the
	// scheduler closes.
	Spawn(name string, fn func(ctx context.Context))

	// Dispatch queues fn to run on the loop, after everything queued before it.
	Dispatch(fn func())
}

// Loop is the production Scheduler. Every dispatched function runs on one
// goroutine, in order, so Signal subscribers never observe a half-applied
// mutation.
type Loop struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	idle    *sync.Cond
	queue   []func()
	pending int
	closed  bool
	wake    chan struct{}

	tasks    sync.WaitGroup
	loopDone chan struct{}
}

// NewLoop starts a loop bound to ctx.
func NewLoop(ctx context.Context) *Loop {
	ctx, cancel := context.WithCancel(ctx)
	l := &Loop{
		ctx:      ctx,
		cancel:   cancel,
		wake:     make(chan struct{}, 1),
		loopDone: make(chan struct{}),
	}
	l.idle = sync.NewCond(&l.mu)

	go l.run()
	return l
}

// Context returns the loop's context.
func (l *Loop) Context() context.Context {
	return l.ctx
}

// Dispatch queues fn to run on the loop goroutine. Functions dispatched
// after Close are dropped.
func (l *Loop) Dispatch(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.pending++
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do dispatches fn and blocks until it has run. Must not be called from the
// loop goroutine.
func (l *Loop) Do(fn func()) {
	done := make(chan struct{})
	l.Dispatch(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
	case <-l.loopDone:
	}
}

// Spawn starts a tracked background task. Wait blocks until every tracked
// task has finished.
func (l *Loop) Spawn(name string, fn func(ctx context.Context)) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		logger.Op.WithFields(map[string]interface{}{
			"task": name,
		}).Debug("Scheduler closed, task not spawned")
		return
	}
	l.pending++
	l.mu.Unlock()

	l.tasks.Add(1)
	go func() {
		defer l.tasks.Done()
		defer l.finish()
		defer l.recoverTask(name)

		logger.Op.WithFields(map[string]interface{}{
			"task": name,
		}).Debug("Task spawned")
		fn(l.ctx)
	}()
}

// Daemon starts a long-running background task that Wait does not track.
// It runs until the loop's context is cancelled.
func (l *Loop) Daemon(name string, fn func(ctx context.Context)) {
	l.tasks.Add(1)
	go func() {
		defer l.tasks.Done()
		defer l.recoverTask(name)

		logger.Op.WithFields(map[string]interface{}{
			"task": name,
		}).Debug("Daemon started")
		fn(l.ctx)
		logger.Op.WithFields(map[string]interface{}{
			"task": name,
		}).Debug("Daemon stopped")
	}()
}

// Wait blocks until no spawned task is running and the dispatch queue is
// empty, including work those tasks queued while finishing.
func (l *Loop) Wait() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.pending > 0 && !l.closed {
		l.idle.Wait()
	}
}

// Close cancels every background task, stops the loop and waits for both.
// It is safe to call more than once, and after the parent context ended.
func (l *Loop) Close() {
	l.markClosed()
	l.cancel()
	<-l.loopDone
	l.tasks.Wait()
}

func (l *Loop) run() {
	defer close(l.loopDone)
	// The parent context can end the loop before Close is called; nothing
	// queued after that will run, so Wait must stop waiting for it.
	defer l.markClosed()

	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			select {
			case <-l.wake:
				continue
			case <-l.ctx.Done():
				return
			}
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.execute(fn)
	}
}

func (l *Loop) markClosed() {
	l.mu.Lock()
	l.closed = true
	l.idle.Broadcast()
	l.mu.Unlock()
}

func (l *Loop) execute(fn func()) {
	defer l.finish()
	defer l.recoverTask("dispatch")
	fn()
}

func (l *Loop) finish() {
	l.mu.Lock()
	l.pending--
	if l.pending == 0 {
		l.idle.Broadcast()
	}
	l.mu.Unlock()
}

// recoverTask keeps one failing handler from taking the whole UI down.
func (l *Loop) recoverTask(name string) {
	if r := recover(); r != nil {
		logger.Op.WithFields(map[string]interface{}{
			"task":  name,
			"panic": fmt.Sprint(r),
			"stack": string(debug.Stack()),
		}).Error("Task panicked")
	}
}
