// Package ticker alternates a clock label between two states.
package ticker

import (
	"context"
	"time"

	"github.com/maxkimambo/taskboard/internal/logger"
	"github.com/maxkimambo/taskboard/internal/scheduler"
	"github.com/maxkimambo/taskboard/internal/signal"
)

// Labels shown by the ticker. Idle is shown until the ticker starts.
const (
	Idle = "-"
	Tik  = "⏰ tik"
	Tok  = "⏰ tok"
)

// Ticker feeds its own Signal. It never touches task data.
type Ticker struct {
	label    *signal.Signal[string]
	sched    scheduler.Scheduler
	interval time.Duration
	after    func(time.Duration) <-chan time.Time
}

// Option configures a Ticker.
type Option func(*Ticker)

// WithAfter replaces time.After, letting tests drive the ticker by hand.
func WithAfter(after func(time.Duration) <-chan time.Time) Option {
	return func(t *Ticker) {
		t.after = after
	}
}

// New creates a ticker showing Idle.
func New(sched scheduler.Scheduler, interval time.Duration, opts ...Option) *Ticker {
	t := &Ticker{
		label:    signal.New(Idle),
		sched:    sched,
		interval: interval,
		after:    time.After,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Label returns the signal holding the current label.
func (t *Ticker) Label() *signal.Signal[string] {
	return t.label
}

// Run shows Tik, waits one interval, shows Tok, waits again and repeats
// until ctx is cancelled. Labels are set on the scheduler loop so they
// interleave with task updates.
func (t *Ticker) Run(ctx context.Context) {
	for {
		for _, label := range [...]string{Tik, Tok} {
			t.show(label)
			select {
			case <-ctx.Done():
				logger.Op.Debug("Ticker stopped")
				return
			case <-t.after(t.interval):
			}
		}
	}
}

func (t *Ticker) show(label string) {
	t.sched.Dispatch(func() {
		t.label.Set(label)
	})
}
