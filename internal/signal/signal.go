// Package signal provides a reactive value cell with ordered subscriber
// notification.
package signal

import "sync"

// Subscriber receives every value a Signal is set to.
type Subscriber[T any] func(T)

// Option configures a Signal at construction time.
type Option[T any] func(*Signal[T])

// WithCopy sets the function used to hand out copies of the current value.
// Reference types such as slices and maps need one so callers mutating the
// result of Get never touch the live value.
func WithCopy[T any](copyFn func(T) T) Option[T] {
	return func(s *Signal[T]) {
		s.copyFn = copyFn
	}
}

// Signal owns a current value and an ordered list of subscribers.
//
// Set notifies subscribers synchronously on the calling goroutine, so a
// Signal must be mutated from one goroutine at a time (the scheduler loop).
// Get may be called from anywhere.
type Signal[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   []Subscriber[T]
	copyFn func(T) T
}

// New creates a Signal holding initial with no subscribers.
func New[T any](initial T, opts ...Option[T]) *Signal[T] {
	s := &Signal[T]{value: initial}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a copy of the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clone(s.value)
}

// Set replaces the current value and invokes every subscriber with it in
// registration order. A panicking subscriber propagates to the caller.
func (s *Signal[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	subs := make([]Subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub(s.clone(v))
	}
}

// On registers fn and invokes it once with the current value so a newly
// mounted view renders without waiting for the next Set.
func (s *Signal[T]) On(fn Subscriber[T]) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	current := s.clone(s.value)
	s.mu.Unlock()

	fn(current)
}

func (s *Signal[T]) clone(v T) T {
	if s.copyFn == nil {
		return v
	}
	return s.copyFn(v)
}
