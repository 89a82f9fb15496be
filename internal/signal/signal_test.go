package signal

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	s := New(42)

	assert.Equal(t, 42, s.Get())
}

func TestSignal_OnInvokesImmediately(t *testing.T) {
	s := New("-")

	var seen []string
	s.On(func(v string) { seen = append(seen, v) })

	assert.Equal(t, []string{"-"}, seen)

	s.Set("x")
	assert.Equal(t, []string{"-", "x"}, seen)
}

func TestSignal_SubscribersObserveEverySetInOrder(t *testing.T) {
	tests := []struct {
		name    string
		initial int
		sets    []int
	}{
		{name: "No sets", initial: 0, sets: nil},
		{name: "Single set", initial: 1, sets: []int{2}},
		{name: "Repeated values", initial: 5, sets: []int{5, 5, 6}},
		{name: "Many sets", initial: 0, sets: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.initial)

			var first, second []int
			s.On(func(v int) { first = append(first, v) })
			s.On(func(v int) { second = append(second, v) })

			for _, v := range tt.sets {
				s.Set(v)
			}

			expected := append([]int{tt.initial}, tt.sets...)
			assert.Equal(t, expected, first)
			assert.Equal(t, expected, second)
		})
	}
}

func TestSignal_NotifiesInRegistrationOrder(t *testing.T) {
	s := New(0)

	var order []string
	s.On(func(int) { order = append(order, "a") })
	s.On(func(int) { order = append(order, "b") })
	s.On(func(int) { order = append(order, "c") })
	order = nil

	s.Set(1)

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestSignal_LateSubscriberSeesCurrentValueFirst(t *testing.T) {
	s := New(1)
	s.Set(2)
	s.Set(3)

	var seen []int
	s.On(func(v int) { seen = append(seen, v) })
	s.Set(4)

	assert.Equal(t, []int{3, 4}, seen)
}

func TestSignal_GetReturnsCopy(t *testing.T) {
	s := New([]string{"a", "b"}, WithCopy(slices.Clone[[]string]))

	got := s.Get()
	got[0] = "changed"
	got = append(got, "c")

	assert.Equal(t, []string{"a", "b"}, s.Get())
	assert.Len(t, got, 3)
}

func TestSignal_SubscriberMutationDoesNotLeak(t *testing.T) {
	s := New([]int{1}, WithCopy(slices.Clone[[]int]))

	s.On(func(v []int) {
		if len(v) > 0 {
			v[0] = 99
		}
	})
	s.Set([]int{2, 3})

	assert.Equal(t, []int{2, 3}, s.Get())
}

func TestSignal_SubscriberPanicPropagates(t *testing.T) {
	s := New(0)
	s.On(func(v int) {
		if v == 1 {
			panic("boom")
		}
	})

	assert.PanicsWithValue(t, "boom", func() { s.Set(1) })
	assert.Equal(t, 1, s.Get())
}

func TestSignal_SetFromSubscriberDoesNotDeadlock(t *testing.T) {
	source := New(0)
	derived := New(0)

	source.On(func(v int) { derived.Set(v * 2) })
	source.Set(21)

	assert.Equal(t, 42, derived.Get())
}
