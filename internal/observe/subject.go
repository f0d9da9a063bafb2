// Package observe holds a small latest-value publish/subscribe primitive.
//
// A Subject keeps the most recent value, replays it to every new subscriber and
// pushes each published value to all current subscribers in publish order.
// Callbacks run synchronously on the publishing goroutine and must not publish
// to or subscribe on the Subject that is calling them.
package observe

import "sync"

type Subject[T any] struct {
	deliverMu sync.Mutex

	mu     sync.Mutex
	value  T
	clone  func(T) T
	nextID uint64
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// New returns a Subject seeded with initial. clone is applied to every value
// handed to a subscriber so callbacks never share mutable state; nil means the
// value is passed as is.
func New[T any](initial T, clone func(T) T) *Subject[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}

	return &Subject[T]{value: initial, clone: clone}
}

func (s *Subject[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clone(s.value)
}

func (s *Subject[T]) Publish(v T) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	s.value = v
	subs := make([]subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(s.clone(v))
	}
}

// Subscribe registers fn, immediately replays the current value to it and
// returns a function that removes the subscription.
func (s *Subject[T]) Subscribe(fn func(T)) (cancel func()) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})
	current := s.value
	s.mu.Unlock()

	fn(s.clone(current))

	var once sync.Once

	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Subject[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

func (s *Subject[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.subs)
}
