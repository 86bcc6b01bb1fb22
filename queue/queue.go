package queue

import (
	"sync/atomic"
)

// Queue is a FIFO of items. It is not safe for concurrent writers; the
// atomic pointer only lets readers observe a consistent snapshot.
type Queue[T any] struct {
	items atomic.Pointer[[]T]
}

func (q *Queue[T]) Len() int {
	return len(*q.items.Load())
}

// Pop removes and returns the head of the queue, ok is false when empty.
func (q *Queue[T]) Pop() (item T, ok bool) {
	items := *q.items.Load()
	if len(items) == 0 {
		return item, false
	}
	item = items[0]
	items = items[1:]
	q.items.Store(&items)
	return item, true
}

func (q *Queue[T]) Push(items ...T) {
	current := *q.items.Load()
	next := make([]T, 0, len(current)+len(items))
	next = append(append(next, current...), items...)
	q.items.Store(&next)
}

func New[T any](items ...T) *Queue[T] {
	q := &Queue[T]{}
	initial := append([]T{}, items...)
	q.items.Store(&initial)
	return q
}
