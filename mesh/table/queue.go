package table

// Queue is a FIFO of value-copied entries.
type Queue[T any] struct {
	items []T
	name  string
}

// NewQueue creates an empty queue. The name is used as its log tag.
func NewQueue[T any](name string) *Queue[T] {
	return &Queue[T]{name: name}
}

func (q *Queue[T]) String() string {
	return q.name
}

func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Push appends v at the back.
func (q *Queue[T]) Push(v T) {
	q.items = append(q.items, v)
}

// Front returns the head without removing it.
func (q *Queue[T]) Front() (v T, ok bool) {
	if len(q.items) == 0 {
		return v, false
	}
	return q.items[0], true
}

// Clear removes every entry and returns how many were dropped.
func (q *Queue[T]) Clear() int {
	n := len(q.items)
	q.items = nil
	return n
}

// Pop removes and returns the head.
func (q *Queue[T]) Pop() (v T, ok bool) {
	if len(q.items) == 0 {
		return v, false
	}
	v = q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return v, true
}
