// Package history keeps undo and redo stacks of whole-value snapshots.
package history

// Manager holds deep copies of a value of type T. The clone function must
// return a copy that shares no mutable memory with its argument.
type Manager[T any] struct {
	clone func(T) T
	undo  []T
	redo  []T
}

func New[T any](clone func(T) T) *Manager[T] {
	return &Manager[T]{clone: clone}
}

// Snapshot records cur as the latest undo point. Any redo history is
// discarded since it no longer follows from the current value.
func (m *Manager[T]) Snapshot(cur T) {
	m.undo = append(m.undo, m.clone(cur))
	m.redo = nil
}

// Undo returns the most recent snapshot and saves cur for Redo. It reports
// false and leaves both stacks untouched when there is nothing to undo.
func (m *Manager[T]) Undo(cur T) (T, bool) {
	prev, ok := pop(&m.undo)
	if !ok {
		return cur, false
	}
	m.redo = append(m.redo, m.clone(cur))
	return prev, true
}

// Redo is the inverse of Undo.
func (m *Manager[T]) Redo(cur T) (T, bool) {
	next, ok := pop(&m.redo)
	if !ok {
		return cur, false
	}
	m.undo = append(m.undo, m.clone(cur))
	return next, true
}

func (m *Manager[T]) CanUndo() bool { return len(m.undo) > 0 }
func (m *Manager[T]) CanRedo() bool { return len(m.redo) > 0 }

// Len returns the depth of the undo and redo stacks.
func (m *Manager[T]) Len() (undo, redo int) {
	return len(m.undo), len(m.redo)
}

// Clear drops all history.
func (m *Manager[T]) Clear() {
	m.undo = nil
	m.redo = nil
}

func pop[T any](stack *[]T) (T, bool) {
	var zero T
	s := *stack
	if len(s) == 0 {
		return zero, false
	}
	v := s[len(s)-1]
	s[len(s)-1] = zero
	*stack = s[:len(s)-1]
	return v, true
}
