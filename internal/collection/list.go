package collection

import (
	"errors"
	"slices"
	"sync"
)

// ErrFrozen is returned when a frozen List is modified.
var ErrFrozen = errors.New("list is frozen")

// Mutable is the element-type agnostic view of a collection.
type Mutable interface {
	ReadOnly() (bool, error)
	Clear() error
	Add(item any) error
}

// Collection is implemented by part-owned collections that receive the
// values of a many-valued import in place.
type Collection[T any] interface {
	Add(item T) error
	Clear() error
	ReadOnly() bool
}

// List is a thread-safe Collection backed by a slice.
type List[T any] struct {
	mu     sync.RWMutex
	items  []T
	frozen bool
}

// NewList creates a list holding items.
func NewList[T any](items ...T) *List[T] {
	return &List[T]{items: slices.Clone(items)}
}

// Add appends an item.
func (l *List[T]) Add(item T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.frozen {
		return ErrFrozen
	}
	l.items = append(l.items, item)
	return nil
}

// Clear removes all items.
func (l *List[T]) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.frozen {
		return ErrFrozen
	}
	l.items = nil
	return nil
}

// ReadOnly reports whether the list has been frozen.
func (l *List[T]) ReadOnly() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.frozen
}

// Freeze makes the list read-only.
func (l *List[T]) Freeze() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frozen = true
}

// Items returns a copy of the items.
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}
