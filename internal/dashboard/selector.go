package dashboard

import (
	"errors"
	"sync"
)

// ErrUnknownOption is returned when selecting an item that is not offered.
var ErrUnknownOption = errors.New("option is not offered by this selector")

// Selector is a fixed list of options with one current selection.
// equal decides whether two items are the same option.
type Selector[T any] struct {
	mu       sync.RWMutex
	options  []T
	selected int
	equal    func(a, b T) bool
}

// NewSelector creates a selector over options with the first one selected.
func NewSelector[T any](options []T, equal func(a, b T) bool) *Selector[T] {
	return &Selector[T]{
		options: append([]T(nil), options...),
		equal:   equal,
	}
}

// Options returns a copy of the offered items.
func (s *Selector[T]) Options() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.options...)
}

// Selected returns the current item. ok is false when there are no options.
func (s *Selector[T]) Selected() (item T, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.options) == 0 {
		return item, false
	}
	return s.options[s.selected], true
}

// Select makes item the current selection.
func (s *Selector[T]) Select(item T) error {
	return s.SelectFunc(func(o T) bool { return s.equal(o, item) })
}

// SelectFunc selects the first option matching pred.
func (s *Selector[T]) SelectFunc(pred func(T) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(pred)
	if i < 0 {
		return ErrUnknownOption
	}
	s.selected = i
	return nil
}

// Find returns the first option matching pred without selecting it.
func (s *Selector[T]) Find(pred func(T) bool) (item T, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(pred)
	if i < 0 {
		return item, ErrUnknownOption
	}
	return s.options[i], nil
}

func (s *Selector[T]) indexLocked(pred func(T) bool) int {
	for i, o := range s.options {
		if pred(o) {
			return i
		}
	}
	return -1
}

// IsSelected reports whether item is the current selection.
func (s *Selector[T]) IsSelected(item T) bool {
	cur, ok := s.Selected()
	return ok && s.equal(cur, item)
}
