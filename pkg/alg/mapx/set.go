package mapx

// OrderedSet keeps the first occurrence of each element in insertion order.
// The zero value is ready to use.
type OrderedSet[T comparable] struct {
	seen  map[T]struct{}
	items []T
}

// Add inserts v and reports whether it was not already present.
func (s *OrderedSet[T]) Add(v T) bool {
	if s.seen == nil {
		s.seen = make(map[T]struct{})
	}

	if _, ok := s.seen[v]; ok {
		return false
	}

	s.seen[v] = struct{}{}
	s.items = append(s.items, v)

	return true
}

// Contains reports whether v was added.
func (s *OrderedSet[T]) Contains(v T) bool {
	_, ok := s.seen[v]

	return ok
}

// Len returns the number of distinct elements.
func (s *OrderedSet[T]) Len() int {
	return len(s.items)
}

// Values returns the elements in insertion order. The slice is owned by the set.
func (s *OrderedSet[T]) Values() []T {
	return s.items
}

// Unique returns the first occurrence of each element of items, in order.
// Returns nil for a nil slice.
func Unique[T comparable](items []T) []T {
	if items == nil {
		return nil
	}

	var set OrderedSet[T]

	for _, v := range items {
		set.Add(v)
	}

	if set.items == nil {
		return []T{}
	}

	return set.items
}
