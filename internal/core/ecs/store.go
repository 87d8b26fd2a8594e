package ecs

import (
	"slices"
)

// Removable is what World needs from a store to drop a destroyed entity.
type Removable interface {
	Remove(id EntityID)
}

// Store is a typed component store. Iteration visits entities in ascending
// id order so every tick runs the same way for the same inputs.
type Store[T any] struct {
	data map[EntityID]*T
	ids  []EntityID // sorted
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[EntityID]*T, 16),
	}
}

func (s *Store[T]) Set(id EntityID, c *T) {
	if _, ok := s.data[id]; !ok {
		i, _ := slices.BinarySearch(s.ids, id)
		s.ids = slices.Insert(s.ids, i, id)
	}
	s.data[id] = c
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Remove(id EntityID) {
	if _, ok := s.data[id]; !ok {
		return
	}
	delete(s.data, id)
	if i, found := slices.BinarySearch(s.ids, id); found {
		s.ids = slices.Delete(s.ids, i, i+1)
	}
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

// IDs returns a copy of the stored entity ids in ascending order.
func (s *Store[T]) IDs() []EntityID {
	return slices.Clone(s.ids)
}

// Each visits components in ascending id order. fn must not add or remove
// entries of this store.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for _, id := range s.ids {
		fn(id, s.data[id])
	}
}

// Each2 iterates over entities that have both component A and B, in
// ascending id order.
func Each2[A, B any](sa *Store[A], sb *Store[B], fn func(EntityID, *A, *B)) {
	for _, id := range sa.ids {
		if b, ok := sb.data[id]; ok {
			fn(id, sa.data[id], b)
		}
	}
}
