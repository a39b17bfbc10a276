// Package fallback keeps records in process memory while the backend is unreachable.
// Nothing is persisted, a restart starts empty.
package fallback

import (
	"errors"
	"sort"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// ErrNotFound is returned for ids the store does not hold.
var ErrNotFound = errors.New("record not found in fallback store")

// Store is a concurrency safe map of records keyed by a generated id.
type Store[T any] struct {
	items *xsync.MapOf[uint64, T]
	seq   atomic.Uint64
}

// New creates an empty store.
func New[T any]() *Store[T] {
	return &Store[T]{items: xsync.NewMapOf[uint64, T]()}
}

// Create allocates the next id and stores what build returns for it.
func (s *Store[T]) Create(build func(id uint64) T) T {
	id := s.seq.Add(1)
	v := build(id)

	s.items.Store(id, v)

	return v
}

// Get returns the record with id.
func (s *Store[T]) Get(id uint64) (T, error) {
	v, ok := s.items.Load(id)
	if !ok {
		var zero T

		return zero, ErrNotFound
	}

	return v, nil
}

// Update applies mutate to a copy of the record and stores it. An error from mutate keeps the old record.
func (s *Store[T]) Update(id uint64, mutate func(*T) error) (T, error) {
	var (
		found     bool
		mutateErr error
	)

	v, _ := s.items.Compute(id, func(old T, loaded bool) (T, bool) {
		if !loaded {
			return old, true
		}

		found = true
		next := old

		if mutateErr = mutate(&next); mutateErr != nil {
			return old, false
		}

		return next, false
	})

	if !found {
		var zero T

		return zero, ErrNotFound
	}

	return v, mutateErr
}

// Delete removes the record with id.
func (s *Store[T]) Delete(id uint64) error {
	if _, ok := s.items.LoadAndDelete(id); !ok {
		return ErrNotFound
	}

	return nil
}

// List returns the records accepted by keep, ordered by id. A nil keep returns all.
func (s *Store[T]) List(keep func(T) bool) []T {
	type entry struct {
		id uint64
		v  T
	}

	entries := make([]entry, 0, s.items.Size())

	s.items.Range(func(id uint64, v T) bool {
		if keep == nil || keep(v) {
			entries = append(entries, entry{id: id, v: v})
		}

		return true
	})

	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	out := make([]T, len(entries))
	for i := range entries {
		out[i] = entries[i].v
	}

	return out
}
