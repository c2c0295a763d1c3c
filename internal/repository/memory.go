// Package repository provides in-memory storage backends.
package repository

import (
	"context"
	"sync"

	"github.com/idgrid/user-service/internal/domain/model"
)

// MemoryRepository is a thread-safe, insertion-ordered in-memory
// implementation of Repository. It is the default backend when MongoDB
// is not configured.
type MemoryRepository[T model.Identifiable] struct {
	mu       sync.RWMutex
	items    map[uint64]T
	order    []uint64
	capacity int
}

// NewMemoryRepository creates an unbounded in-memory repository.
func NewMemoryRepository[T model.Identifiable]() *MemoryRepository[T] {
	return NewBoundedMemoryRepository[T](0)
}

// NewBoundedMemoryRepository creates an in-memory repository that holds at
// most capacity entities. Saves of new entities beyond the capacity fail
// with ErrStoreFull. A capacity of zero means unbounded.
func NewBoundedMemoryRepository[T model.Identifiable](capacity int) *MemoryRepository[T] {
	return &MemoryRepository[T]{
		items:    make(map[uint64]T),
		capacity: capacity,
	}
}

// Save stores a copy of the entity keyed by its identity. Saving an
// identity that already exists replaces the stored copy in place.
func (r *MemoryRepository[T]) Save(ctx context.Context, entity *T) error {
	if entity == nil {
		return ErrNilEntity
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	id := (*entity).Identity()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		if r.capacity > 0 && len(r.items) >= r.capacity {
			return ErrStoreFull
		}
		r.order = append(r.order, id)
	}
	r.items[id] = *entity
	return nil
}

// Find returns a copy of the entity with the given id, or (nil, nil) when
// it does not exist.
func (r *MemoryRepository[T]) Find(ctx context.Context, id uint64) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

// Delete removes the entity with the given id. Deleting an absent id is
// not an error.
func (r *MemoryRepository[T]) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return nil
	}
	delete(r.items, id)
	for i, stored := range r.order {
		if stored == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns copies of stored entities in insertion order. A limit of
// zero returns everything after the offset; a negative offset counts as
// zero.
func (r *MemoryRepository[T]) List(ctx context.Context, limit, offset int) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if offset >= len(r.order) {
		return []T{}, nil
	}

	end := len(r.order)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]T, 0, end-offset)
	for _, id := range r.order[offset:end] {
		out = append(out, r.items[id])
	}
	return out, nil
}

// Len returns the number of stored entities.
func (r *MemoryRepository[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
