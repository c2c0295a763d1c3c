package repository

import (
	"context"
	"sort"
	"time"
)

// MemoryEventRepository implements EventRepositoryInterface on top of the
// generic MemoryRepository.
type MemoryEventRepository struct {
	store *MemoryRepository[EventDocument]
}

// NewMemoryEventRepository creates an in-memory event repository.
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{
		store: NewMemoryRepository[EventDocument](),
	}
}

// Create stores a single event document.
func (r *MemoryEventRepository) Create(ctx context.Context, event *EventDocument) error {
	if event == nil {
		return ErrNilEntity
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return r.store.Save(ctx, event)
}

// CreateMany stores multiple event documents.
func (r *MemoryEventRepository) CreateMany(ctx context.Context, events []*EventDocument) error {
	for _, event := range events {
		if err := r.Create(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Query returns event documents matching the filters, newest first.
func (r *MemoryEventRepository) Query(ctx context.Context, opts EventQueryOptions) ([]*EventDocument, error) {
	all, err := r.store.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	matches := make([]*EventDocument, 0)
	for i := range all {
		if eventMatches(&all[i], opts) {
			matches = append(matches, &all[i])
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Timestamp.After(matches[j].Timestamp)
	})

	if opts.Skip > 0 {
		if opts.Skip >= len(matches) {
			return []*EventDocument{}, nil
		}
		matches = matches[opts.Skip:]
	}
	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches, nil
}

// Count returns the count of event documents matching the filters.
func (r *MemoryEventRepository) Count(ctx context.Context, opts EventQueryOptions) (int64, error) {
	all, err := r.store.List(ctx, 0, 0)
	if err != nil {
		return 0, err
	}

	var count int64
	for i := range all {
		if eventMatches(&all[i], opts) {
			count++
		}
	}
	return count, nil
}

// eventMatches reports whether the document satisfies the filter options,
// ignoring Limit and Skip.
func eventMatches(doc *EventDocument, opts EventQueryOptions) bool {
	if opts.Action != "" && doc.Action != opts.Action {
		return false
	}
	if opts.UserID != 0 && doc.UserID != opts.UserID {
		return false
	}
	if opts.RequestID != "" && doc.RequestID != opts.RequestID {
		return false
	}
	if opts.Level != "" && doc.Level != opts.Level {
		return false
	}
	if opts.StartTime != nil && doc.Timestamp.Before(*opts.StartTime) {
		return false
	}
	if opts.EndTime != nil && doc.Timestamp.After(*opts.EndTime) {
		return false
	}
	return true
}
