// Package repository provides interfaces for repository operations.
package repository

import (
	"context"
)

// EventRepositoryInterface defines the interface for audit event repository operations.
type EventRepositoryInterface interface {
	Create(ctx context.Context, event *EventDocument) error
	CreateMany(ctx context.Context, events []*EventDocument) error
	Query(ctx context.Context, opts EventQueryOptions) ([]*EventDocument, error)
	Count(ctx context.Context, opts EventQueryOptions) (int64, error)
}
