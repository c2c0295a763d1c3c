// Package repository provides the data access layer for users, tokens,
// and audit events, with in-memory and MongoDB implementations.
package repository

import (
	"context"
	"errors"

	"github.com/idgrid/user-service/internal/domain/model"
)

// Sentinel errors shared by all repository implementations.
var (
	// ErrNilEntity is returned when a nil entity is passed to Save or Create.
	ErrNilEntity = errors.New("entity is nil")
	// ErrStoreFull is returned when a bounded store is at capacity.
	ErrStoreFull = errors.New("store is at capacity")
	// ErrDuplicateID is returned when creating an entity whose identifier
	// is already in use.
	ErrDuplicateID = errors.New("identifier is already in use")
	// ErrDuplicateEmail is returned when an email address is already registered.
	ErrDuplicateEmail = errors.New("email is already registered")
)

// Repository is the minimal storage contract for identifiable entities.
//
// Save stores the entity keyed by its Identity; saving an identity that
// already exists replaces the stored value. Find returns (nil, nil) when
// no entity with the given id exists.
type Repository[T model.Identifiable] interface {
	Save(ctx context.Context, entity *T) error
	Find(ctx context.Context, id uint64) (*T, error)
}
