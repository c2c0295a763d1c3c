// Package repository provides circuit breaker wrappers for MongoDB operations.
package repository

import (
	"context"

	"github.com/idgrid/user-service/internal/circuitbreaker"
	"github.com/idgrid/user-service/internal/domain/model"
)

// UserRepositoryWithCircuitBreaker wraps a user repository with circuit
// breaker protection. User operations are critical, so an open circuit is
// surfaced to the caller instead of being swallowed.
type UserRepositoryWithCircuitBreaker struct {
	repo           UserRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewUserRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewUserRepositoryWithCircuitBreaker(repo UserRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *UserRepositoryWithCircuitBreaker {
	return &UserRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

// Create inserts a user with circuit breaker protection.
func (r *UserRepositoryWithCircuitBreaker) Create(ctx context.Context, user *model.User) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Create(ctx, user)
	})
}

// FindByID finds a user by ID with circuit breaker protection.
func (r *UserRepositoryWithCircuitBreaker) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var result *model.User
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.FindByID(ctx, id)
		return cbErr
	})
	return result, err
}

// FindByEmail finds a user by email with circuit breaker protection.
func (r *UserRepositoryWithCircuitBreaker) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var result *model.User
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.FindByEmail(ctx, email)
		return cbErr
	})
	return result, err
}

// FindByEmailForAuth finds a user by email for authentication with circuit breaker protection.
func (r *UserRepositoryWithCircuitBreaker) FindByEmailForAuth(ctx context.Context, email string) (*model.User, error) {
	var result *model.User
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.FindByEmailForAuth(ctx, email)
		return cbErr
	})
	return result, err
}

// FindByName finds a user by exact name with circuit breaker protection.
func (r *UserRepositoryWithCircuitBreaker) FindByName(ctx context.Context, name string) (*model.User, error) {
	var result *model.User
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.FindByName(ctx, name)
		return cbErr
	})
	return result, err
}

// SearchByName finds users by canonical name with circuit breaker protection.
func (r *UserRepositoryWithCircuitBreaker) SearchByName(ctx context.Context, name string) ([]*model.User, error) {
	var result []*model.User
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.SearchByName(ctx, name)
		return cbErr
	})
	return result, err
}

// Update updates a user with circuit breaker protection.
func (r *UserRepositoryWithCircuitBreaker) Update(ctx context.Context, user *model.User) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Update(ctx, user)
	})
}

// Delete soft deletes a user with circuit breaker protection.
func (r *UserRepositoryWithCircuitBreaker) Delete(ctx context.Context, id uint64) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Delete(ctx, id)
	})
}

// List retrieves users with circuit breaker protection.
func (r *UserRepositoryWithCircuitBreaker) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	var result []*model.User
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.List(ctx, limit, offset)
		return cbErr
	})
	return result, err
}

// Count returns the user count with circuit breaker protection.
func (r *UserRepositoryWithCircuitBreaker) Count(ctx context.Context) (int64, error) {
	var result int64
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.Count(ctx)
		return cbErr
	})
	return result, err
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *UserRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}

// EventRepositoryWithCircuitBreaker wraps an event repository with circuit
// breaker protection. Audit writes are non-critical and fail silently when
// the circuit is open.
type EventRepositoryWithCircuitBreaker struct {
	repo           EventRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewEventRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewEventRepositoryWithCircuitBreaker(repo EventRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *EventRepositoryWithCircuitBreaker {
	return &EventRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

// Create stores a single event with circuit breaker protection.
// If circuit is open, silently fails (audit logging is non-critical).
func (r *EventRepositoryWithCircuitBreaker) Create(ctx context.Context, event *EventDocument) error {
	err := r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Create(ctx, event)
	})
	if err == circuitbreaker.ErrCircuitOpen {
		return nil
	}
	return err
}

// CreateMany stores multiple events with circuit breaker protection.
// If circuit is open, silently fails (audit logging is non-critical).
func (r *EventRepositoryWithCircuitBreaker) CreateMany(ctx context.Context, events []*EventDocument) error {
	err := r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.CreateMany(ctx, events)
	})
	if err == circuitbreaker.ErrCircuitOpen {
		return nil
	}
	return err
}

// Query retrieves events with circuit breaker protection.
func (r *EventRepositoryWithCircuitBreaker) Query(ctx context.Context, opts EventQueryOptions) ([]*EventDocument, error) {
	var result []*EventDocument
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.Query(ctx, opts)
		return cbErr
	})
	return result, err
}

// Count returns the count of events with circuit breaker protection.
func (r *EventRepositoryWithCircuitBreaker) Count(ctx context.Context, opts EventQueryOptions) (int64, error) {
	var result int64
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.Count(ctx, opts)
		return cbErr
	})
	return result, err
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *EventRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}
