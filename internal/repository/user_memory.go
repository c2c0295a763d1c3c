package repository

import (
	"context"
	"sync"
	"time"

	"github.com/idgrid/user-service/internal/domain/model"
)

// MemoryUserRepository implements UserRepositoryInterface on top of the
// generic MemoryRepository. Email and name lookups scan the store, which
// is acceptable at the bounded capacities this backend is used with.
type MemoryUserRepository struct {
	// writeMu serializes check-then-act write sequences such as the
	// duplicate email check in Create.
	writeMu sync.Mutex
	store   *MemoryRepository[model.User]
}

// NewMemoryUserRepository creates an in-memory user repository holding at
// most maxUsers users. A maxUsers of zero means unbounded.
func NewMemoryUserRepository(maxUsers int) *MemoryUserRepository {
	return &MemoryUserRepository{
		store: NewBoundedMemoryRepository[model.User](maxUsers),
	}
}

// Create inserts a new user. It fails with ErrDuplicateID when the id is
// taken and ErrDuplicateEmail when the email is already registered.
func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	if user == nil {
		return ErrNilEntity
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	existing, err := r.store.Find(ctx, user.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateID
	}

	if user.Email != nil {
		taken, err := r.emailTaken(ctx, *user.Email, user.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}
	}

	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	user.NameCanonical = model.FormatName(user.Name)
	return r.store.Save(ctx, user)
}

// FindByID finds a user by ID.
func (r *MemoryUserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.store.Find(ctx, id)
}

// FindByEmail finds a user by email address.
func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	users, err := r.store.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email != nil && *users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, nil
}

// FindByEmailForAuth finds a user by email. The in-memory store has no
// projection concept, so this is equivalent to FindByEmail.
func (r *MemoryUserRepository) FindByEmailForAuth(ctx context.Context, email string) (*model.User, error) {
	return r.FindByEmail(ctx, email)
}

// FindByName finds the first user whose name matches exactly, in
// insertion order.
func (r *MemoryUserRepository) FindByName(ctx context.Context, name string) (*model.User, error) {
	users, err := r.store.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Name == name {
			return &users[i], nil
		}
	}
	return nil, nil
}

// SearchByName finds all users whose canonical name matches the canonical
// form of the given name, in insertion order.
func (r *MemoryUserRepository) SearchByName(ctx context.Context, name string) ([]*model.User, error) {
	canonical := model.FormatName(name)

	users, err := r.store.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	matches := make([]*model.User, 0)
	for i := range users {
		if users[i].NameCanonical == canonical {
			matches = append(matches, &users[i])
		}
	}
	return matches, nil
}

// Update replaces the stored user. Updating an absent user is not an error,
// mirroring the MongoDB implementation.
func (r *MemoryUserRepository) Update(ctx context.Context, user *model.User) error {
	if user == nil {
		return ErrNilEntity
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	existing, err := r.store.Find(ctx, user.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	if user.Email != nil {
		taken, err := r.emailTaken(ctx, *user.Email, user.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}
	}

	user.UpdatedAt = time.Now()
	user.NameCanonical = model.FormatName(user.Name)
	return r.store.Save(ctx, user)
}

// Delete soft deletes a user by setting active to false. Deleting an
// absent user is not an error.
func (r *MemoryUserRepository) Delete(ctx context.Context, id uint64) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	user, err := r.store.Find(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	user.Active = false
	user.UpdatedAt = time.Now()
	return r.store.Save(ctx, user)
}

// List retrieves users with pagination, in insertion order.
func (r *MemoryUserRepository) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	users, err := r.store.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*model.User, len(users))
	for i := range users {
		out[i] = &users[i]
	}
	return out, nil
}

// Count returns the number of stored users.
func (r *MemoryUserRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(r.store.Len()), nil
}

// emailTaken reports whether another user already holds the given email.
func (r *MemoryUserRepository) emailTaken(ctx context.Context, email string, selfID uint64) (bool, error) {
	users, err := r.store.List(ctx, 0, 0)
	if err != nil {
		return false, err
	}
	for i := range users {
		if users[i].ID == selfID {
			continue
		}
		if users[i].Email != nil && *users[i].Email == email {
			return true, nil
		}
	}
	return false, nil
}
