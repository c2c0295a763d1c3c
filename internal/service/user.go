package service

import (
	"context"
	"errors"
	"time"

	"github.com/idgrid/user-service/internal/domain/model"
	"github.com/idgrid/user-service/internal/idgen"
	"github.com/idgrid/user-service/internal/metrics"
	"github.com/idgrid/user-service/internal/repository"
)

// DefaultMaxUsers bounds the in-memory store used when no repository is
// injected.
const DefaultMaxUsers = 100

var (
	// ErrUserNotFound is returned by operations that require an existing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrCapacityExceeded is returned when the user store is full.
	ErrCapacityExceeded = errors.New("user capacity exceeded")
)

// UserService provides the user directory operations.
//
// Find and FindByName return (nil, nil) when no matching user exists;
// absence is not an error on lookups.
type UserService interface {
	// Create stores a new user with a generated identifier and the given
	// display name.
	Create(ctx context.Context, name string) (*model.User, error)
	// CreateWithEmail stores a new user with an email address attached.
	CreateWithEmail(ctx context.Context, name, email string) (*model.User, error)
	// Find returns the user with the given identifier.
	Find(ctx context.Context, id uint64) (*model.User, error)
	// FindByName returns the first user whose name matches exactly.
	FindByName(ctx context.Context, name string) (*model.User, error)
	// SearchByName returns all users whose canonical name matches the
	// canonical form of name.
	SearchByName(ctx context.Context, name string) ([]*model.User, error)
	// UpdateEmail sets the user's email address and returns the updated user.
	UpdateEmail(ctx context.Context, id uint64, email string) (*model.User, error)
	// List returns users in insertion order with pagination.
	List(ctx context.Context, limit, offset int) ([]*model.User, error)
	// Count returns the number of stored users.
	Count(ctx context.Context) (int64, error)
	// Delete soft deletes the user with the given identifier.
	Delete(ctx context.Context, id uint64) error
	// Save stores the user keyed by its identity, inserting or replacing.
	Save(ctx context.Context, user *model.User) error
}

// Option configures a UserServiceImpl.
type Option func(*UserServiceImpl)

// UserServiceImpl implements UserService over a user repository.
type UserServiceImpl struct {
	repo repository.UserRepositoryInterface
	ids  *idgen.Generator
}

// NewUserService creates a new UserService with the given options. Without
// options it runs over a fresh bounded in-memory store with its own
// identifier sequence.
func NewUserService(opts ...Option) *UserServiceImpl {
	s := &UserServiceImpl{}

	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil {
		s.repo = repository.NewMemoryUserRepository(DefaultMaxUsers)
	}
	if s.ids == nil {
		s.ids = idgen.New()
	}
	return s
}

// WithRepository sets the backing user repository.
func WithRepository(repo repository.UserRepositoryInterface) Option {
	return func(s *UserServiceImpl) {
		s.repo = repo
	}
}

// WithGenerator sets the identifier generator used for new users.
func WithGenerator(ids *idgen.Generator) Option {
	return func(s *UserServiceImpl) {
		s.ids = ids
	}
}

// Create stores a new user with the next generated identifier. The name is
// stored verbatim.
func (s *UserServiceImpl) Create(ctx context.Context, name string) (user *model.User, err error) {
	defer s.observe("create", time.Now(), &err)

	u := model.NewUser(s.ids.NextID(), name)
	metrics.RecordIDIssued()

	if err = s.repo.Create(ctx, &u); err != nil {
		return nil, capacityError(err)
	}

	s.updateStoredGauge(ctx)
	return &u, nil
}

// CreateWithEmail stores a new user with an email address attached. An empty
// email behaves like Create.
func (s *UserServiceImpl) CreateWithEmail(ctx context.Context, name, email string) (user *model.User, err error) {
	if email == "" {
		return s.Create(ctx, name)
	}

	defer s.observe("create", time.Now(), &err)

	u := model.NewUser(s.ids.NextID(), name).WithEmail(email)
	metrics.RecordIDIssued()

	if err = s.repo.Create(ctx, &u); err != nil {
		return nil, capacityError(err)
	}

	s.updateStoredGauge(ctx)
	return &u, nil
}

// Find returns the user with the given identifier, or (nil, nil) when absent.
func (s *UserServiceImpl) Find(ctx context.Context, id uint64) (user *model.User, err error) {
	defer s.observe("find", time.Now(), &err)

	return s.repo.FindByID(ctx, id)
}

// FindByName returns the first user whose name matches exactly, in insertion
// order, or (nil, nil) when none does.
func (s *UserServiceImpl) FindByName(ctx context.Context, name string) (*model.User, error) {
	return s.repo.FindByName(ctx, name)
}

// SearchByName returns all users whose canonical name matches the canonical
// form of name. "  Alice  " finds users named "alice", "Alice" or "ALICE".
func (s *UserServiceImpl) SearchByName(ctx context.Context, name string) ([]*model.User, error) {
	return s.repo.SearchByName(ctx, name)
}

// UpdateEmail applies the email transform to a stored user and persists the
// result. Returns ErrUserNotFound when no user has the given identifier and
// repository.ErrDuplicateEmail when another user holds the address.
func (s *UserServiceImpl) UpdateEmail(ctx context.Context, id uint64, email string) (user *model.User, err error) {
	defer s.observe("update_email", time.Now(), &err)

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrUserNotFound
	}

	updated := existing.WithEmail(email)
	if err = s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// List returns users in insertion order. A limit of zero returns all users
// past the offset.
func (s *UserServiceImpl) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	return s.repo.List(ctx, limit, offset)
}

// Count returns the number of stored users, active or not.
func (s *UserServiceImpl) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Delete soft deletes a user. Returns ErrUserNotFound when no user has the
// given identifier.
func (s *UserServiceImpl) Delete(ctx context.Context, id uint64) (err error) {
	defer s.observe("delete", time.Now(), &err)

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrUserNotFound
	}

	return s.repo.Delete(ctx, id)
}

// Save stores the user keyed by its identity: absent users are inserted,
// existing ones replaced. Together with Find this gives the service the
// generic repository capability over users.
func (s *UserServiceImpl) Save(ctx context.Context, user *model.User) (err error) {
	defer s.observe("save", time.Now(), &err)

	if user == nil {
		return repository.ErrNilEntity
	}

	existing, err := s.repo.FindByID(ctx, user.ID)
	if err != nil {
		return err
	}

	if existing == nil {
		if err = s.repo.Create(ctx, user); err != nil {
			return capacityError(err)
		}
		s.updateStoredGauge(ctx)
		return nil
	}
	return s.repo.Update(ctx, user)
}

// observe records the operation metric once the call completes.
func (s *UserServiceImpl) observe(op string, start time.Time, err *error) {
	status := "success"
	if *err != nil {
		status = "error"
	}
	metrics.RecordUserOperation(op, time.Since(start), status)
}

// updateStoredGauge refreshes the stored user gauge, best effort.
func (s *UserServiceImpl) updateStoredGauge(ctx context.Context) {
	if n, err := s.repo.Count(ctx); err == nil {
		metrics.UpdateUsersStored(int(n))
	}
}

// capacityError maps the repository's capacity sentinel to the service one.
func capacityError(err error) error {
	if errors.Is(err, repository.ErrStoreFull) {
		return ErrCapacityExceeded
	}
	return err
}
