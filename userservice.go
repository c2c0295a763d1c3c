// Package userservice exposes the user directory as an embeddable library.
//
// The full service runs behind the HTTP server in cmd; this package is the
// convenience surface for callers that want the core operations without the
// transport:
//
//	user, err := userservice.CreateUser("Alice")
//
// All identifiers minted through this package come from one process-wide
// sequence, so users created here never share an identifier. Callers that
// need isolated, reproducible sequences construct their own services with
// New and WithGenerator.
package userservice

import (
	"context"

	"github.com/idgrid/user-service/config"
	"github.com/idgrid/user-service/internal/domain/model"
	"github.com/idgrid/user-service/internal/idgen"
	"github.com/idgrid/user-service/internal/service"
)

// Aliases for the domain types, so embedding callers can name them without
// reaching into internal packages.
type (
	// User is the directory entity.
	User = model.User
	// Role classifies the access level of a user.
	Role = model.Role
	// Config is the application configuration record.
	Config = config.Config
	// Generator mints unique sequential identifiers.
	Generator = idgen.Generator
	// Service is the in-memory user service behind the package-level helpers.
	Service = service.UserServiceImpl
	// Option configures a Service from New.
	Option = service.Option
)

// The closed set of roles known to the service.
const (
	RoleAdmin  = model.RoleAdmin
	RoleMember = model.RoleMember
	RoleGuest  = model.RoleGuest
)

// ids is the process-wide identifier sequence behind GenerateID, NewUser
// and CreateUser.
var ids = idgen.New()

// New returns a user service over a fresh bounded in-memory store. Without
// options it uses its own identifier sequence and a store capped at the
// default capacity, which makes it equivalent to the zero configuration.
func New(opts ...Option) *Service {
	return service.NewUserService(opts...)
}

// NewGenerator returns an independent identifier sequence whose first
// NextID call returns 1.
func NewGenerator() *Generator {
	return idgen.New()
}

// WithGenerator sets the identifier sequence used by a service from New.
func WithGenerator(g *Generator) Option {
	return service.WithGenerator(g)
}

// GenerateID returns the next identifier from the process-wide sequence.
func GenerateID() uint64 {
	return ids.NextID()
}

// NewUser constructs a user with a fresh identifier from the process-wide
// sequence and the given display name. The name is stored verbatim.
func NewUser(name string) User {
	return model.NewUser(ids.NextID(), name)
}

// CreateUser stores a new user in a fresh in-memory service and returns it.
// Each call runs against its own store but draws from the process-wide
// identifier sequence, so two calls never return the same identifier.
func CreateUser(name string) (User, error) {
	svc := service.NewUserService(service.WithGenerator(ids))

	user, err := svc.Create(context.Background(), name)
	if err != nil {
		return User{}, err
	}
	return *user, nil
}

// FormatName returns the canonical form of a display name, trimmed of
// surrounding whitespace and lowercased.
func FormatName(name string) string {
	return model.FormatName(name)
}

// DefaultConfig returns the built-in application configuration: a store of
// at most 100 users and a 5 second operation timeout.
func DefaultConfig() Config {
	return config.Default()
}
