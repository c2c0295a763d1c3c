// Package app provides service initialization.
package app

import (
	"github.com/idgrid/user-service/config"
	"github.com/idgrid/user-service/internal/idgen"
	"github.com/idgrid/user-service/internal/repository"
	"github.com/idgrid/user-service/internal/service"
)

// ServiceComponents holds the in-memory service stack used when no database
// is configured.
type ServiceComponents struct {
	Users  service.UserService
	Events service.EventService
	// UserIDs is the identifier sequence behind Users. Anything else that
	// creates users must draw from it.
	UserIDs *idgen.Generator
}

// InitializeServices builds the user and event services over in-memory
// stores. The user store is capped at cfg.MaxUsers; the event store grows
// unbounded and empties on restart, same as the rest of the in-memory state.
func InitializeServices(cfg config.StoreConfig) *ServiceComponents {
	userIDs := idgen.New()

	users := service.NewUserService(
		service.WithRepository(repository.NewMemoryUserRepository(cfg.MaxUsers)),
		service.WithGenerator(userIDs),
	)
	events := service.NewEventService(repository.NewMemoryEventRepository(), idgen.New())

	return &ServiceComponents{
		Users:   users,
		Events:  events,
		UserIDs: userIDs,
	}
}
