// Package app provides router configuration.
package app

import (
	"context"
	"time"

	"github.com/idgrid/user-service/config"
	"github.com/idgrid/user-service/internal/http"
	"github.com/idgrid/user-service/internal/repository"
	"github.com/idgrid/user-service/internal/service"
)

// RouterComponents holds router-related components.
type RouterComponents struct {
	Handler       *http.Handler
	HealthHandler *http.HealthHandler
	Config        http.RouterConfig
}

// mongoChecker adapts the MongoDB ping to the readiness probe.
type mongoChecker struct {
	db *repository.MongoDB
}

func (c mongoChecker) Check() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.db.HealthCheck(ctx)
}

// InitializeRouter initializes HTTP handlers and router configuration.
// Database-backed services take precedence over the in-memory stack.
func InitializeRouter(
	services *ServiceComponents,
	dbComponents *DatabaseComponents,
	cfg config.Config,
) *RouterComponents {
	users := services.Users
	events := services.Events
	var auth service.AuthService
	if dbComponents != nil {
		users = dbComponents.Users
		events = dbComponents.Events
		auth = dbComponents.Auth
	}

	handler := http.NewHandler(users)
	healthHandler := http.NewHealthHandler()

	// Register database checks for the readiness probe
	if dbComponents != nil {
		if dbComponents.DB != nil {
			healthHandler.RegisterChecker("mongodb", mongoChecker{db: dbComponents.DB})
		}
		if dbComponents.UsersCircuitBreaker != nil {
			healthHandler.RegisterCircuitBreaker("mongodb_users", dbComponents.UsersCircuitBreaker)
		}
		if dbComponents.EventsCircuitBreaker != nil {
			healthHandler.RegisterCircuitBreaker("mongodb_events", dbComponents.EventsCircuitBreaker)
		}
	}

	routerCfg := http.RouterConfig{
		RateLimit:         cfg.Server.RateLimit,
		RateWindow:        cfg.Server.RateWindow,
		RequestTimeout:    cfg.Store.Timeout,
		EnableAuth:        cfg.Auth.Enabled,
		APIKeys:           cfg.Auth.APIKeys,
		EnableIdempotency: true,
		CORSOrigins:       cfg.Server.CORSOrigins,
		SwaggerUser:       cfg.Server.SwaggerUser,
		SwaggerPass:       cfg.Server.SwaggerPass,
		EventService:      events,
		AuthService:       auth,
	}

	return &RouterComponents{
		Handler:       handler,
		HealthHandler: healthHandler,
		Config:        routerCfg,
	}
}
