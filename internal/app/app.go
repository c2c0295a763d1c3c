// Package app provides application initialization and dependency injection.
package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/idgrid/user-service/config"
	"github.com/idgrid/user-service/internal/http"
	"github.com/idgrid/user-service/internal/middleware"
)

// Application bundles the configured router with the resources behind it so
// the entry point can release them in order once the server stops.
type Application struct {
	Router *gin.Engine

	db *DatabaseComponents
}

// InitializeApp creates and wires all application dependencies.
// This is the main orchestration function that initializes all components.
func InitializeApp(cfg config.Config) *Application {
	// Initialize logger first (needed by other components)
	InitializeLogger()

	// In-memory service stack, used when no database is configured
	serviceComponents := InitializeServices(cfg.Store)

	// Database components (MongoDB repositories and services)
	dbComponents := InitializeDatabase(cfg.Database, cfg.Auth)
	if cfg.Auth.Enabled && dbComponents == nil {
		log.Warn().Msg("JWT authentication requires MongoDB; auth endpoints answer 503")
	}

	// Router components (handlers and configuration)
	routerComponents := InitializeRouter(serviceComponents, dbComponents, cfg)

	// Audit events flow through the buffered worker pool rather than a
	// goroutine per request
	middleware.InitAsyncLogger(routerComponents.Config.EventService, middleware.DefaultAsyncLoggerConfig())

	router := http.NewRouter(routerComponents.Handler, routerComponents.HealthHandler, routerComponents.Config)

	return &Application{
		Router: router,
		db:     dbComponents,
	}
}

// Shutdown releases application resources once the server has stopped
// accepting traffic.
func (a *Application) Shutdown(ctx context.Context) {
	middleware.StopAsyncLogger()

	if err := a.db.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to close database connection")
	}
}
