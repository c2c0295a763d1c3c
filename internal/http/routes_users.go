package http

import (
	"github.com/gin-gonic/gin"

	"github.com/idgrid/user-service/internal/middleware"
	"github.com/idgrid/user-service/internal/service"
)

// UserRoutes handles user and audit event route registration.
type UserRoutes struct {
	handler       *Handler
	eventsHandler *EventsHandler
}

// NewUserRoutes creates a new UserRoutes instance.
func NewUserRoutes(users service.UserService, events service.EventService) *UserRoutes {
	routes := &UserRoutes{
		handler: NewHandler(users),
	}
	if events != nil {
		routes.eventsHandler = NewEventsHandler(events)
	}
	return routes
}

// RegisterPublicRoutes registers user routes without authentication
// (when auth is disabled).
func (r *UserRoutes) RegisterPublicRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.POST("", r.handler.CreateUser)
		users.GET("", r.handler.ListUsers)
		users.GET("/:id", r.handler.GetUser)
		users.PUT("/:id/email", r.handler.UpdateEmail)
		users.DELETE("/:id", r.handler.DeleteUser)
	}

	if r.eventsHandler != nil {
		r.registerEventRoutes(rg)
	}
}

// RegisterProtectedRoutes registers user routes behind JWT authentication
// (when auth is enabled). Deleting users requires the admin role.
func (r *UserRoutes) RegisterProtectedRoutes(protected *gin.RouterGroup, cfg *RouterConfig) {
	users := protected.Group("/users")
	{
		users.POST("", r.handler.CreateUser)
		users.GET("", r.handler.ListUsers)
		users.GET("/:id", r.handler.GetUser)
		users.PUT("/:id/email", r.handler.UpdateEmail)
		users.DELETE("/:id", middleware.RequireAdmin(), r.handler.DeleteUser)
	}

	if r.eventsHandler != nil {
		admin := protected.Group("")
		admin.Use(middleware.RequireAdmin())
		r.registerEventRoutes(admin)
	}
}

// registerEventRoutes registers the audit event query endpoints.
func (r *UserRoutes) registerEventRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	{
		admin.GET("/events", r.eventsHandler.QueryEvents)
		admin.GET("/events/count", r.eventsHandler.CountEvents)
	}
}

// GetHandler returns the underlying user handler.
func (r *UserRoutes) GetHandler() *Handler {
	return r.handler
}
