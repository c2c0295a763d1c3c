package http

import (
	"github.com/gin-gonic/gin"

	"github.com/idgrid/user-service/internal/middleware"
	"github.com/idgrid/user-service/internal/service"
)

// AuthRoutes registers the authentication endpoints.
type AuthRoutes struct {
	handler     *AuthHandler
	authService service.AuthService
}

// NewAuthRoutes builds the route registrar and its handler.
func NewAuthRoutes(authService service.AuthService) *AuthRoutes {
	return &AuthRoutes{
		handler:     NewAuthHandler(authService),
		authService: authService,
	}
}

// RegisterPublicRoutes mounts the endpoints a caller reaches without a token.
func (r *AuthRoutes) RegisterPublicRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", r.handler.Login)
		auth.POST("/register", r.handler.Register)
		auth.POST("/refresh", r.handler.RefreshToken)
	}
}

// RegisterProtectedRoutes mounts the endpoints that need a valid token.
func (r *AuthRoutes) RegisterProtectedRoutes(rg *gin.RouterGroup, cfg *RouterConfig) {
	r.protectedGroup(rg, cfg).POST("/auth/logout", r.handler.Logout)
}

// GetProtectedGroup hands other registrars a group with token validation
// and per-user rate limiting already applied.
func (r *AuthRoutes) GetProtectedGroup(rg *gin.RouterGroup, cfg *RouterConfig) *gin.RouterGroup {
	return r.protectedGroup(rg, cfg)
}

func (r *AuthRoutes) protectedGroup(rg *gin.RouterGroup, cfg *RouterConfig) *gin.RouterGroup {
	protected := rg.Group("")
	protected.Use(middleware.JWTAuth(r.authService))

	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		protected.Use(limiter.UserRateLimit())
	}

	return protected
}
