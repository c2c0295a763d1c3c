package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/idgrid/user-service/internal/i18n"
	"github.com/idgrid/user-service/internal/metrics"
	"github.com/idgrid/user-service/internal/middleware"
	"github.com/idgrid/user-service/internal/service"
)

// RouterConfig holds router configuration options.
type RouterConfig struct {
	RateLimit         int
	RateWindow        time.Duration
	RequestTimeout    time.Duration
	APIKeys           map[string]bool
	EnableAuth        bool
	EnableIdempotency bool
	CORSOrigins       []string
	SwaggerUser       string
	SwaggerPass       string
	EventService      service.EventService
	AuthService       service.AuthService
}

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimit:  100,
		RateWindow: time.Minute,
		EnableAuth: false,
	}
}

// NewRouter assembles the Gin engine: the shared middleware pipeline,
// the operational endpoints and the business routes. Business routes go
// behind JWT validation when an auth service is configured and stay
// public otherwise.
func NewRouter(handler *Handler, healthHandler *HealthHandler, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	mountPipeline(router, &cfg)
	mountOps(router, healthHandler, &cfg)
	mountAPI(router, handler, &cfg)

	return router
}

// mountPipeline installs the middleware every route shares. Order
// matters: the request id must exist before anything logs, and recovery
// must wrap everything that can panic.
func mountPipeline(router *gin.Engine, cfg *RouterConfig) {
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		metrics.PrometheusMiddleware(),
		middleware.Compression(),
		middleware.RequestLogger(cfg.EventService),
		middleware.ErrorHandler(),
	)

	// Handlers that persist audit events pull the service from the
	// request context.
	router.Use(func(c *gin.Context) {
		c.Set("event_service", cfg.EventService)
		c.Next()
	})

	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		router.Use(limiter.RateLimit())
	}
}

// mountOps registers health, metrics and swagger. Swagger goes behind
// basic auth when credentials are configured.
func mountOps(router *gin.Engine, healthHandler *HealthHandler, cfg *RouterConfig) {
	healthHandler.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.SwaggerUser != "" && cfg.SwaggerPass != "" {
		authorized := router.Group("/swagger", gin.BasicAuth(gin.Accounts{
			cfg.SwaggerUser: cfg.SwaggerPass,
		}))
		authorized.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		return
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// mountAPI builds the /api group and hangs the business routes off it.
func mountAPI(router *gin.Engine, handler *Handler, cfg *RouterConfig) {
	api := router.Group("/api")

	if cfg.RequestTimeout > 0 {
		api.Use(middleware.TimeoutWithDuration(cfg.RequestTimeout))
	}
	if cfg.EnableIdempotency {
		api.Use(middleware.Idempotency(middleware.DefaultIdempotencyConfig()))
	}
	// API keys guard the service only when JWT auth is off; with JWT on,
	// tokens are the sole credential.
	if cfg.EnableAuth && cfg.AuthService == nil && len(cfg.APIKeys) > 0 {
		api.Use(middleware.APIKeyAuth(cfg.APIKeys))
	}

	if cfg.AuthService != nil {
		mountAuthenticated(api, handler, cfg)
		return
	}
	mountPublic(api, handler, cfg)
}

// mountAuthenticated wires login and friends publicly, then puts logout
// and every user route on one shared token-validated group so the
// per-user rate limit quota covers them together.
func mountAuthenticated(api *gin.RouterGroup, handler *Handler, cfg *RouterConfig) {
	authRoutes := NewAuthRoutes(cfg.AuthService)
	authRoutes.RegisterPublicRoutes(api)

	protected := authRoutes.GetProtectedGroup(api, cfg)
	protected.POST("/auth/logout", authRoutes.handler.Logout)

	var userRoutes ProtectedRouteGroup = NewUserRoutes(handler.users, cfg.EventService)
	userRoutes.RegisterProtectedRoutes(protected, cfg)
}

// mountPublic serves the user routes without authentication.
func mountPublic(api *gin.RouterGroup, handler *Handler, cfg *RouterConfig) {
	// Auth endpoints stay routable but answer 503 so clients get a clear
	// signal instead of a 404.
	registerAuthUnavailableRoutes(api)

	if handler == nil {
		return
	}
	var userRoutes PublicRouteGroup = NewUserRoutes(handler.users, cfg.EventService)
	userRoutes.RegisterPublicRoutes(api)
}

// registerAuthUnavailableRoutes answers the auth endpoints with 503 when no
// auth service is configured.
func registerAuthUnavailableRoutes(api *gin.RouterGroup) {
	unavailable := func(c *gin.Context) {
		builder := NewResponseBuilder(c)
		builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyAuthNotConfigured, nil)
	}

	auth := api.Group("/auth")
	{
		auth.POST("/login", unavailable)
		auth.POST("/register", unavailable)
		auth.POST("/refresh", unavailable)
		auth.POST("/logout", unavailable)
	}
}
