package http

import (
	"github.com/gin-gonic/gin"
)

// PublicRouteGroup is implemented by route registrars whose endpoints are
// reachable without authentication.
type PublicRouteGroup interface {
	RegisterPublicRoutes(rg *gin.RouterGroup)
}

// ProtectedRouteGroup is implemented by route registrars whose endpoints sit
// behind JWT authentication.
type ProtectedRouteGroup interface {
	RegisterProtectedRoutes(rg *gin.RouterGroup, cfg *RouterConfig)
}

var (
	_ PublicRouteGroup    = (*AuthRoutes)(nil)
	_ ProtectedRouteGroup = (*AuthRoutes)(nil)
	_ PublicRouteGroup    = (*UserRoutes)(nil)
	_ ProtectedRouteGroup = (*UserRoutes)(nil)
)
