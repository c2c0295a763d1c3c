package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idgrid/user-service/internal/domain/dto"
	"github.com/idgrid/user-service/internal/domain/model"
	"github.com/idgrid/user-service/internal/i18n"
)

// AuthorizationConfig restricts a route to particular roles. An empty
// RequiredRoles list admits any authenticated user.
type AuthorizationConfig struct {
	RequiredRoles []model.Role
}

// RequireAuthorization checks the authenticated caller's role against the
// route requirements. It must run after JWTAuth.
func RequireAuthorization(cfg AuthorizationConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFrom(c)
		if !ok {
			abortTranslated(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, i18n.ErrKeyUnauthorized)
			return
		}

		if len(cfg.RequiredRoles) > 0 && !roleAllowed(claims.Role, cfg.RequiredRoles) {
			abortTranslated(c, http.StatusForbidden, dto.ErrCodeForbidden, i18n.ErrKeyForbidden)
			return
		}

		c.Next()
	}
}

// claimsFrom returns the claims JWTAuth stored on the context.
func claimsFrom(c *gin.Context) (*dto.Claims, bool) {
	v, exists := c.Get("user_claims")
	if !exists {
		return nil, false
	}
	claims, ok := v.(*dto.Claims)
	return claims, ok
}

func roleAllowed(role string, allowed []model.Role) bool {
	for _, r := range allowed {
		if role == string(r) {
			return true
		}
	}
	return false
}

// RequireAdmin admits only callers with the admin role.
func RequireAdmin() gin.HandlerFunc {
	return RequireAuthorization(AuthorizationConfig{
		RequiredRoles: []model.Role{model.RoleAdmin},
	})
}
