//go:build !integration

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/idgrid/user-service/internal/domain/dto"
	"github.com/idgrid/user-service/internal/domain/model"
)

func TestRequireAuthorization(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		setupContext   func(*gin.Context)
		config         AuthorizationConfig
		expectedStatus int
	}{
		{
			name: "no user claims returns unauthorized",
			setupContext: func(c *gin.Context) {
			},
			config:         AuthorizationConfig{},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "invalid claims type returns unauthorized",
			setupContext: func(c *gin.Context) {
				c.Set("user_claims", "invalid")
			},
			config:         AuthorizationConfig{},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "no requirements allows access",
			setupContext: func(c *gin.Context) {
				c.Set("user_claims", &dto.Claims{
					UserID: 1,
					Role:   string(model.RoleGuest),
				})
			},
			config:         AuthorizationConfig{},
			expectedStatus: http.StatusOK,
		},
		{
			name: "user has required role",
			setupContext: func(c *gin.Context) {
				c.Set("user_claims", &dto.Claims{
					UserID: 1,
					Role:   string(model.RoleAdmin),
				})
			},
			config: AuthorizationConfig{
				RequiredRoles: []model.Role{model.RoleAdmin},
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "user missing required role",
			setupContext: func(c *gin.Context) {
				c.Set("user_claims", &dto.Claims{
					UserID: 1,
					Role:   string(model.RoleMember),
				})
			},
			config: AuthorizationConfig{
				RequiredRoles: []model.Role{model.RoleAdmin},
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "guest missing required role",
			setupContext: func(c *gin.Context) {
				c.Set("user_claims", &dto.Claims{
					UserID: 1,
					Role:   string(model.RoleGuest),
				})
			},
			config: AuthorizationConfig{
				RequiredRoles: []model.Role{model.RoleAdmin, model.RoleMember},
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "role matches any of the required roles",
			setupContext: func(c *gin.Context) {
				c.Set("user_claims", &dto.Claims{
					UserID: 1,
					Role:   string(model.RoleMember),
				})
			},
			config: AuthorizationConfig{
				RequiredRoles: []model.Role{model.RoleAdmin, model.RoleMember},
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "empty role never matches",
			setupContext: func(c *gin.Context) {
				c.Set("user_claims", &dto.Claims{
					UserID: 1,
				})
			},
			config: AuthorizationConfig{
				RequiredRoles: []model.Role{model.RoleAdmin},
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequestID())
			router.Use(func(c *gin.Context) {
				tt.setupContext(c)
				c.Next()
			})
			router.Use(RequireAuthorization(tt.config))
			router.GET("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"status": "ok"})
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		role           model.Role
		expectedStatus int
	}{
		{
			name:           "admin allowed",
			role:           model.RoleAdmin,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "member forbidden",
			role:           model.RoleMember,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "guest forbidden",
			role:           model.RoleGuest,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequestID())
			router.Use(func(c *gin.Context) {
				c.Set("user_claims", &dto.Claims{
					UserID: 1,
					Role:   string(tt.role),
				})
				c.Next()
			})
			router.Use(RequireAdmin())
			router.GET("/admin", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"status": "ok"})
			})

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
