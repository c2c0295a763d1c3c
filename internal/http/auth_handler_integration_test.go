//go:build integration

package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/idgrid/user-service/config"
	"github.com/idgrid/user-service/internal/circuitbreaker"
	"github.com/idgrid/user-service/internal/domain/dto"
	"github.com/idgrid/user-service/internal/idgen"
	"github.com/idgrid/user-service/internal/repository"
	"github.com/idgrid/user-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dbConnections stores MongoDB connections to prevent garbage collection
var dbConnections = make(map[string]*repository.MongoDB)
var dbConnectionsMutex sync.Mutex

func setupAuthIntegrationRouter(dbName string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	uri := getSharedContainerURI()

	// Check if we already have a connection for this database
	dbConnectionsMutex.Lock()
	db, exists := dbConnections[dbName]
	dbConnectionsMutex.Unlock()

	if !exists {
		var err error
		db, err = repository.NewMongoDB(uri, dbName)
		if err != nil {
			panic(err)
		}
		// Store the connection to prevent garbage collection
		dbConnectionsMutex.Lock()
		dbConnections[dbName] = db
		dbConnectionsMutex.Unlock()
	}

	userRepo := repository.NewMongoUserRepository(db.Database)
	tokenRepo := repository.NewMongoTokenRepository(db.Database)

	authConfig := config.AuthConfig{
		JWTSecretKey:     "test-secret-key",
		JWTRefreshSecret: "test-refresh-secret-key",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
	}
	authService := service.NewAuthService(userRepo, tokenRepo, idgen.New(), authConfig)

	users := service.NewUserService(
		service.WithRepository(userRepo),
		service.WithGenerator(idgen.New()),
	)

	eventsRepo := repository.NewMongoEventRepository(db)
	eventsCB := circuitbreaker.New(circuitbreaker.DefaultConfig())
	eventsRepoWithCB := repository.NewEventRepositoryWithCircuitBreaker(eventsRepo, eventsCB)
	eventService := service.NewEventService(eventsRepoWithCB, idgen.New())

	handler := NewHandler(users)
	healthHandler := NewHealthHandler()

	cfg := RouterConfig{
		RateLimit:    100,
		RateWindow:   time.Minute,
		EventService: eventService,
		AuthService:  authService,
	}

	return NewRouter(handler, healthHandler, cfg)
}

// registerTestUser registers a user over HTTP and returns the issued tokens.
func registerTestUser(t *testing.T, router *gin.Engine, name, email, password string) dto.LoginResponse {
	t.Helper()

	registerBody := dto.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}
	bodyBytes, _ := json.Marshal(registerBody)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, "registration should succeed, body: %s", w.Body.String())

	var response dto.SuccessResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	dataBytes, _ := json.Marshal(response.Data)
	var loginResponse dto.LoginResponse
	err = json.Unmarshal(dataBytes, &loginResponse)
	require.NoError(t, err)
	return loginResponse
}

func TestAuthHandler_Login_Integration(t *testing.T) {
	t.Parallel()

	t.Run("register then login", func(t *testing.T) {
		// Use shared container with unique database name for this subtest
		dbName := sanitizeDBNameForHTTP(t.Name())
		router := setupAuthIntegrationRouter(dbName)

		registerTestUser(t, router, "Test User", "test@example.com", "password123")

		loginBody := dto.LoginRequest{
			Email:    "test@example.com",
			Password: "password123",
		}
		loginBodyBytes, _ := json.Marshal(loginBody)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(loginBodyBytes))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, "Login should succeed after registration, body: %s", w.Body.String())

		var response dto.SuccessResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)

		dataBytes, _ := json.Marshal(response.Data)
		var loginResponse dto.LoginResponse
		err = json.Unmarshal(dataBytes, &loginResponse)
		require.NoError(t, err)
		assert.NotEmpty(t, loginResponse.Token)
		assert.NotEmpty(t, loginResponse.RefreshToken)
		require.NotNil(t, loginResponse.User.Email)
		assert.Equal(t, "test@example.com", *loginResponse.User.Email)
	})

	t.Run("login with invalid credentials", func(t *testing.T) {
		// Use shared container with unique database name for this subtest
		dbName := sanitizeDBNameForHTTP(t.Name())
		router := setupAuthIntegrationRouter(dbName)

		loginBody := dto.LoginRequest{
			Email:    "nonexistent@example.com",
			Password: "wrongpassword",
		}
		loginBodyBytes, _ := json.Marshal(loginBody)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(loginBodyBytes))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_Register_Integration(t *testing.T) {
	t.Parallel()

	t.Run("successful registration", func(t *testing.T) {
		// Use shared container with unique database name for this subtest
		dbName := sanitizeDBNameForHTTP(t.Name())
		router := setupAuthIntegrationRouter(dbName)

		loginResponse := registerTestUser(t, router, "New User", "newuser@example.com", "password123")
		assert.NotEmpty(t, loginResponse.Token)
		assert.NotEmpty(t, loginResponse.RefreshToken)
		assert.Equal(t, "New User", loginResponse.User.Name)
		assert.Equal(t, "member", loginResponse.User.Role)
	})

	t.Run("duplicate email registration", func(t *testing.T) {
		// Use shared container with unique database name for this subtest
		dbName := sanitizeDBNameForHTTP(t.Name())
		router := setupAuthIntegrationRouter(dbName)

		registerBody := dto.RegisterRequest{
			Name:     "First User",
			Email:    "duplicate@example.com",
			Password: "password123",
		}
		bodyBytes, _ := json.Marshal(registerBody)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)

		req = httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
		w = httptest.NewRecorder()

		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAuthHandler_RefreshToken_Integration(t *testing.T) {
	t.Parallel()

	t.Run("successful token refresh", func(t *testing.T) {
		// Use shared container with unique database name for this subtest
		dbName := sanitizeDBNameForHTTP(t.Name())
		router := setupAuthIntegrationRouter(dbName)

		loginResponse := registerTestUser(t, router, "Refresh Test", "refreshtest@example.com", "password123")

		// Wait for at least 1 second to ensure JWT timestamps differ
		time.Sleep(time.Second)

		// Refresh token is passed in X-Refresh-Token header, not body
		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Refresh-Token", loginResponse.RefreshToken)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var refreshResponse dto.SuccessResponse
		err := json.Unmarshal(w.Body.Bytes(), &refreshResponse)
		require.NoError(t, err)

		dataBytes, _ := json.Marshal(refreshResponse.Data)
		var newTokenPair dto.LoginResponse
		err = json.Unmarshal(dataBytes, &newTokenPair)
		require.NoError(t, err)
		assert.NotEmpty(t, newTokenPair.Token)
		assert.NotEmpty(t, newTokenPair.RefreshToken)
		assert.NotEqual(t, loginResponse.Token, newTokenPair.Token)
	})

	t.Run("refresh with invalid token", func(t *testing.T) {
		// Use shared container with unique database name for this subtest
		dbName := sanitizeDBNameForHTTP(t.Name())
		router := setupAuthIntegrationRouter(dbName)

		// Refresh token is passed in X-Refresh-Token header, not body
		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Refresh-Token", "invalid-refresh-token")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_Logout_Integration(t *testing.T) {
	t.Parallel()

	t.Run("successful logout blacklists the refresh token", func(t *testing.T) {
		// Use shared container with unique database name for this subtest
		dbName := sanitizeDBNameForHTTP(t.Name())
		router := setupAuthIntegrationRouter(dbName)

		loginResponse := registerTestUser(t, router, "Logout Test", "logouttest@example.com", "password123")

		// Access token goes in the Authorization header, refresh token in X-Refresh-Token
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+loginResponse.Token)
		req.Header.Set("X-Refresh-Token", loginResponse.RefreshToken)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		// The blacklisted refresh token must no longer mint new tokens
		req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Refresh-Token", loginResponse.RefreshToken)
		w = httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_ProtectedAccess_Integration(t *testing.T) {
	t.Parallel()

	// Use shared container with unique database name
	dbName := sanitizeDBNameForHTTP(t.Name())
	router := setupAuthIntegrationRouter(dbName)

	loginResponse := registerTestUser(t, router, "Member User", "member@example.com", "password123")

	t.Run("user routes require a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token grants access", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Authorization", "Bearer "+loginResponse.Token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		list := decodeUserList(t, w)
		assert.Equal(t, 1, list.Total)
	})

	t.Run("delete requires the admin role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/users/%d", loginResponse.User.ID), nil)
		req.Header.Set("Authorization", "Bearer "+loginResponse.Token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
