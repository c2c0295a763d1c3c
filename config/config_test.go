package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 100, cfg.Server.RateLimit)
	assert.Equal(t, time.Minute, cfg.Server.RateWindow)
	assert.Equal(t, 100, cfg.Store.MaxUsers)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.False(t, cfg.Auth.Enabled)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "user_service", cfg.Database.DatabaseName)
}

func TestLoad(t *testing.T) {
	t.Run("loads default values", func(t *testing.T) {
		os.Clearenv()

		cfg := Load()

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, 100, cfg.Server.RateLimit)
		assert.Equal(t, time.Minute, cfg.Server.RateWindow)
		assert.Equal(t, 100, cfg.Store.MaxUsers)
		assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
		assert.False(t, cfg.Auth.Enabled)
	})

	t.Run("matches the built-in defaults", func(t *testing.T) {
		os.Clearenv()

		assert.Equal(t, Default().Store, Load().Store)
		assert.Equal(t, Default().Database, Load().Database)
	})

	t.Run("loads values from environment", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("PORT", "9090")
		_ = os.Setenv("RATE_LIMIT", "50")
		_ = os.Setenv("RATE_WINDOW", "30s")
		_ = os.Setenv("MAX_USERS", "500")
		_ = os.Setenv("STORE_TIMEOUT", "10s")
		_ = os.Setenv("AUTH_ENABLED", "true")
		_ = os.Setenv("API_KEYS", "key1,key2")
		defer os.Clearenv()

		cfg := Load()

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, 50, cfg.Server.RateLimit)
		assert.Equal(t, 30*time.Second, cfg.Server.RateWindow)
		assert.Equal(t, 500, cfg.Store.MaxUsers)
		assert.Equal(t, 10*time.Second, cfg.Store.Timeout)
		assert.True(t, cfg.Auth.Enabled)
		assert.True(t, cfg.Auth.APIKeys["key1"])
		assert.True(t, cfg.Auth.APIKeys["key2"])
	})

	t.Run("loads database values from environment", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("MONGODB_ENABLED", "true")
		_ = os.Setenv("MONGODB_URI", "mongodb://db:27017")
		_ = os.Setenv("MONGODB_DATABASE", "users_prod")
		_ = os.Setenv("MONGODB_EVENTS_TTL", "168h")
		_ = os.Setenv("CIRCUIT_BREAKER_FAILURE_THRESHOLD", "10")
		defer os.Clearenv()

		cfg := Load()

		assert.True(t, cfg.Database.Enabled)
		assert.Equal(t, "mongodb://db:27017", cfg.Database.URI)
		assert.Equal(t, "users_prod", cfg.Database.DatabaseName)
		assert.Equal(t, 7*24*time.Hour, cfg.Database.EventsTTL)
		assert.Equal(t, 10, cfg.Database.CircuitBreakerFailureThreshold)
	})

	t.Run("handles invalid values gracefully", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("RATE_LIMIT", "invalid")
		_ = os.Setenv("MAX_USERS", "invalid")
		_ = os.Setenv("STORE_TIMEOUT", "invalid")
		_ = os.Setenv("AUTH_ENABLED", "invalid")
		_ = os.Setenv("RATE_WINDOW", "invalid")
		defer os.Clearenv()

		cfg := Load()

		assert.Equal(t, 100, cfg.Server.RateLimit)
		assert.Equal(t, 100, cfg.Store.MaxUsers)
		assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
		assert.False(t, cfg.Auth.Enabled)
		assert.Equal(t, time.Minute, cfg.Server.RateWindow)
	})

	t.Run("loads bootstrap admin credentials", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("ADMIN_EMAIL", "ops@example.com")
		_ = os.Setenv("ADMIN_PASSWORD", "bootstrap-pass")
		defer os.Clearenv()

		cfg := Load()

		assert.Equal(t, "ops@example.com", cfg.Auth.AdminEmail)
		assert.Equal(t, "bootstrap-pass", cfg.Auth.AdminPassword)
	})

	t.Run("parses API keys with whitespace", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("API_KEYS", " key1 , key2 , key3 ")
		defer os.Clearenv()

		cfg := Load()

		assert.True(t, cfg.Auth.APIKeys["key1"])
		assert.True(t, cfg.Auth.APIKeys["key2"])
		assert.True(t, cfg.Auth.APIKeys["key3"])
	})

	t.Run("appends extra CORS origins to the defaults", func(t *testing.T) {
		os.Clearenv()
		_ = os.Setenv("CORS_ORIGINS", "https://app.example.com")
		defer os.Clearenv()

		cfg := Load()

		assert.Contains(t, cfg.Server.CORSOrigins, "http://localhost:3000")
		assert.Contains(t, cfg.Server.CORSOrigins, "https://app.example.com")
	})

	t.Run("returns nil for empty API keys", func(t *testing.T) {
		os.Clearenv()

		cfg := Load()

		assert.Nil(t, cfg.Auth.APIKeys)
	})
}
