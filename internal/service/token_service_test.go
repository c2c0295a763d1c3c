//go:build !integration

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idgrid/user-service/internal/domain/model"
	"github.com/idgrid/user-service/internal/repository"
	"github.com/idgrid/user-service/internal/service"
)

func testTokenConfig() service.TokenConfig {
	return service.TokenConfig{
		SecretKey:          "test-secret-key",
		RefreshSecretKey:   "test-refresh-secret-key",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
		BlacklistCacheSize: 64,
	}
}

func newTestTokenService(t *testing.T) service.TokenService {
	t.Helper()
	svc := service.NewTokenService(repository.NewMemoryTokenRepository(), nil, testTokenConfig())
	t.Cleanup(svc.Stop)
	return svc
}

func testTokenUser() *model.User {
	user := model.NewUser(42, "Alice").WithEmail("alice@example.com")
	return &user
}

func TestTokenService_GenerateTokenPair(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, testTokenUser())

	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), pair.ExpiresIn)

	// The refresh token is stored for later rotation.
	stored, err := svc.FindRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, uint64(42), stored.UserID)
	assert.Equal(t, "refresh", stored.Type)
	assert.NotZero(t, stored.ID)
}

func TestTokenService_GenerateTokenPair_ZeroID(t *testing.T) {
	svc := newTestTokenService(t)

	user := model.NewUser(0, "nobody")
	pair, err := svc.GenerateTokenPair(context.Background(), &user)

	assert.Error(t, err)
	assert.Nil(t, pair)
}

func TestTokenService_GenerateTokenPair_UniquePerLogin(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()
	user := testTokenUser()

	first, err := svc.GenerateTokenPair(ctx, user)
	require.NoError(t, err)
	second, err := svc.GenerateTokenPair(ctx, user)
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestTokenService_ValidateAccessToken(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, testTokenUser())
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(ctx, pair.AccessToken)

	require.NoError(t, err)
	require.NotNil(t, claims)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, string(model.RoleMember), claims.Role)
}

func TestTokenService_ValidateAccessToken_NoEmail(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	user := model.NewUser(7, "Bob")
	pair, err := svc.GenerateTokenPair(ctx, &user)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(ctx, pair.AccessToken)

	require.NoError(t, err)
	assert.Empty(t, claims.Email)
}

func TestTokenService_ValidateAccessToken_Invalid(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name:  "garbage string",
			token: func(t *testing.T) string { return "not-a-token" },
		},
		{
			name: "signed with a different secret",
			token: func(t *testing.T) string {
				other := testTokenConfig()
				other.SecretKey = "some-other-secret"
				otherSvc := service.NewTokenService(repository.NewMemoryTokenRepository(), nil, other)
				defer otherSvc.Stop()

				pair, err := otherSvc.GenerateTokenPair(context.Background(), testTokenUser())
				require.NoError(t, err)
				return pair.AccessToken
			},
		},
		{
			name: "refresh token on the access path",
			token: func(t *testing.T) string {
				pair, err := svc.GenerateTokenPair(context.Background(), testTokenUser())
				require.NoError(t, err)
				return pair.RefreshToken
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateAccessToken(ctx, tt.token(t))

			assert.ErrorIs(t, err, service.ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestTokenService_ValidateRefreshToken(t *testing.T) {
	svc := newTestTokenService(t)

	pair, err := svc.GenerateTokenPair(context.Background(), testTokenUser())
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)

	// An access token does not verify against the refresh secret.
	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestTokenService_InvalidateAccessToken(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, testTokenUser())
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateAccessToken(ctx, pair.AccessToken))

	// First check hits the cache, but exercise it twice to cover the
	// repository fallback as well.
	for i := 0; i < 2; i++ {
		claims, err := svc.ValidateAccessToken(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, service.ErrTokenBlacklisted)
		assert.Nil(t, claims)
	}
}

func TestTokenService_InvalidateAccessToken_Invalid(t *testing.T) {
	svc := newTestTokenService(t)

	err := svc.InvalidateAccessToken(context.Background(), "not-a-token")

	assert.Error(t, err)
}

func TestTokenService_BlacklistSurvivesWithoutCache(t *testing.T) {
	// A zero cache size disables the in-process blacklist front; the
	// repository alone must still reject invalidated tokens.
	cfg := testTokenConfig()
	cfg.BlacklistCacheSize = 0
	svc := service.NewTokenService(repository.NewMemoryTokenRepository(), nil, cfg)
	defer svc.Stop()
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, testTokenUser())
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateAccessToken(ctx, pair.AccessToken))

	_, err = svc.ValidateAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, service.ErrTokenBlacklisted)
}

func TestTokenService_WithSharedCache(t *testing.T) {
	blacklist := service.NewShardedCache(256, 15*time.Minute, 4)
	svc := service.NewTokenServiceWithCache(
		repository.NewMemoryTokenRepository(), nil, testTokenConfig(), blacklist)
	t.Cleanup(svc.Stop)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, testTokenUser())
	require.NoError(t, err)
	require.NoError(t, svc.InvalidateAccessToken(ctx, pair.AccessToken))

	_, err = svc.ValidateAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, service.ErrTokenBlacklisted)

	// The invalidated token landed in the shared cache.
	entry, ok := blacklist.Get(pair.AccessToken)
	require.True(t, ok)
	assert.Equal(t, "blacklist", entry.Type)
}

func TestTokenService_DeleteRefreshToken(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, testTokenUser())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRefreshToken(ctx, pair.RefreshToken))

	stored, err := svc.FindRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestTokenService_InvalidateUserTokens(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := context.Background()
	user := testTokenUser()

	first, err := svc.GenerateTokenPair(ctx, user)
	require.NoError(t, err)
	second, err := svc.GenerateTokenPair(ctx, user)
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateUserTokens(ctx, user.ID))

	for _, token := range []string{first.RefreshToken, second.RefreshToken} {
		stored, err := svc.FindRefreshToken(ctx, token)
		require.NoError(t, err)
		assert.Nil(t, stored)
	}
}
