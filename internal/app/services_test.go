//go:build !integration

package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idgrid/user-service/config"
	"github.com/idgrid/user-service/internal/domain/model"
	"github.com/idgrid/user-service/internal/service"
)

func TestInitializeServices(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.StoreConfig
		validate func(*testing.T, *ServiceComponents)
	}{
		{
			name: "creates services with default config",
			cfg:  config.Default().Store,
			validate: func(t *testing.T, components *ServiceComponents) {
				assert.NotNil(t, components)
				assert.NotNil(t, components.Users)
				assert.NotNil(t, components.Events)
				assert.NotNil(t, components.UserIDs)
			},
		},
		{
			name: "creates services with unbounded store",
			cfg:  config.StoreConfig{MaxUsers: 0},
			validate: func(t *testing.T, components *ServiceComponents) {
				assert.NotNil(t, components.Users)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			components := InitializeServices(tt.cfg)
			if tt.validate != nil {
				tt.validate(t, components)
			}
		})
	}
}

func TestServiceComponents_Users(t *testing.T) {
	components := InitializeServices(config.StoreConfig{MaxUsers: 100})
	ctx := context.Background()

	first, err := components.Users.Create(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.ID)

	second, err := components.Users.Create(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.ID)

	// The exported sequence is the one behind the service
	assert.Equal(t, uint64(3), components.UserIDs.NextID())
}

func TestServiceComponents_CapacityLimit(t *testing.T) {
	components := InitializeServices(config.StoreConfig{MaxUsers: 2})
	ctx := context.Background()

	_, err := components.Users.Create(ctx, "Alice")
	require.NoError(t, err)
	_, err = components.Users.Create(ctx, "Bob")
	require.NoError(t, err)

	_, err = components.Users.Create(ctx, "Carol")
	assert.ErrorIs(t, err, service.ErrCapacityExceeded)
}

func TestServiceComponents_EventsHaveOwnSequence(t *testing.T) {
	components := InitializeServices(config.StoreConfig{MaxUsers: 10})
	ctx := context.Background()

	user, err := components.Users.Create(ctx, "Alice")
	require.NoError(t, err)
	require.Equal(t, uint64(1), user.ID)

	// Recording events does not advance the user sequence
	err = components.Events.Record(ctx, &model.Event{
		Level:   "info",
		Action:  "user_created",
		Message: "user created",
		UserID:  user.ID,
	})
	require.NoError(t, err)

	next, err := components.Users.Create(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next.ID)
}
