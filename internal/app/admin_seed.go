// Package app provides bootstrap account seeding.
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/idgrid/user-service/config"
	"github.com/idgrid/user-service/internal/domain/model"
	"github.com/idgrid/user-service/internal/idgen"
	"github.com/idgrid/user-service/internal/repository"
)

// seedAdminUser creates the bootstrap admin account if it doesn't exist.
// It does nothing unless both AdminEmail and AdminPassword are configured.
// Seeding failures are logged and never abort startup.
func seedAdminUser(userRepo repository.UserRepositoryInterface, ids *idgen.Generator, cfg config.AuthConfig) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	existing, err := userRepo.FindByEmail(ctx, cfg.AdminEmail)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to check for existing admin user")
		return
	}
	if existing != nil {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to hash admin password")
		return
	}

	user := model.NewUser(ids.NextID(), "Admin").WithEmail(cfg.AdminEmail)
	user.Role = model.RoleAdmin
	user.PasswordHash = string(hashedPassword)

	if err := userRepo.Create(ctx, &user); err != nil {
		log.Warn().Err(err).Str("email", cfg.AdminEmail).Msg("Failed to create admin user")
		return
	}
	log.Info().Str("email", cfg.AdminEmail).Uint64("user_id", user.ID).Msg("Created bootstrap admin user")
}
