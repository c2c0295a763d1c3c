// Package app provides database initialization and setup.
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/idgrid/user-service/config"
	"github.com/idgrid/user-service/internal/circuitbreaker"
	"github.com/idgrid/user-service/internal/idgen"
	"github.com/idgrid/user-service/internal/repository"
	"github.com/idgrid/user-service/internal/service"
)

// DatabaseComponents holds the MongoDB-backed services and the
// infrastructure around them.
type DatabaseComponents struct {
	DB     *repository.MongoDB
	Users  service.UserService
	Events service.EventService
	Auth   service.AuthService
	Tokens service.TokenService

	UsersCircuitBreaker  *circuitbreaker.CircuitBreaker
	EventsCircuitBreaker *circuitbreaker.CircuitBreaker
}

// InitializeDatabase connects to MongoDB and builds the database-backed
// service stack. Returns nil if the database is disabled or the connection
// fails; callers then stay on the in-memory stack.
func InitializeDatabase(cfg config.DatabaseConfig, authCfg config.AuthConfig) *DatabaseComponents {
	if !cfg.Enabled {
		return nil
	}

	db, err := repository.NewMongoDB(cfg.URI, cfg.DatabaseName)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to MongoDB - continuing without database")
		return nil
	}

	log.Info().Msg("Connected to MongoDB")

	// Expire audit events past the configured retention
	ttlDays := int(cfg.EventsTTL.Hours() / 24)
	if err := db.SetEventsTTL(context.Background(), ttlDays); err != nil {
		log.Warn().Err(err).Msg("Failed to set events TTL index (may already exist)")
	}

	// Initialize circuit breakers
	usersCB := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		OpenTimeout:      cfg.CircuitBreakerTimeout,
		Name:             "mongodb-users",
	})

	eventsCB := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		OpenTimeout:      cfg.CircuitBreakerTimeout,
		Name:             "mongodb-events",
	})

	// Initialize repositories
	usersRepo := repository.NewMongoUserRepository(db.Database)
	usersRepoWithCB := repository.NewUserRepositoryWithCircuitBreaker(usersRepo, usersCB)

	eventsRepo := repository.NewMongoEventRepository(db)
	eventsRepoWithCB := repository.NewEventRepositoryWithCircuitBreaker(eventsRepo, eventsCB)

	// Resume each identifier sequence after the highest identifier its
	// collection holds, so restarts never reissue one.
	userIDs := seedSequence("users", usersRepo.MaxID)
	eventIDs := seedSequence("events", eventsRepo.MaxID)

	seedAdminUser(usersRepoWithCB, userIDs, authCfg)

	users := service.NewUserService(
		service.WithRepository(usersRepoWithCB),
		service.WithGenerator(userIDs),
	)
	events := service.NewEventService(eventsRepoWithCB, eventIDs)

	// Auth registration inserts users, so it shares the user sequence.
	// Token records live in their own collection with their own sequence.
	var auth service.AuthService
	var tokens service.TokenService
	if authCfg.Enabled {
		tokenRepo := repository.NewMongoTokenRepository(db.Database)
		tokenIDs := seedSequence("tokens", tokenRepo.MaxID)
		tokens = service.NewTokenService(tokenRepo, tokenIDs, service.NewTokenConfigFromAuthConfig(authCfg))
		auth = service.NewAuthServiceWithTokenService(usersRepoWithCB, tokens, userIDs)
	}

	return &DatabaseComponents{
		DB:                   db,
		Users:                users,
		Events:               events,
		Auth:                 auth,
		Tokens:               tokens,
		UsersCircuitBreaker:  usersCB,
		EventsCircuitBreaker: eventsCB,
	}
}

// seedSequence builds an identifier generator resuming after the store's
// highest assigned identifier. If the store cannot be read the sequence
// starts at one.
func seedSequence(name string, maxID func(context.Context) (uint64, error)) *idgen.Generator {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	last, err := maxID(ctx)
	if err != nil {
		log.Error().Err(err).Str("sequence", name).Msg("Failed to read highest assigned identifier")
		return idgen.New()
	}
	if last > 0 {
		log.Info().Str("sequence", name).Uint64("last", last).Msg("Resuming identifier sequence")
	}
	return idgen.NewFrom(last)
}

// Close releases the database connection and stops background services.
func (d *DatabaseComponents) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	if d.Tokens != nil {
		d.Tokens.Stop()
	}
	if d.DB != nil {
		return d.DB.Close(ctx)
	}
	return nil
}
