package repository

import (
	"context"
	"sync"
	"time"

	"github.com/idgrid/user-service/internal/domain/model"
)

// MemoryTokenRepository implements TokenRepositoryInterface in memory.
// Tokens are keyed by their opaque token string, matching the unique
// index the MongoDB implementation relies on.
type MemoryTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]model.Token
}

// NewMemoryTokenRepository creates an in-memory token repository.
func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{
		tokens: make(map[string]model.Token),
	}
}

// Create stores a new token.
func (r *MemoryTokenRepository) Create(ctx context.Context, token *model.Token) error {
	if token == nil {
		return ErrNilEntity
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	token.CreatedAt = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Token] = *token
	return nil
}

// FindByToken finds a token by token string.
func (r *MemoryTokenRepository) FindByToken(ctx context.Context, tokenString string) (*model.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[tokenString]
	if !ok {
		return nil, nil
	}
	return &token, nil
}

// FindByUserID finds all tokens for a user by type.
func (r *MemoryTokenRepository) FindByUserID(ctx context.Context, userID uint64, tokenType string) ([]*model.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var tokens []*model.Token
	for _, token := range r.tokens {
		if token.UserID == userID && token.Type == tokenType {
			t := token
			tokens = append(tokens, &t)
		}
	}
	return tokens, nil
}

// Delete deletes a token by ID.
func (r *MemoryTokenRepository) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, token := range r.tokens {
		if token.ID == id {
			delete(r.tokens, key)
			return nil
		}
	}
	return nil
}

// DeleteByToken deletes a token by token string.
func (r *MemoryTokenRepository) DeleteByToken(ctx context.Context, tokenString string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, tokenString)
	return nil
}

// DeleteByUserID deletes all tokens for a user by type.
func (r *MemoryTokenRepository) DeleteByUserID(ctx context.Context, userID uint64, tokenType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, token := range r.tokens {
		if token.UserID == userID && token.Type == tokenType {
			delete(r.tokens, key)
		}
	}
	return nil
}

// IsBlacklisted checks if a token is blacklisted.
func (r *MemoryTokenRepository) IsBlacklisted(ctx context.Context, tokenString string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[tokenString]
	return ok && token.Type == "blacklist", nil
}

// CleanupExpired removes expired tokens from the store. The MongoDB
// implementation delegates this to a TTL index; here it must be called
// periodically.
func (r *MemoryTokenRepository) CleanupExpired(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, token := range r.tokens {
		if token.ExpiresAt.Before(now) {
			delete(r.tokens, key)
		}
	}
	return nil
}
