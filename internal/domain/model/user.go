// Package model defines user-related domain entities.
package model

import (
	"time"
)

// Identifiable is implemented by entities that expose a numeric identity.
// Repositories key their records on this value.
type Identifiable interface {
	Identity() uint64
}

// Role classifies the access level of a user.
type Role string

// The closed set of roles known to the service.
const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleGuest:
		return true
	}
	return false
}

// User represents a user in the system.
type User struct {
	ID   uint64 `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
	// NameCanonical is the FormatName form of Name, maintained by the
	// repository layer for search lookups.
	NameCanonical string    `bson:"name_canonical,omitempty" json:"-"`
	Email         *string   `bson:"email,omitempty" json:"email,omitempty"`
	Role          Role      `bson:"role" json:"role"`
	PasswordHash  string    `bson:"password_hash,omitempty" json:"-"` // Never serialize credentials
	Active        bool      `bson:"active" json:"active"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// NewUser creates a user with the given identifier and display name.
// The name is stored verbatim; use FormatName when comparing names.
// New users start active, with the member role and no email.
func NewUser(id uint64, name string) User {
	now := time.Now().UTC()
	return User{
		ID:        id,
		Name:      name,
		Role:      RoleMember,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithEmail returns a copy of the user with the email set.
func (u User) WithEmail(email string) User {
	u.Email = &email
	return u
}

// Identity returns the user's numeric identifier.
func (u User) Identity() uint64 {
	return u.ID
}

// Token represents a refresh token or blacklisted token.
type Token struct {
	ID        uint64    `bson:"_id" json:"id"`
	UserID    uint64    `bson:"user_id" json:"user_id"`
	Token     string    `bson:"token" json:"token"`
	Type      string    `bson:"type" json:"type"` // "refresh" or "blacklist"
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Identity returns the token's numeric identifier.
func (t Token) Identity() uint64 {
	return t.ID
}
