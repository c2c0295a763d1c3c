// Package dto defines Data Transfer Objects for HTTP request and response handling.
//
// DTOs are used to decouple the HTTP layer from the domain model,
// providing validation and serialization for API communication.
package dto

import (
	"strings"
	"time"
)

// CreateUserRequest represents the JSON request body for creating a user.
//
// The Name field is required. Email is optional; when present it must be
// a valid address. Validation is performed using gin's binding tags.
//
// @Description Request to create a new user
// @Example {"name": "Alice"}
// @Example {"name": "Alice", "email": "alice@example.com"}
type CreateUserRequest struct {
	// Name is the user's display name. Must not be blank.
	Name string `json:"name" binding:"required" example:"Alice"`
	// Email is the user's optional email address.
	Email string `json:"email,omitempty" binding:"omitempty,email" example:"alice@example.com"`
} // @name CreateUserRequest

// UpdateEmailRequest represents the JSON request body for updating a user's email.
//
// @Description Request to set or replace a user's email address
// @Example {"email": "alice@example.com"}
type UpdateEmailRequest struct {
	// Email is the new email address.
	Email string `json:"email" binding:"required,email" example:"alice@example.com"`
} // @name UpdateEmailRequest

// ListUsersRequest represents the query parameters for listing users.
type ListUsersRequest struct {
	// Limit caps the number of users returned. Zero means server default.
	Limit int `form:"limit"`
	// Offset skips that many users from the start of the listing.
	Offset int `form:"offset"`
	// Name filters users by name instead of paginating.
	Name string `form:"name"`
	// Match selects the name matching mode. "loose" compares canonical
	// names (trimmed, lowercased); anything else is an exact match.
	Match string `form:"match"`
}

// EventQueryRequest represents the query parameters for the audit event
// endpoints. All filters are optional and combine with AND semantics.
type EventQueryRequest struct {
	// Action filters events by action name, e.g. "login" or "user_created".
	Action string `form:"action"`
	// UserID filters events by the acting user.
	UserID uint64 `form:"user_id"`
	// RequestID filters events belonging to a single request.
	RequestID string `form:"request_id"`
	// Level filters by severity, "info" or "error".
	Level string `form:"level"`
	// Start excludes events recorded before this time (RFC 3339).
	Start time.Time `form:"start" time_format:"2006-01-02T15:04:05Z07:00"`
	// End excludes events recorded after this time (RFC 3339).
	End time.Time `form:"end" time_format:"2006-01-02T15:04:05Z07:00"`
	// Limit caps the number of events returned. Zero means server default.
	Limit int `form:"limit"`
	// Offset skips that many events from the start of the result.
	Offset int `form:"offset"`
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

var (
	// ErrBlankName is returned when the user name is empty or whitespace.
	ErrBlankName = &ValidationError{
		Field:   "name",
		Message: "must not be blank",
	}
	// ErrInvalidEmail is returned when the email address is malformed.
	ErrInvalidEmail = &ValidationError{
		Field:   "email",
		Message: "must be a valid email address",
	}
	// ErrInvalidLimit is returned when the list limit is negative.
	ErrInvalidLimit = &ValidationError{
		Field:   "limit",
		Message: "must not be negative",
	}
	// ErrInvalidOffset is returned when the list offset is negative.
	ErrInvalidOffset = &ValidationError{
		Field:   "offset",
		Message: "must not be negative",
	}
)

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate performs custom validation on the create user request.
// Returns an error if validation fails, nil otherwise.
func (r *CreateUserRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrBlankName
	}
	return nil
}

// Validate performs custom validation on the update email request.
func (r *UpdateEmailRequest) Validate() error {
	if r.Email == "" {
		return ErrInvalidEmail
	}
	return nil
}

// Validate performs custom validation on the list users request.
func (r *ListUsersRequest) Validate() error {
	if r.Limit < 0 {
		return ErrInvalidLimit
	}
	if r.Offset < 0 {
		return ErrInvalidOffset
	}
	return nil
}

// Validate performs custom validation on the event query request.
func (r *EventQueryRequest) Validate() error {
	if r.Limit < 0 {
		return ErrInvalidLimit
	}
	if r.Offset < 0 {
		return ErrInvalidOffset
	}
	return nil
}
