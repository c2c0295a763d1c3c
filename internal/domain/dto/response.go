package dto

import (
	"net/http"
	"time"
)

// Machine-readable error codes carried in ErrorResponse.Error. Clients
// branch on these rather than on messages, which are localized.
const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeInternal       = "internal_error"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeForbidden      = "forbidden"
	ErrCodeNotFound       = "not_found"
	ErrCodeRateLimit      = "rate_limit_exceeded"
	ErrCodeConflict       = "conflict"
	ErrCodeTimeout        = "timeout"
)

// SuccessResponse is the envelope around every successful API response.
// @Description Successful API response wrapper
type SuccessResponse struct {
	// Data holds the endpoint's payload (UserResponse for user endpoints)
	// Example: {"id": 1, "name": "Alice", "email": "alice@example.com"}
	Data interface{} `json:"data" swaggertype:"object"`
	// RequestID ties the response to the request's log lines
	RequestID string `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	// Timestamp is when the response was generated
	Timestamp time.Time `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name SuccessResponse

// ErrorResponse is the envelope around every API error.
// @Description Standardized error response
type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_request"`
	Message string `json:"message,omitempty" example:"name: must not be blank"`
	// Details carries optional per-field diagnostics
	// Example: {"field": "error message"}
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time         `json:"timestamp" example:"2025-01-28T10:00:00Z"`
	TraceID   string            `json:"trace_id,omitempty" example:"trace-123"`
} // @name ErrorResponse

// UserResponse represents user information in API responses.
//
// @Description Public view of a user
// @Example {"id": 1, "name": "Alice", "email": "alice@example.com", "role": "member", "active": true}
type UserResponse struct {
	// ID is the user's numeric identifier.
	ID uint64 `json:"id" example:"1"`
	// Name is the user's display name.
	Name string `json:"name" example:"Alice"`
	// Email is the user's email address, if any.
	Email *string `json:"email,omitempty" example:"alice@example.com"`
	// Role is the user's access level.
	Role string `json:"role" example:"member"`
	// Active reports whether the account is enabled.
	Active bool `json:"active" example:"true"`
	// CreatedAt is when the user was created.
	CreatedAt time.Time `json:"created_at" example:"2025-01-28T10:00:00Z"`
	// UpdatedAt is when the user was last modified.
	UpdatedAt time.Time `json:"updated_at" example:"2025-01-28T10:00:00Z"`
} // @name UserResponse

// UserListResponse represents a page of users.
//
// @Description Paged list of users
type UserListResponse struct {
	// Users is the page of users.
	Users []UserResponse `json:"users"`
	// Total is the total number of stored users for paginated listings,
	// or the number of matches for name lookups.
	Total int `json:"total" example:"1"`
} // @name UserListResponse

// NewError builds an error envelope with the code and message filled in.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithRequestID returns a copy of the envelope tagged with the request id.
func (e ErrorResponse) WithRequestID(requestID string) ErrorResponse {
	e.RequestID = requestID
	return e
}

var statusCodes = map[int]string{
	http.StatusBadRequest:      ErrCodeInvalidRequest,
	http.StatusUnauthorized:    ErrCodeUnauthorized,
	http.StatusForbidden:       ErrCodeForbidden,
	http.StatusNotFound:        ErrCodeNotFound,
	http.StatusConflict:        ErrCodeConflict,
	http.StatusTooManyRequests: ErrCodeRateLimit,
	http.StatusRequestTimeout:  ErrCodeTimeout,
	http.StatusGatewayTimeout:  ErrCodeTimeout,
}

// ErrCodeFromStatus maps an HTTP status to its error code. Unmapped
// statuses report as internal errors.
func ErrCodeFromStatus(status int) string {
	if code, ok := statusCodes[status]; ok {
		return code
	}
	return ErrCodeInternal
}
