package i18n

// Translation keys for error messages. An unknown key falls through
// Translate unchanged, so every key below must exist in the message
// tables.
const (
	// Request handling.
	ErrKeyInvalidRequest     = "error.invalid_request"
	ErrKeyInvalidRequestBody = "error.invalid_request_body"
	ErrKeyInternalError      = "error.internal_error"
	ErrKeyTimeout            = "error.timeout"

	// Authentication and authorization.
	ErrKeyUnauthorized       = "error.unauthorized"
	ErrKeyInvalidCredentials = "error.invalid_credentials"
	ErrKeyAPIKeyRequired     = "error.api_key_required"
	ErrKeyInvalidAPIKey      = "error.invalid_api_key"
	ErrKeyForbidden          = "error.forbidden"
	ErrKeyInvalidToken       = "error.invalid_token"
	ErrKeyTokenRequired      = "error.token_required"
	ErrKeyAuthNotConfigured  = "error.auth_not_configured"
	ErrKeyRateLimitExceeded  = "error.rate_limit_exceeded"

	// User domain.
	ErrKeyNotFound        = "error.not_found"
	ErrKeyUserNotFound    = "error.user_not_found"
	ErrKeyConflict        = "error.conflict"
	ErrKeyEmailTaken      = "error.email_taken"
	ErrKeyStoreFull       = "error.store_full"
	ErrKeyValidationName  = "error.validation.name"
	ErrKeyValidationEmail = "error.validation.email"
)

// Translation keys for success messages.
const (
	SuccessKeyUserCreated = "success.user_created"
	SuccessKeyUserUpdated = "success.user_updated"
	SuccessKeyUserDeleted = "success.user_deleted"
)
