package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/idgrid/user-service/internal/domain/dto"
	"github.com/idgrid/user-service/internal/domain/model"
	"github.com/idgrid/user-service/internal/i18n"
	"github.com/idgrid/user-service/internal/metrics"
	"github.com/idgrid/user-service/internal/middleware"
	"github.com/idgrid/user-service/internal/repository"
	"github.com/idgrid/user-service/internal/service"
)

// defaultListLimit caps unpaginated list responses.
const defaultListLimit = 50

// userCountCache provides thread-safe caching of the stored-user count.
type userCountCache struct {
	count     atomic.Value // holds int64
	expiresAt atomic.Value // holds time.Time
	mu        sync.Mutex
	ttl       time.Duration
}

// newUserCountCache creates a new count cache with the given TTL.
func newUserCountCache(ttl time.Duration) *userCountCache {
	c := &userCountCache{ttl: ttl}
	c.expiresAt.Store(time.Time{})
	return c
}

// get returns the cached count if valid, or false if cache is expired/empty.
func (c *userCountCache) get() (int64, bool) {
	if exp := c.expiresAt.Load(); exp != nil {
		if expiresAt, ok := exp.(time.Time); ok && time.Now().Before(expiresAt) {
			if count := c.count.Load(); count != nil {
				if n, ok := count.(int64); ok {
					return n, true
				}
			}
		}
	}
	return 0, false
}

// set stores the count in the cache with TTL.
func (c *userCountCache) set(n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring lock
	if exp := c.expiresAt.Load(); exp != nil {
		if expiresAt, ok := exp.(time.Time); ok && time.Now().Before(expiresAt) {
			return // Already cached by another goroutine
		}
	}

	c.count.Store(n)
	c.expiresAt.Store(time.Now().Add(c.ttl))
}

// invalidate clears the cache.
func (c *userCountCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expiresAt.Store(time.Time{})
}

// Handler provides HTTP handlers for user routes.
type Handler struct {
	users      service.UserService
	countCache *userCountCache
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithCountCacheTTL sets the TTL for user count caching.
func WithCountCacheTTL(ttl time.Duration) HandlerOption {
	return func(h *Handler) {
		h.countCache = newUserCountCache(ttl)
	}
}

// NewHandler creates a new Handler instance.
func NewHandler(users service.UserService, opts ...HandlerOption) *Handler {
	h := &Handler{
		users:      users,
		countCache: newUserCountCache(30 * time.Second), // Default 30s cache
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// getUserCount retrieves the stored-user count from cache or store.
func (h *Handler) getUserCount(ctx context.Context) int64 {
	// Check cache first
	if n, ok := h.countCache.get(); ok {
		return n
	}

	// Cache miss - fetch from store with a timeout
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	n, err := h.users.Count(ctx)
	if err != nil {
		return 0
	}

	// Cache the result
	h.countCache.set(n)
	return n
}

// InvalidateCountCache invalidates the user count cache.
// Call this when users are created or deleted.
func (h *Handler) InvalidateCountCache() {
	h.countCache.invalidate()
}

// eventsFromContext returns the audit event service from the gin context,
// or nil when none was wired.
func eventsFromContext(c *gin.Context) service.EventService {
	if v, exists := c.Get("event_service"); exists {
		if events, ok := v.(service.EventService); ok {
			return events
		}
	}
	return nil
}

// userResponse maps a domain user to its API representation.
func userResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// userListResponse maps a slice of domain users plus a total count.
func userListResponse(users []*model.User, total int64) dto.UserListResponse {
	out := make([]dto.UserResponse, len(users))
	for i, user := range users {
		out[i] = userResponse(user)
	}
	return dto.UserListResponse{
		Users: out,
		Total: int(total),
	}
}

// CreateUser handles POST /api/users requests.
//
// @Summary      Create user
// @Description  Creates a new user with a generated numeric identifier. The name is stored as given; the optional email is attached when present. Supports idempotency via Idempotency-Key header.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key for request deduplication"
// @Param        request body dto.CreateUserRequest true "User information"
// @Success      201 {object} dto.SuccessResponse "User created"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Param        Authorization header string false "Bearer token (required if auth enabled)"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid JWT token"
// @Failure      409 {object} dto.ErrorResponse "Conflict - email taken or store at capacity"
// @Failure      429 {object} dto.ErrorResponse "Too many requests - rate limit exceeded"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     BearerAuth
// @Router       /api/users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	builder := NewResponseBuilder(c)

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	if err := req.Validate(); err != nil {
		if _, ok := err.(*dto.ValidationError); ok {
			metrics.RecordUserOperation("create", 0, "validation_error")
			builder.Error(http.StatusBadRequest, i18n.ErrKeyValidationName, err)
		} else {
			builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		}
		return
	}

	user, err := h.users.CreateWithEmail(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		h.writeUserError(c, builder, err)
		return
	}

	h.InvalidateCountCache()

	middleware.AuditLog(eventsFromContext(c), c, "user_created", "User created", map[string]interface{}{
		"created_id": user.ID,
		"has_email":  user.Email != nil,
	})

	builder.SuccessCreated(userResponse(user))
}

// GetUser handles GET /api/users/:id requests.
//
// @Summary      Get user by ID
// @Description  Returns the user with the given numeric identifier.
// @Tags         Users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} dto.SuccessResponse "User found"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid identifier"
// @Failure      404 {object} dto.ErrorResponse "Not found - no user with that identifier"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     BearerAuth
// @Router       /api/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	builder := NewResponseBuilder(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return
	}

	user, err := h.users.Find(c.Request.Context(), id)
	if err != nil {
		builder.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
		return
	}
	if user == nil {
		builder.Error(http.StatusNotFound, i18n.ErrKeyUserNotFound, nil)
		return
	}

	builder.SuccessOK(userResponse(user))
}

// ListUsers handles GET /api/users requests.
//
// With a name parameter the endpoint looks users up by name: exact match by
// default, canonical (trimmed, lowercased) match with match=loose. Without
// one it returns a page of users in insertion order.
//
// @Summary      List or look up users
// @Description  Without parameters returns a page of users in insertion order. With name= returns users matching that name exactly; add match=loose for case- and whitespace-insensitive matching.
// @Tags         Users
// @Produce      json
// @Param        limit query int false "Page size (default 50)"
// @Param        offset query int false "Users to skip"
// @Param        name query string false "Name to look up"
// @Param        match query string false "Set to loose for canonical name matching"
// @Success      200 {object} dto.SuccessResponse "Page of users"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid parameters"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     BearerAuth
// @Router       /api/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	builder := NewResponseBuilder(c)

	var req dto.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return
	}

	if err := req.Validate(); err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return
	}

	if req.Name != "" {
		h.lookupUsers(c, builder, req)
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}

	users, err := h.users.List(c.Request.Context(), limit, req.Offset)
	if err != nil {
		builder.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
		return
	}

	total := h.getUserCount(c.Request.Context())
	builder.SuccessOK(userListResponse(users, total))
}

// lookupUsers resolves the name-filtered variant of ListUsers.
func (h *Handler) lookupUsers(c *gin.Context, builder *ResponseBuilder, req dto.ListUsersRequest) {
	var (
		users []*model.User
		err   error
	)

	if req.Match == "loose" {
		users, err = h.users.SearchByName(c.Request.Context(), req.Name)
	} else {
		var user *model.User
		user, err = h.users.FindByName(c.Request.Context(), req.Name)
		if user != nil {
			users = []*model.User{user}
		}
	}
	if err != nil {
		builder.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
		return
	}

	builder.SuccessOK(userListResponse(users, int64(len(users))))
}

// UpdateEmail handles PUT /api/users/:id/email requests.
//
// @Summary      Update user email
// @Description  Sets or replaces the user's email address and returns the updated user.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        id path int true "User ID"
// @Param        request body dto.UpdateEmailRequest true "New email address"
// @Success      200 {object} dto.SuccessResponse "Updated user"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      404 {object} dto.ErrorResponse "Not found - no user with that identifier"
// @Failure      409 {object} dto.ErrorResponse "Conflict - email already registered"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     BearerAuth
// @Router       /api/users/{id}/email [put]
func (h *Handler) UpdateEmail(c *gin.Context) {
	builder := NewResponseBuilder(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return
	}

	var req dto.UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	if err := req.Validate(); err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyValidationEmail, err)
		return
	}

	user, err := h.users.UpdateEmail(c.Request.Context(), id, req.Email)
	if err != nil {
		h.writeUserError(c, builder, err)
		return
	}

	middleware.AuditLog(eventsFromContext(c), c, "user_email_updated", "User email updated", map[string]interface{}{
		"updated_id": user.ID,
	})

	builder.SuccessOK(userResponse(user))
}

// DeleteUser handles DELETE /api/users/:id requests.
//
// @Summary      Delete user
// @Description  Soft deletes the user with the given identifier. The record is kept but marked inactive. Requires the admin role when authentication is enabled.
// @Tags         Users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} dto.SuccessResponse "User deleted"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid identifier"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid JWT token"
// @Failure      403 {object} dto.ErrorResponse "Forbidden - admin role required"
// @Failure      404 {object} dto.ErrorResponse "Not found - no user with that identifier"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     BearerAuth
// @Router       /api/users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	builder := NewResponseBuilder(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.writeUserError(c, builder, err)
		return
	}

	h.InvalidateCountCache()

	middleware.AuditLog(eventsFromContext(c), c, "user_deleted", "User deleted", map[string]interface{}{
		"deleted_id": id,
	})

	builder.SuccessOK(map[string]string{"message": "User deleted"})
}

// writeUserError maps user service errors onto HTTP responses.
func (h *Handler) writeUserError(c *gin.Context, builder *ResponseBuilder, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		builder.Error(http.StatusNotFound, i18n.ErrKeyUserNotFound, err)
	case errors.Is(err, service.ErrCapacityExceeded):
		builder.Error(http.StatusConflict, i18n.ErrKeyStoreFull, err)
	case errors.Is(err, repository.ErrDuplicateEmail):
		builder.Error(http.StatusConflict, i18n.ErrKeyEmailTaken, err)
	default:
		middleware.AuditLogError(eventsFromContext(c), c, "user_operation_failed", "User operation failed", err, nil)
		builder.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
	}
}
