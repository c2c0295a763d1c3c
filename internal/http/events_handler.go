package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idgrid/user-service/internal/domain/dto"
	"github.com/idgrid/user-service/internal/domain/model"
	"github.com/idgrid/user-service/internal/i18n"
	"github.com/idgrid/user-service/internal/service"
)

// defaultEventLimit caps unbounded audit event queries.
const defaultEventLimit = 100

// EventsHandler provides HTTP handlers for the audit event routes.
type EventsHandler struct {
	events service.EventService
}

// NewEventsHandler creates a new EventsHandler instance.
func NewEventsHandler(events service.EventService) *EventsHandler {
	return &EventsHandler{events: events}
}

// QueryEvents handles GET /api/admin/events requests.
//
// @Summary      Query audit events
// @Description  Returns recorded audit events, newest first. All filters are optional and combine with AND semantics.
// @Tags         Events
// @Produce      json
// @Param        Authorization header string false "Bearer token (required if auth enabled)"
// @Param        action query string false "Filter by action name"
// @Param        user_id query int false "Filter by acting user"
// @Param        request_id query string false "Filter by request identifier"
// @Param        level query string false "Filter by severity (info or error)"
// @Param        start query string false "Events at or after this RFC 3339 time"
// @Param        end query string false "Events at or before this RFC 3339 time"
// @Param        limit query int false "Page size (default 100)"
// @Param        offset query int false "Events to skip"
// @Success      200 {object} dto.SuccessResponse "Matching events"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid parameters"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid JWT token"
// @Failure      403 {object} dto.ErrorResponse "Forbidden - admin role required"
// @Failure      503 {object} dto.ErrorResponse "Service unavailable - no event store configured"
// @Security     BearerAuth
// @Router       /api/admin/events [get]
func (h *EventsHandler) QueryEvents(c *gin.Context) {
	builder := NewResponseBuilder(c)

	opts, ok := h.bindQueryOptions(c, builder)
	if !ok {
		return
	}

	events, err := h.events.Query(c.Request.Context(), opts)
	if err != nil {
		h.writeEventError(builder, err)
		return
	}

	builder.SuccessOK(map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

// CountEvents handles GET /api/admin/events/count requests.
//
// @Summary      Count audit events
// @Description  Returns the number of recorded audit events matching the given filters.
// @Tags         Events
// @Produce      json
// @Param        Authorization header string false "Bearer token (required if auth enabled)"
// @Param        action query string false "Filter by action name"
// @Param        user_id query int false "Filter by acting user"
// @Param        request_id query string false "Filter by request identifier"
// @Param        level query string false "Filter by severity (info or error)"
// @Param        start query string false "Events at or after this RFC 3339 time"
// @Param        end query string false "Events at or before this RFC 3339 time"
// @Success      200 {object} dto.SuccessResponse "Event count"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid parameters"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid JWT token"
// @Failure      403 {object} dto.ErrorResponse "Forbidden - admin role required"
// @Failure      503 {object} dto.ErrorResponse "Service unavailable - no event store configured"
// @Security     BearerAuth
// @Router       /api/admin/events/count [get]
func (h *EventsHandler) CountEvents(c *gin.Context) {
	builder := NewResponseBuilder(c)

	opts, ok := h.bindQueryOptions(c, builder)
	if !ok {
		return
	}

	count, err := h.events.Count(c.Request.Context(), opts)
	if err != nil {
		h.writeEventError(builder, err)
		return
	}

	builder.SuccessOK(map[string]interface{}{"count": count})
}

// bindQueryOptions binds and validates the shared event filter parameters.
// On failure it writes the error response and returns false.
func (h *EventsHandler) bindQueryOptions(c *gin.Context, builder *ResponseBuilder) (model.EventQueryOptions, bool) {
	var req dto.EventQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return model.EventQueryOptions{}, false
	}

	if err := req.Validate(); err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return model.EventQueryOptions{}, false
	}

	opts := model.EventQueryOptions{
		Action:    req.Action,
		UserID:    req.UserID,
		RequestID: req.RequestID,
		Level:     req.Level,
		Limit:     req.Limit,
		Skip:      req.Offset,
	}
	if opts.Limit == 0 {
		opts.Limit = defaultEventLimit
	}
	if !req.Start.IsZero() {
		start := req.Start
		opts.StartTime = &start
	}
	if !req.End.IsZero() {
		end := req.End
		opts.EndTime = &end
	}

	return opts, true
}

// writeEventError maps event service errors onto HTTP responses.
func (h *EventsHandler) writeEventError(builder *ResponseBuilder, err error) {
	if errors.Is(err, service.ErrRepositoryNotConfigured) {
		builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyInternalError, err)
		return
	}
	builder.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
}
