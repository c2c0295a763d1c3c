// Package middleware provides audit logging utilities.
package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/idgrid/user-service/internal/domain/model"
	"github.com/idgrid/user-service/internal/service"
)

// AuditLog records a user action for audit purposes.
// This should be used for critical actions like login, logout, data modifications, etc.
func AuditLog(events service.EventService, c *gin.Context, action string, message string, fields map[string]interface{}) {
	if events == nil {
		return
	}

	event := newAuditEvent(c, action, message, fields)
	event.Level = "info"

	// Store asynchronously to avoid blocking
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = events.Record(ctx, event)
	}()
}

// AuditLogError records a failed user action for audit purposes.
func AuditLogError(events service.EventService, c *gin.Context, action string, message string, err error, fields map[string]interface{}) {
	if events == nil {
		return
	}

	event := newAuditEvent(c, action, message, fields)
	event.Level = "error"
	if err != nil {
		event.Error = err.Error()
	}

	// Store asynchronously to avoid blocking
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = events.Record(ctx, event)
	}()
}

// newAuditEvent builds an event from the request context, picking up the
// authenticated user when the JWT middleware has run.
func newAuditEvent(c *gin.Context, action, message string, fields map[string]interface{}) *model.Event {
	event := &model.Event{
		Timestamp: time.Now(),
		Message:   message,
		Action:    action,
		RequestID: GetRequestID(c),
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Fields:    fields,
	}

	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(uint64); ok {
			event.UserID = id
		}
	}
	if userEmail, exists := c.Get("user_email"); exists {
		if email, ok := userEmail.(string); ok {
			event.UserEmail = email
		}
	}

	return event
}
