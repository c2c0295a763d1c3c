package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/idgrid/user-service/internal/domain/model"
	"github.com/idgrid/user-service/internal/logger"
	"github.com/idgrid/user-service/internal/service"
)

// RequestLogger emits one console log line per request and, when an event
// service is configured, persists a matching http_request audit event.
// Persistence goes through the async logger pool when one is installed and
// falls back to a per-request goroutine otherwise, so the response is
// never delayed by the event store.
func RequestLogger(events service.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := GetRequestID(c)

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)

		log := logger.Logger()
		line := log.WithLevel(statusLevel(status)).
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status_code", status).
			Int64("duration_ms", latency.Milliseconds()).
			Str("ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent())
		line.Msg("HTTP request")

		if events == nil {
			return
		}

		event := requestEvent(c, requestID, status, latency)
		if pool := GetAsyncLogger(); pool != nil {
			pool.Log(event)
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = events.Record(ctx, event)
		}()
	}
}

// requestEvent builds the audit record for one finished request,
// attaching the authenticated identity when the JWT middleware ran.
func requestEvent(c *gin.Context, requestID string, status int, latency time.Duration) *model.Event {
	event := &model.Event{
		Timestamp: time.Now(),
		Level:     getLogLevel(status),
		Message:   "HTTP request",
		Action:    "http_request",
		RequestID: requestID,
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	event.WithField("status_code", status).
		WithField("duration_ms", latency.Milliseconds())

	if id, ok := c.Get("user_id"); ok {
		if userID, ok := id.(uint64); ok {
			event.UserID = userID
		}
	}
	if email, ok := c.Get("user_email"); ok {
		if userEmail, ok := email.(string); ok {
			event.UserEmail = userEmail
		}
	}
	return event
}

// statusLevel maps a status code onto the console log level.
func statusLevel(statusCode int) zerolog.Level {
	switch {
	case statusCode >= 500:
		return zerolog.ErrorLevel
	case statusCode >= 400:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// getLogLevel names the persisted event level for a status code.
func getLogLevel(statusCode int) string {
	return statusLevel(statusCode).String()
}
