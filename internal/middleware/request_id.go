// Package middleware provides the HTTP middleware stack for the user service.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header that carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// ContextKey is the type for context keys so they cannot collide with
// keys set by other packages.
type ContextKey string

// RequestIDKey is the context key under which the request id is stored.
const RequestIDKey ContextKey = "request_id"

// RequestID tags every request with an id for log correlation. An id
// supplied by the client is kept; otherwise a fresh UUID is generated.
// The id is echoed back in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(string(RequestIDKey), requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID returns the request id set by RequestID, or "" when the
// middleware has not run.
func GetRequestID(c *gin.Context) string {
	v, _ := c.Get(string(RequestIDKey))
	id, _ := v.(string)
	return id
}
