package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/idgrid/user-service/internal/domain/dto"
	"github.com/idgrid/user-service/internal/i18n"
)

// TimeoutConfig bounds how long a request may run.
type TimeoutConfig struct {
	// Timeout is the handler deadline.
	Timeout time.Duration
	// ErrorMessage is the fallback when no translation is available.
	ErrorMessage string
}

// DefaultTimeoutConfig allows 30 seconds per request.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Timeout:      30 * time.Second,
		ErrorMessage: "Request timeout",
	}
}

// Timeout runs the rest of the chain under a deadline. A handler that
// overruns is answered with a 504, provided it has not started writing.
// The deadline also reaches the handler through the request context.
func Timeout(cfg TimeoutConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.Timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		var mu sync.Mutex
		var handlerDone bool

		finished := make(chan struct{})
		go func() {
			defer func() {
				recover() //nolint:errcheck
				close(finished)
			}()
			c.Next()
			mu.Lock()
			handlerDone = true
			mu.Unlock()
		}()

		select {
		case <-finished:
		case <-ctx.Done():
			mu.Lock()
			defer mu.Unlock()
			if handlerDone || c.Writer.Written() {
				return
			}
			replyTimeout(c, cfg)
		}
	}
}

// replyTimeout writes the 504 envelope in the caller's locale.
func replyTimeout(c *gin.Context, cfg TimeoutConfig) {
	message := cfg.ErrorMessage
	if tr := i18n.GetTranslator(); tr != nil {
		message = tr.Translate(i18n.ErrKeyTimeout, i18n.GetLocale(c))
	}
	c.AbortWithStatusJSON(http.StatusGatewayTimeout, dto.NewError(dto.ErrCodeTimeout, message).WithRequestID(GetRequestID(c)))
}

// TimeoutWithDuration is Timeout with only the deadline overridden.
func TimeoutWithDuration(timeout time.Duration) gin.HandlerFunc {
	cfg := DefaultTimeoutConfig()
	cfg.Timeout = timeout
	return Timeout(cfg)
}
