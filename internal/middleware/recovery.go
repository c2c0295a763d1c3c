package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idgrid/user-service/internal/domain/dto"
	"github.com/idgrid/user-service/internal/logger"
)

// Recovery converts handler panics into a 500 response so a single bad
// request cannot take the process down. The panic value is logged with
// the request id.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			log := logger.Logger()
			log.Error().
				Str("request_id", GetRequestID(c)).
				Interface("panic", r).
				Msg("PANIC recovered")

			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   dto.ErrCodeInternal,
				Message: "An unexpected error occurred",
			})
		}()
		c.Next()
	}
}
