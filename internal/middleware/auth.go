package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idgrid/user-service/internal/domain/dto"
	"github.com/idgrid/user-service/internal/i18n"
)

const (
	// APIKeyHeader carries the API key on authenticated requests.
	APIKeyHeader = "X-API-Key"
	// APIKeyQuery is the fallback query parameter for clients that
	// cannot set headers.
	APIKeyQuery = "api_key"
)

// APIKeyAuth validates requests against the given key set, checking the
// header before the query parameter. An empty key set disables the check.
func APIKeyAuth(validKeys map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(validKeys) == 0 {
			c.Next()
			return
		}

		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			key = c.Query(APIKeyQuery)
		}

		switch {
		case key == "":
			abortTranslated(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, i18n.ErrKeyAPIKeyRequired)
		case !validKeys[key]:
			abortTranslated(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, i18n.ErrKeyInvalidAPIKey)
		default:
			c.Next()
		}
	}
}
