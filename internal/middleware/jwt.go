package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/idgrid/user-service/internal/domain/dto"
	"github.com/idgrid/user-service/internal/i18n"
	"github.com/idgrid/user-service/internal/service"
)

// abortTranslated ends the request with the given status and the
// translation of messageKey in the caller's locale, tagged with the
// request id.
func abortTranslated(c *gin.Context, status int, code, messageKey string) {
	msg := i18n.GetTranslator().Translate(messageKey, i18n.GetLocale(c))
	c.AbortWithStatusJSON(status, dto.NewError(code, msg).WithRequestID(GetRequestID(c)))
}

// bearerToken extracts the token from an Authorization header. A non-empty
// errKey names the complaint to send back.
func bearerToken(header string) (token, errKey string) {
	if header == "" {
		return "", i18n.ErrKeyTokenRequired
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", i18n.ErrKeyInvalidToken
	}
	token = strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return "", i18n.ErrKeyTokenRequired
	}
	return token, ""
}

// JWTAuth validates the bearer token on each request and stores the
// caller's identity on the context for downstream handlers.
func JWTAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, errKey := bearerToken(c.GetHeader("Authorization"))
		if errKey != "" {
			abortTranslated(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, errKey)
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			abortTranslated(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, i18n.ErrKeyInvalidToken)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_name", claims.Name)
		c.Set("user_role", claims.Role)
		c.Set("user_claims", claims)

		c.Next()
	}
}
