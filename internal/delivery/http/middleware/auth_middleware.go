package middleware

import (
	"net/http"
	"strings"

	"cv-screening-backend/internal/delivery/http/response"
	"cv-screening-backend/internal/domain"
	"cv-screening-backend/pkg/apperror"
	"cv-screening-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// AuthCookieName carries the admin token for browser sessions.
const AuthCookieName = "auth_token"

// TokenFromRequest reads the bearer token from the Authorization header,
// falling back to the auth cookie.
func TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil {
		return cookie
	}
	return ""
}

// AdminAuth admits requests carrying a valid admin token.
func AdminAuth(authUC domain.AuthUsecase, audit *security.SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			audit.LogUnauthorized(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"), getRequestID(c), "missing_token")
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		claims, err := authUC.Verify(token)
		if err != nil {
			appErr := apperror.FromDomain(err)
			audit.LogUnauthorized(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"), getRequestID(c), appErr.Message)
			response.Error(c, http.StatusUnauthorized, appErr.Message, nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyAdminEmail), claims.Email)
		c.Set(string(domain.KeyTokenExp), claims.ExpiresAt)
		c.Next()
	}
}
