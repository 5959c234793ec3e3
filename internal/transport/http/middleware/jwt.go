package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codethium-server/internal/pkg/jwtutil"
	"codethium-server/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"

	// TokenCookieName is the browser transport; non-browser clients
	// send a bearer header instead.
	TokenCookieName = "token"

	bearerPrefix = "Bearer "
)

// AuthJWT gates protected routes. The bearer header takes precedence
// over the cookie. Any extraction or verification failure short-circuits
// to 401 before the handler runs.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "No token provided")
			c.Abort()
			return
		}

		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid token")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if strings.HasPrefix(authHeader, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	}
	if cookie, err := c.Cookie(TokenCookieName); err == nil && cookie != "" {
		return cookie
	}
	return ""
}

// UserID reads the authenticated principal set by AuthJWT.
func UserID(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	return userID, ok
}
