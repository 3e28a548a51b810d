package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nimbusdrive/utils"
)

// identityKey is where the verified caller email lives in the gin context.
const identityKey = "email"

// AuthMiddleware verifies the bearer token and stashes the caller's verified
// email in the request context. Handlers read it back with CurrentIdentity.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization token required")
			c.Abort()
			return
		}

		claims, err := utils.VerifyBearerToken(token, jwtSecret)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(identityKey, claims.Email)
		c.Set("name", claims.Name)

		c.Next()
	}
}

// CurrentIdentity returns the verified email of the request's caller. The
// second return is false when the request skipped AuthMiddleware.
func CurrentIdentity(c *gin.Context) (string, bool) {
	email := c.GetString(identityKey)
	return email, email != ""
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(authHeader[len(bearerPrefix):])
}
