package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ayu214390/attendance-app/internal/auth"
)

const (
	contextAccount = "account"
	contextRole    = "role"
)

// AuthRequired validates the bearer token on owner routes.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization"})
			return
		}

		claims, err := auth.ParseToken(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(contextAccount, claims.Subject)
		c.Set(contextRole, claims.Role)
		c.Next()
	}
}
