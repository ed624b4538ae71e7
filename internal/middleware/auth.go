package middleware

import (
	"net/http"
	"strings"

	"scholarly/config"
	"scholarly/internal/auth"
	"scholarly/internal/domain"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// AuthRequired validates the bearer JWT and stores the caller session in
// the request context.
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(sessionKey, claims.Session())
		c.Next()
	}
}

// AdminRequired checks that the authenticated caller has the ADMIN role.
// Must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetSession(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// GetSession returns the caller session set by AuthRequired. The zero
// session is returned on unauthenticated requests.
func GetSession(c *gin.Context) domain.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return domain.Session{}
	}
	return v.(domain.Session)
}
