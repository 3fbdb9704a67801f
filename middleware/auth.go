package middleware

import (
	"net/http"
	"strings"

	"tomato-api/auth"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "userID"
	emailKey  = "email"
)

// AuthRequired validates the bearer JWT and injects the caller into the context
func AuthRequired(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header required (Bearer <token>)"})
			return
		}
		claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// GetUserID extracts the caller's user ID, empty when the route is unauthenticated
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// GetEmail extracts the caller's email
func GetEmail(c *gin.Context) string {
	return c.GetString(emailKey)
}
