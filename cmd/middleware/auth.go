package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAuth trusts the identity established by the edge gateway, which
// terminates authentication and forwards the subject in X-User-Id. Requests
// without a subject are rejected.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-Id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}
