package middleware

import (
	"github.com/gin-gonic/gin"
)

// DevUserID is the actor assigned to requests in development mode
const DevUserID = "00000000-0000-0000-0000-000000000001"

// DevelopmentAuthMiddleware stands in for IstioAuth when running locally.
// An X-User-ID header picks the acting user; otherwise DevUserID is used.
func DevelopmentAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			userID = c.GetHeader("X-User-ID")
		}
		if userID == "" {
			userID = DevUserID
		}

		// RBAC middleware checks staff_id first
		c.Set("userId", userID)
		c.Set("user_id", userID)
		c.Set("staff_id", userID)
		c.Next()
	}
}

// GetUserID returns the authenticated user, or "" on public routes
func GetUserID(c *gin.Context) string {
	if uid := c.GetString("user_id"); uid != "" {
		return uid
	}
	return c.GetString("userId")
}
