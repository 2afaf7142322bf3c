package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TenantMiddleware resolves the tenant of the request. A tenant_id already
// set by IstioAuth wins; otherwise X-Vendor-ID, then X-Tenant-ID are read.
// Requests without a tenant are rejected.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetString("tenant_id")
		if tenantID == "" {
			tenantID = c.GetHeader("X-Vendor-ID")
		}
		if tenantID == "" {
			tenantID = c.GetHeader("X-Tenant-ID")
		}

		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TENANT_REQUIRED",
					"message": "Tenant ID is required. Include X-Vendor-ID or X-Tenant-ID header.",
				},
			})
			return
		}

		c.Set("tenantId", tenantID)
		c.Set("tenant_id", tenantID)
		c.Next()
	}
}

// GetTenantID retrieves the tenant ID from gin context
func GetTenantID(c *gin.Context) string {
	if tid := c.GetString("tenant_id"); tid != "" {
		return tid
	}
	return c.GetString("tenantId")
}
