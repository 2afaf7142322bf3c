package middleware

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultOrigins = []string{
	"http://localhost:3000", // Next.js storefront
	"http://localhost:4200", // Admin shell app
	"http://localhost:4302", // Products MFE
	"https://*.tesseract-hub.com",
}

// CORS returns the CORS middleware. CORS_ALLOWED_ORIGINS, a comma separated
// list, replaces the default origins.
func CORS() gin.HandlerFunc {
	config := cors.Config{
		AllowOrigins:     allowedOrigins(os.Getenv("CORS_ALLOWED_ORIGINS")),
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Tenant-ID", "X-Vendor-ID", "X-User-ID", "X-Requested-With", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	return cors.New(config)
}

func allowedOrigins(env string) []string {
	var origins []string
	for _, origin := range strings.Split(env, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return defaultOrigins
	}
	return origins
}
