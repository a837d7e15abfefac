// cors.go configures Cross-Origin Resource Sharing (CORS).
//
// CORS is needed because the browser frontend is served from a different
// origin than this API. Without CORS headers, browsers block the frontend
// from calling /upload, /api and /summary.
package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns configured CORS middleware. An origin list containing "*"
// allows every origin.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader},
		MaxAge:        12 * time.Hour, // Cache preflight responses
	}

	// gin-contrib/cors rejects a wildcard combined with credentials, so the
	// wildcard case drops credentials.
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
		cfg.AllowCredentials = true
	}

	return cors.New(cfg)
}
