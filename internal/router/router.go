// Package router sets up all HTTP routes for the API.
package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-scout/internal/handlers"
	"github.com/Shimizu-Technology/pdf-scout/internal/middleware"
)

// Setup creates and configures the Gin router with all routes.
func Setup(h *handlers.Handler, allowedOrigins []string, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(allowedOrigins))

	r.GET("/health", h.HealthCheck)

	r.POST("/upload", h.Upload)
	r.POST("/api", h.SearchPDFs)

	r.GET("/summary", h.Summary)
	r.GET("/summary/stream", h.SummaryStream)

	return r
}
