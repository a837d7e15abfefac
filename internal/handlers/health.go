// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides:
// - Request data (params, query, body, headers)
// - Response methods (JSON, String, Status)
// - Middleware data (c.Get/c.Set)
//
// We group related handlers into a struct (Handler) that holds shared
// dependencies.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-scout/internal/models"
	"github.com/Shimizu-Technology/pdf-scout/internal/services/archive"
	"github.com/Shimizu-Technology/pdf-scout/internal/services/upload"
)

// Uploader processes one uploaded document.
type Uploader interface {
	Process(ctx context.Context, doc upload.Document) (*upload.Result, error)
}

// Searcher finds downloadable PDFs for a query.
type Searcher interface {
	SearchPDFs(ctx context.Context, query string) ([]archive.Result, error)
}

// Summarizer generates summaries of cached text.
type Summarizer interface {
	Summarize(ctx context.Context, id string) (string, error)
	StreamSummary(ctx context.Context, id string, onDelta func(string) error) error
	ProviderName() string
}

// CacheStats reports the size of the text cache.
type CacheStats interface {
	Len() int
}

// Options holds handler settings that are not services.
type Options struct {
	MaxUploadBytes int64
	Version        string
}

// Handler holds shared dependencies for all HTTP handlers.
// Go Pattern: Dependency injection via struct fields. Instead of global
// variables or service locators, we pass dependencies explicitly.
// This makes testing easy: just create a Handler with mock dependencies.
type Handler struct {
	Uploads   Uploader
	Search    Searcher
	Summaries Summarizer // nil when no provider could be set up
	Cache     CacheStats

	opts Options
	log  *slog.Logger
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(uploads Uploader, search Searcher, summaries Summarizer, cache CacheStats, opts Options, log *slog.Logger) *Handler {
	return &Handler{
		Uploads:   uploads,
		Search:    search,
		Summaries: summaries,
		Cache:     cache,
		opts:      opts,
		log:       log,
	}
}

// HealthCheck returns the API health status.
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	provider := "none"
	if h.Summaries != nil {
		provider = h.Summaries.ProviderName()
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:        "ok",
		Version:       h.opts.Version,
		CachedEntries: h.Cache.Len(),
		Provider:      provider,
	})
}
