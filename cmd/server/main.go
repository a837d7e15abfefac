// Package main is the entry point for the PDF Scout API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-scout/internal/config"
	"github.com/Shimizu-Technology/pdf-scout/internal/handlers"
	"github.com/Shimizu-Technology/pdf-scout/internal/logger"
	"github.com/Shimizu-Technology/pdf-scout/internal/router"
	"github.com/Shimizu-Technology/pdf-scout/internal/services/archive"
	"github.com/Shimizu-Technology/pdf-scout/internal/services/pdf"
	"github.com/Shimizu-Technology/pdf-scout/internal/services/summary"
	"github.com/Shimizu-Technology/pdf-scout/internal/services/textcache"
	"github.com/Shimizu-Technology/pdf-scout/internal/services/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	log := logger.New("pdf-scout", cfg.LogLevel)
	log.Info("PDF Scout API starting", "version", Version, "port", cfg.Port, "gin_mode", cfg.GinMode)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Step 2: Create Services
	cache := textcache.New(cfg.CacheCapacity, cfg.CacheTTL)
	defer cache.Clear()

	storage, err := upload.NewStorage(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("upload storage: %w", err)
	}
	uploads := upload.NewService(storage, cache, pdf.NewExtractor(), log.With("component", "upload"))

	search := archive.NewClient(cfg.ArchiveBaseURL, cfg.SearchTimeout, cfg.SearchConcurrency, log.With("component", "archive"))

	var summaries handlers.Summarizer
	provider, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		// Uploads and search still work; /summary answers 503.
		log.Error("summary provider unavailable", "provider", cfg.SummaryProvider, "err", err)
	} else {
		defer closeProvider()
		summaries = summary.New(provider, cache, summary.Options{
			Stream:  cfg.SummaryStream,
			Timeout: cfg.SummaryTimeout,
		}, log.With("component", "summary"))
		log.Info("summary provider ready", "provider", provider.Name(), "stream", cfg.SummaryStream)
	}
	if cfg.SummaryProvider == config.ProviderGemini && cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set; /summary will answer 503")
	}

	// Step 3: Setup HTTP Router
	h := handlers.NewHandler(uploads, search, summaries, cache, handlers.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		Version:        Version,
	}, log)
	r := router.Setup(h, cfg.AllowedOrigins, log.With("component", "http"))

	// Step 4: Start the HTTP Server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute, // large uploads
		WriteTimeout:      writeTimeout(cfg.SummaryTimeout),
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "health", fmt.Sprintf("http://localhost:%s/health", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Step 5: Graceful Shutdown
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced to shutdown", "err", err)
	}
	return nil
}

// writeTimeout leaves room for summaries and their streams, which run up to
// SUMMARY_TIMEOUT. A zero summary timeout means no write deadline either.
func writeTimeout(summaryTimeout time.Duration) time.Duration {
	if summaryTimeout <= 0 {
		return 0
	}
	return summaryTimeout + 30*time.Second
}

// newProvider builds the configured summary provider and its cleanup.
func newProvider(ctx context.Context, cfg *config.Config) (summary.Provider, func(), error) {
	switch cfg.SummaryProvider {
	case config.ProviderVertex:
		p, err := summary.NewVertexProvider(ctx, cfg.VertexProjectID, cfg.VertexRegion, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	default:
		return summary.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL), func() {}, nil
	}
}
