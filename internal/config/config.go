// Package config handles application configuration.
//
// Go Pattern: Configuration via environment variables with sensible defaults.
// A struct holds the values and Load fills it in. A .env file in the
// working directory is read first when present, so local development does
// not need exported variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Summary providers.
const (
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port     string
	GinMode  string // "debug", "release", or "test"
	LogLevel string

	// Uploads
	UploadDir      string // Root for per-upload storage slots
	MaxUploadBytes int64

	// CORS
	AllowedOrigins []string

	// Text cache
	CacheTTL      time.Duration // 0 keeps entries for the process lifetime
	CacheCapacity int

	// Archive search
	ArchiveBaseURL    string
	SearchTimeout     time.Duration
	SearchConcurrency int // Parallel metadata lookups per search

	// Summaries
	SummaryProvider string // "gemini" or "vertex"
	SummaryStream   bool   // Consume the provider's streamed response
	SummaryTimeout  time.Duration

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	VertexProjectID string
	VertexRegion    string
}

// Load reads configuration from the environment, after merging in a .env
// file if one exists. Variables already set in the environment win.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 50<<20), // 50MB

		// CORS: in production, set this to your frontend URL(s)
		AllowedOrigins: splitAndTrim(getEnv("CORS_ORIGIN", "*")),

		CacheTTL:      getEnvDuration("CACHE_TTL", 0),
		CacheCapacity: getEnvInt("CACHE_CAPACITY", 10000),

		ArchiveBaseURL:    strings.TrimRight(getEnv("ARCHIVE_BASE_URL", "https://archive.org"), "/"),
		SearchTimeout:     getEnvDuration("SEARCH_TIMEOUT", 20*time.Second),
		SearchConcurrency: getEnvInt("SEARCH_CONCURRENCY", 4),

		SummaryProvider: strings.ToLower(getEnv("SUMMARY_PROVIDER", ProviderGemini)),
		SummaryStream:   getEnvBool("SUMMARY_STREAM", false),
		SummaryTimeout:  getEnvDuration("SUMMARY_TIMEOUT", 120*time.Second), // LLMs can be slow

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
		GeminiBaseURL: strings.TrimRight(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"), "/"),

		VertexProjectID: getEnv("VERTEX_PROJECT_ID", ""),
		VertexRegion:    getEnv("VERTEX_REGION", "us-central1"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("CACHE_CAPACITY must be positive")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL cannot be negative")
	}
	if c.SearchConcurrency <= 0 {
		return fmt.Errorf("SEARCH_CONCURRENCY must be positive")
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGIN must contain at least one origin")
	}

	switch c.SummaryProvider {
	case ProviderGemini:
		// In release mode we refuse to start without a key instead of
		// failing every summary request later.
		if c.GinMode == "release" && c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set in production")
		}
	case ProviderVertex:
		if c.VertexProjectID == "" {
			return fmt.Errorf("VERTEX_PROJECT_ID must be set when SUMMARY_PROVIDER=vertex")
		}
	default:
		return fmt.Errorf("unknown SUMMARY_PROVIDER %q (want %q or %q)", c.SummaryProvider, ProviderGemini, ProviderVertex)
	}
	return nil
}

// getEnv reads an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

// getEnvInt reads an integer environment variable with a fallback.
func getEnvInt(key string, fallback int) int {
	val, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return val
}

func getEnvInt64(key string, fallback int64) int64 {
	val, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil {
		return fallback
	}
	return val
}

func getEnvBool(key string, fallback bool) bool {
	val, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return val
}

// getEnvDuration accepts Go durations ("90s", "2h"). A bare "0" disables.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
