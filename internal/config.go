package internal

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string // "development" or "production"
	Port        int
	LogLevel    string
	BaseURL     string
	DatabaseURL string

	// Session store. RedisURL is optional; without it sessions live in
	// process memory only.
	RedisURL             string
	SessionSecret        string // Required, at least 32 bytes
	SessionSweepInterval time.Duration

	// API authentication
	AdminAPIToken    string
	SuperAdminEmails []string // Emails with platform-wide admin rights

	// OIDC provider for dashboard login
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string // Empty for public clients (PKCE only)
	OIDCRedirectURL  string

	// Object storage for world preview images (S3-compatible).
	// In development an empty endpoint selects the in-memory store.
	StorageEndpoint  string
	StorageRegion    string
	StorageBucket    string
	StorageAccessKey string
	StorageSecretKey string
	StoragePublicURL string // Optional custom domain URL

	// Map-storage service for WAM synchronization. Optional; without a URL
	// sync jobs become no-ops.
	MapStorageURL   string
	MapStorageToken string

	// Discord webhook for access notifications. Optional platform-wide
	// default; universes can carry their own.
	DiscordWebhookURL string

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUser string
	MetricsPass string

	// Origins allowed to embed the dashboard in an iframe (CSP
	// frame-ancestors)
	EmbedAllowedOrigins []string

	// Path prefix the session gate guards
	AdminPathPrefix string

	// Worker Configuration
	WorkerEnabled      bool
	WorkerConcurrency  int
	WorkerPollInterval time.Duration
	WorkerJobTimeout   time.Duration
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnvInt("PORT", 8080),
		LogLevel:    getEnv("LOG_LEVEL", "debug"),

		// Base URL defaults to localhost for development
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		RedisURL: getEnv("REDIS_URL", ""),

		// Zero lets the store apply its own sweep default
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 0),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", ""),

		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", ""),
		StorageRegion:    getEnv("STORAGE_REGION", "auto"),
		StorageBucket:    getEnv("STORAGE_BUCKET", ""),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey: getEnv("STORAGE_SECRET_KEY", ""),
		StoragePublicURL: getEnv("STORAGE_PUBLIC_URL", ""),

		MapStorageURL:   getEnv("MAP_STORAGE_URL", ""),
		MapStorageToken: getEnv("MAP_STORAGE_TOKEN", ""),

		DiscordWebhookURL: getEnv("DISCORD_WEBHOOK_URL", ""),

		// Metrics authentication
		MetricsUser: getEnv("METRICS_USER", ""),
		MetricsPass: getEnv("METRICS_PASS", ""),

		AdminPathPrefix: getEnv("ADMIN_PATH_PREFIX", "/admin"),

		// Worker defaults
		WorkerEnabled:      getEnvBool("WORKER_ENABLED", true),
		WorkerConcurrency:  getEnvInt("WORKER_CONCURRENCY", 2),
		WorkerPollInterval: getEnvDuration("WORKER_POLL_INTERVAL", 5*time.Second),
		WorkerJobTimeout:   getEnvDuration("WORKER_JOB_TIMEOUT", 5*time.Minute),
	}

	cfg.SuperAdminEmails = splitList(getEnv("SUPER_ADMIN_EMAILS", ""), strings.ToLower)
	cfg.EmbedAllowedOrigins = splitList(getEnv("EMBED_ALLOWED_ORIGINS", ""), nil)

	if cfg.Environment != "development" && cfg.Environment != "production" {
		return nil, fmt.Errorf("ENVIRONMENT must be either 'development' or 'production', got: %s", cfg.Environment)
	}

	// Required
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET is required and must be at least 32 bytes")
	}
	cfg.AdminAPIToken = os.Getenv("ADMIN_API_TOKEN")
	if cfg.AdminAPIToken == "" {
		return nil, fmt.Errorf("ADMIN_API_TOKEN is required")
	}
	if cfg.OIDCIssuer == "" {
		return nil, fmt.Errorf("OIDC_ISSUER is required")
	}
	if cfg.OIDCClientID == "" {
		return nil, fmt.Errorf("OIDC_CLIENT_ID is required")
	}
	if cfg.OIDCRedirectURL == "" {
		return nil, fmt.Errorf("OIDC_REDIRECT_URL is required")
	}

	// Validate storage configuration. Development may run without object
	// storage; production may not.
	if cfg.StorageEndpoint != "" {
		if cfg.StorageBucket == "" {
			return nil, fmt.Errorf("STORAGE_BUCKET is required when STORAGE_ENDPOINT is set")
		}
		if cfg.StorageAccessKey == "" || cfg.StorageSecretKey == "" {
			return nil, fmt.Errorf("STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required when STORAGE_ENDPOINT is set")
		}
	} else if cfg.Environment == "production" {
		return nil, fmt.Errorf("STORAGE_ENDPOINT is required in production")
	}

	return cfg, nil
}

// IsProduction returns true when the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsSecure returns true when the deployment serves HTTPS, which controls
// cookie attributes and HSTS.
func (c *Config) IsSecure() bool {
	return strings.HasPrefix(c.BaseURL, "https://")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// splitList parses a comma-separated environment value, trimming entries and
// dropping empties. transform, when non-nil, is applied to each entry.
func splitList(value string, transform func(string) string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if transform != nil {
			item = transform(item)
		}
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
