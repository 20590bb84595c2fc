package config

import (
	"os"
	"time"
)

// Server captures process level configuration for the admin directory server.
type Server struct {
	Addr             string
	Environment      string
	JWTSigningKey    string
	TokenTTL         time.Duration
	DirectoryLatency time.Duration
	CleanupInterval  time.Duration
}

// Defaults. TokenTTL covers the longest credential retention tier so the
// signed token never outlives a durable "remember me" credential check.
var (
	TokenTTL        = 7 * 24 * time.Hour
	CleanupInterval = 5 * time.Minute
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            ":8080",
		Environment:     "dev",
		TokenTTL:        TokenTTL,
		CleanupInterval: CleanupInterval,
	}

	if addr := os.Getenv("AEGIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if env := os.Getenv("AEGIS_ENV"); env != "" {
		cfg.Environment = env
	}

	cfg.JWTSigningKey = os.Getenv("JWT_SIGNING_KEY")
	if cfg.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	cfg.TokenTTL = durationFromEnv("TOKEN_TTL", cfg.TokenTTL)
	cfg.DirectoryLatency = durationFromEnv("DIRECTORY_LATENCY", 0)
	cfg.CleanupInterval = durationFromEnv("CLEANUP_INTERVAL", cfg.CleanupInterval)

	return cfg
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d
	}
	return fallback
}
