package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mmuslimabdulj/pairchat/internal/domain"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port string

	// Storage
	DBPath string

	// Security
	AllowedOrigins []string
	SessionSecret  string
	SessionName    string
	SessionTTL     time.Duration

	// Rate Limiting
	RateLimitAPI rate.Limit
	RateLimitWS  rate.Limit

	// Logging
	LogLevel string
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Port:           "8080",
		DBPath:         "pairchat.db",
		AllowedOrigins: []string{"http://localhost:8080", "http://localhost:4200"},
		SessionSecret:  "",
		SessionName:    "pairchat-session",
		SessionTTL:     domain.SessionTTL,
		RateLimitAPI:   domain.DefaultRateLimitAPI,
		RateLimitWS:    domain.DefaultRateLimitWS,
		LogLevel:       "info", // Options: debug, info, warn, error, silent
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	cfg := DefaultConfig()

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	if path := os.Getenv("DB_PATH"); path != "" {
		cfg.DBPath = path
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = parseOrigins(origins)
	}

	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		cfg.SessionSecret = secret
	}

	if name := os.Getenv("SESSION_NAME"); name != "" {
		cfg.SessionName = name
	}

	if ttl := os.Getenv("SESSION_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			cfg.SessionTTL = time.Duration(hours) * time.Hour
		}
	}

	if rl := os.Getenv("RATE_LIMIT_API"); rl != "" {
		if val, err := strconv.Atoi(rl); err == nil && val > 0 {
			cfg.RateLimitAPI = rate.Limit(val)
		}
	}

	if rl := os.Getenv("RATE_LIMIT_WS"); rl != "" {
		if val, err := strconv.Atoi(rl); err == nil && val > 0 {
			cfg.RateLimitWS = rate.Limit(val)
		}
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	return cfg
}

// parseOrigins parses comma-separated origins
func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
