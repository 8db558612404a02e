// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/aristath/prefill/internal/modules/session"
)

// Config holds application configuration
type Config struct {
	DataDir   string // Base directory for the prefill and audit databases (always absolute)
	LogLevel  string
	Port      int
	DevMode   bool
	RulesFile string // Optional YAML rules file layered over the built-in defaults

	RulesReloadSchedule string
	WALCheckSchedule    string

	MarketFeedURL string // Empty disables the WebSocket snapshot feed
	AuditEnabled  bool

	RateLimit float64 // Requests per second across the API, 0 disables limiting
	RateBurst int

	SessionOpen  string
	SessionClose string
	SessionTZ    string // IANA zone, empty keeps the fixed IST offset
	Session      session.Hours
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("PREFILL_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		Port:                getEnvAsInt("GO_PORT", 8001),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RulesFile:           getEnv("RULES_FILE", ""),
		RulesReloadSchedule: getEnv("RULES_RELOAD_SCHEDULE", "@every 1m"),
		WALCheckSchedule:    getEnv("WAL_CHECK_SCHEDULE", "0 */15 * * * *"),
		MarketFeedURL:       getEnv("MARKET_FEED_URL", ""),
		AuditEnabled:        getEnvAsBool("AUDIT_ENABLED", true),
		RateLimit:           getEnvAsFloat("PREFILL_RATE_LIMIT", 50),
		RateBurst:           getEnvAsInt("PREFILL_RATE_BURST", 100),
		SessionOpen:         getEnv("SESSION_OPEN", "09:15"),
		SessionClose:        getEnv("SESSION_CLOSE", "15:30"),
		SessionTZ:           getEnv("SESSION_TZ", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration and resolves the trading session
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid GO_PORT %d", c.Port)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("PREFILL_RATE_LIMIT must be >= 0, got %g", c.RateLimit)
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("PREFILL_RATE_BURST must be >= 1 when rate limiting is enabled, got %d", c.RateBurst)
	}

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"RULES_RELOAD_SCHEDULE": c.RulesReloadSchedule,
		"WAL_CHECK_SCHEDULE":    c.WALCheckSchedule,
	} {
		if spec == "" {
			continue
		}
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}

	hours, err := session.Parse(c.SessionOpen, c.SessionClose, c.SessionTZ)
	if err != nil {
		return fmt.Errorf("invalid trading session: %w", err)
	}
	c.Session = hours

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
