package internal

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env             string
	Port            int
	LogLevel        string
	DatabaseUrl     string
	ShutdownTimeout time.Duration

	// Usage ledger
	LedgerBackend string // "postgres", "redis", "sqlite" or "memory"
	RedisURL      string
	SQLitePath    string

	// AI Provider Configuration
	AIProvider       string // "anthropic", "gemini" or "mock"
	AnthropicAPIKey  string
	AnthropicModel   string
	GeminiAPIKey     string
	GeminiModel      string
	AIMaxAttempts    int
	AIRetryBaseDelay time.Duration
	AIRequestTimeout time.Duration
	AIMaxTokens      int

	// Raw output archive
	ArchiveProvider  string // "local" or "r2"
	LocalArchivePath string

	// R2 (production)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2Endpoint        string // Optional; derived from the account ID when empty

	// Burst control in front of /api/generate. 0 disables it.
	RateLimitPerMinute int
	RateLimitBurst     int

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:             getEnv("ENV", "development"),
		Port:            getEnvInt("PORT", 8080),
		LogLevel:        getEnv("LOG_LEVEL", "debug"),
		DatabaseUrl:     os.Getenv("DATABASE_URL"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		LedgerBackend: getEnv("LEDGER_BACKEND", "postgres"),
		RedisURL:      getEnv("REDIS_URL", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "./promptgate-usage.db"),

		AIProvider:       getEnv("AI_PROVIDER", "mock"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", ""),
		AIMaxAttempts:    getEnvInt("AI_MAX_ATTEMPTS", 3),
		AIRetryBaseDelay: getEnvDuration("AI_RETRY_BASE_DELAY", 1*time.Second),
		AIRequestTimeout: getEnvDuration("AI_REQUEST_TIMEOUT", 60*time.Second),
		AIMaxTokens:      getEnvInt("AI_MAX_TOKENS", 4096),

		ArchiveProvider:  getEnv("ARCHIVE_PROVIDER", "local"),
		LocalArchivePath: getEnv("LOCAL_ARCHIVE_PATH", "./archive"),

		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2Endpoint:        getEnv("R2_ENDPOINT", ""),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 10),

		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	// Required
	if cfg.DatabaseUrl == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.LedgerBackend {
	case "postgres", "memory":
	case "redis":
		if cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when LEDGER_BACKEND is 'redis'")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when LEDGER_BACKEND is 'sqlite'")
		}
	default:
		return fmt.Errorf("LEDGER_BACKEND must be one of 'postgres', 'redis', 'sqlite' or 'memory', got: %s", cfg.LedgerBackend)
	}

	switch cfg.AIProvider {
	case "mock":
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is 'anthropic'")
		}
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER is 'gemini'")
		}
	default:
		return fmt.Errorf("AI_PROVIDER must be one of 'anthropic', 'gemini' or 'mock', got: %s", cfg.AIProvider)
	}
	if cfg.AIMaxAttempts < 1 {
		return fmt.Errorf("AI_MAX_ATTEMPTS must be at least 1, got: %d", cfg.AIMaxAttempts)
	}

	switch cfg.ArchiveProvider {
	case "local":
	case "r2":
		if cfg.R2AccountID == "" && cfg.R2Endpoint == "" {
			return fmt.Errorf("R2_ACCOUNT_ID or R2_ENDPOINT is required when ARCHIVE_PROVIDER is 'r2'")
		}
		if cfg.R2AccessKeyID == "" {
			return fmt.Errorf("R2_ACCESS_KEY_ID is required when ARCHIVE_PROVIDER is 'r2'")
		}
		if cfg.R2SecretAccessKey == "" {
			return fmt.Errorf("R2_SECRET_ACCESS_KEY is required when ARCHIVE_PROVIDER is 'r2'")
		}
		if cfg.R2BucketName == "" {
			return fmt.Errorf("R2_BUCKET_NAME is required when ARCHIVE_PROVIDER is 'r2'")
		}
	default:
		return fmt.Errorf("ARCHIVE_PROVIDER must be either 'local' or 'r2', got: %s", cfg.ArchiveProvider)
	}

	if cfg.RateLimitPerMinute < 0 || cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must not be negative")
	}

	return nil
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
