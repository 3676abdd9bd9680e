// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Server
	Env      string
	Port     string
	LogLevel string

	// Database
	DBDriver   string // "postgres" or "sqlite"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Auth
	JWTSecret        string
	JWTExpirationDur time.Duration
	PipelineAPIKey   string

	// Currency
	RatesAPIURL          string
	RateCacheTTL         time.Duration
	ThresholdCacheTTL    time.Duration
	CurrencyProfilesPath string
	RequestTimeout       time.Duration
	DefaultBaseCurrency  string

	// Text completion
	CompletionProvider  string // "anthropic", "gemini", "http" or "none"
	AnthropicAPIKey     string
	AnthropicModel      string
	GeminiAPIKey        string
	GeminiModel         string
	CompletionURL       string
	CompletionMaxTokens int64

	// Background work
	AnalyticsWorkers   int
	AnalyticsQueueSize int
	CycleSweepInterval time.Duration
}

var appConfig *Config

// Load reads a .env file when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", ""),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "budget"),
		DBPassword: getEnv("DB_PASSWORD", "budget"),
		DBName:     getEnv("DB_NAME", "budget"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "budget.db"),

		JWTSecret:      getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		PipelineAPIKey: os.Getenv("PIPELINE_API_KEY"),

		RatesAPIURL:          getEnv("RATES_API_URL", "https://open.er-api.com/v6/latest/USD"),
		CurrencyProfilesPath: os.Getenv("CURRENCY_PROFILES"),
		DefaultBaseCurrency:  strings.ToUpper(getEnv("DEFAULT_BASE_CURRENCY", "USD")),

		CompletionProvider: strings.ToLower(getEnv("COMPLETION_PROVIDER", "none")),
		AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:     getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		CompletionURL:      os.Getenv("COMPLETION_URL"),
	}

	var err error
	if cfg.JWTExpirationDur, err = parseDuration("JWT_EXPIRES_IN", "24h"); err != nil {
		return nil, err
	}
	if cfg.RateCacheTTL, err = parseDuration("RATE_CACHE_TTL", "720h"); err != nil {
		return nil, err
	}
	if cfg.ThresholdCacheTTL, err = parseDuration("THRESHOLD_CACHE_TTL", "720h"); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = parseDuration("REQUEST_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.CycleSweepInterval, err = parseDuration("CYCLE_SWEEP_INTERVAL", "1h"); err != nil {
		return nil, err
	}
	if cfg.AnalyticsWorkers, err = parseInt("ANALYTICS_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.AnalyticsQueueSize, err = parseInt("ANALYTICS_QUEUE_SIZE", 256); err != nil {
		return nil, err
	}
	maxTokens, err := parseInt("COMPLETION_MAX_TOKENS", 512)
	if err != nil {
		return nil, err
	}
	cfg.CompletionMaxTokens = int64(maxTokens)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	appConfig = cfg
	return cfg, nil
}

// Get returns the loaded configuration, loading it on first use.
func Get() *Config {
	if appConfig == nil {
		cfg, err := Load()
		if err != nil {
			panic(fmt.Sprintf("failed to load configuration: %v", err))
		}
		appConfig = cfg
	}
	return appConfig
}

// Set installs cfg as the process configuration. Tests use it to avoid
// reading the environment.
func Set(cfg *Config) {
	appConfig = cfg
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: must be postgres or sqlite", c.DBDriver)
	}
	switch c.CompletionProvider {
	case "anthropic", "gemini", "http", "none":
	default:
		return fmt.Errorf("invalid COMPLETION_PROVIDER %q: must be anthropic, gemini, http or none", c.CompletionProvider)
	}
	if c.CompletionProvider == "http" && c.CompletionURL == "" {
		return fmt.Errorf("COMPLETION_URL is required when COMPLETION_PROVIDER=http")
	}
	if c.AnalyticsWorkers <= 0 {
		return fmt.Errorf("ANALYTICS_WORKERS must be positive, got %d", c.AnalyticsWorkers)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(key, def string) (time.Duration, error) {
	s := getEnv(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}
