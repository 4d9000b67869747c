package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-level configuration for the screener.
// Rule thresholds live in the rules config file, not here; this struct
// covers infrastructure and run parameters only.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Upstox API
	Upstox UpstoxConfig

	// Screener run parameters
	Screener ScreenerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// UpstoxConfig holds Upstox API configuration.
// AccessToken must be obtained out of band (daily OAuth login) and supplied
// via environment; the screener never performs the token exchange itself.
type UpstoxConfig struct {
	BaseURL     string
	APIVersion  string
	AccessToken string
}

// ScreenerConfig holds run parameters for the screening pipeline
type ScreenerConfig struct {
	RulesFile     string        // path to the YAML rule configuration
	Workers       int           // bounded parallelism for instrument fetches
	PacingDelay   time.Duration // per-worker delay between consecutive fetches
	FetchTimeout  time.Duration // timeout for a single fetch attempt
	DateRangeDays int           // calendar days of candles to request
	BarCacheTTL   time.Duration // Redis bar-series cache TTL
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8086"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Upstox: UpstoxConfig{
			BaseURL:     getEnv("UPSTOX_BASE_URL", "https://api.upstox.com"),
			APIVersion:  getEnv("UPSTOX_API_VERSION", "v2"),
			AccessToken: getEnv("UPSTOX_ACCESS_TOKEN", ""),
		},

		Screener: ScreenerConfig{
			RulesFile:     getEnv("SCREENER_RULES_FILE", "config/screener.yaml"),
			Workers:       getEnvAsInt("SCREENER_WORKERS", 2),
			PacingDelay:   getEnvAsDuration("SCREENER_PACING_DELAY", "300ms"),
			FetchTimeout:  getEnvAsDuration("SCREENER_FETCH_TIMEOUT", "12s"),
			DateRangeDays: getEnvAsInt("SCREENER_DATE_RANGE_DAYS", 120),
			BarCacheTTL:   getEnvAsDuration("SCREENER_BAR_CACHE_TTL", "1h"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks required configuration values
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Screener.Workers < 1 {
		return fmt.Errorf("SCREENER_WORKERS must be at least 1")
	}

	if c.Screener.DateRangeDays < 1 {
		return fmt.Errorf("SCREENER_DATE_RANGE_DAYS must be at least 1")
	}

	if c.Screener.FetchTimeout <= 0 {
		return fmt.Errorf("SCREENER_FETCH_TIMEOUT must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
