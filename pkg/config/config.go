package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (URL 비어 있으면 저장 비활성)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	Finnhub      FinnhubConfig
	AlphaVantage AlphaVantageConfig
	Polygon      PolygonConfig
	Quotes       QuotesConfig
	Anthropic    AnthropicConfig
	Telegram     TelegramConfig
	Calendar     CalendarConfig

	// Daily scan
	Scan ScanConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
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

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// FinnhubConfig holds Finnhub API configuration (free tier: 60 calls/min)
type FinnhubConfig struct {
	APIKey            string
	BaseURL           string
	RequestsPerSecond int
}

// AlphaVantageConfig holds Alpha Vantage configuration (free tier: 25 calls/day)
type AlphaVantageConfig struct {
	APIKey  string
	BaseURL string
}

// PolygonConfig holds Polygon.io configuration (free tier: 5 calls/min)
type PolygonConfig struct {
	APIKey  string
	BaseURL string
}

// QuotesConfig controls the quote provider fallback chain
type QuotesConfig struct {
	ProviderPause time.Duration // 공급자 전환 시 대기
	CacheTTL      time.Duration
	Timeout       time.Duration
}

// AnthropicConfig holds the sentiment model configuration
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Enabled reports whether the sentiment source can be used
func (a AnthropicConfig) Enabled() bool {
	return a.APIKey != ""
}

// TelegramConfig holds the Telegram bot configuration
type TelegramConfig struct {
	BotToken string
	ChatID   string
	BaseURL  string
}

// Enabled reports whether notifications can be sent
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// CalendarConfig holds the earnings calendar sources
type CalendarConfig struct {
	YahooURL  string
	UserAgent string
	Watchlist []string // 스크래핑 실패 시 사용
}

// ScanConfig holds the daily scan settings
type ScanConfig struct {
	Schedule     string // cron (초 포함)
	Timezone     string
	StrategyPath string
	Concurrency  int
	Enabled      bool
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External APIs
		Finnhub: FinnhubConfig{
			APIKey:            getEnv("FINNHUB_API_KEY", ""),
			BaseURL:           getEnv("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
			RequestsPerSecond: getEnvAsInt("FINNHUB_RPS", 1),
		},

		AlphaVantage: AlphaVantageConfig{
			APIKey:  getEnv("ALPHAVANTAGE_API_KEY", ""),
			BaseURL: getEnv("ALPHAVANTAGE_BASE_URL", "https://www.alphavantage.co"),
		},

		Polygon: PolygonConfig{
			APIKey:  getEnv("POLYGON_API_KEY", ""),
			BaseURL: getEnv("POLYGON_BASE_URL", "https://api.polygon.io"),
		},

		Quotes: QuotesConfig{
			ProviderPause: getEnvAsDuration("QUOTES_PROVIDER_PAUSE", "1s"),
			CacheTTL:      getEnvAsDuration("QUOTES_CACHE_TTL", "1m"),
			Timeout:       getEnvAsDuration("QUOTES_TIMEOUT", "10s"),
		},

		Anthropic: AnthropicConfig{
			APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			Model:     getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
			MaxTokens: getEnvAsInt("ANTHROPIC_MAX_TOKENS", 512),
			Timeout:   getEnvAsDuration("ANTHROPIC_TIMEOUT", "30s"),
		},

		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
			BaseURL:  getEnv("TELEGRAM_BASE_URL", "https://api.telegram.org"),
		},

		Calendar: CalendarConfig{
			YahooURL:  getEnv("CALENDAR_YAHOO_URL", "https://finance.yahoo.com/calendar/earnings"),
			UserAgent: getEnv("CALENDAR_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"),
			Watchlist: getEnvAsList("CALENDAR_WATCHLIST", "PG,UNH,BA,MRK,SPOT"),
		},

		Scan: ScanConfig{
			Schedule:     getEnv("SCAN_SCHEDULE", "0 45 9 * * MON-FRI"),
			Timezone:     getEnv("SCAN_TIMEZONE", "America/New_York"),
			StrategyPath: getEnv("STRATEGY_PATH", ""),
			Concurrency:  getEnvAsInt("SCAN_CONCURRENCY", 4),
			Enabled:      getEnvAsBool("SCAN_ENABLED", true),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if _, err := time.LoadLocation(c.Scan.Timezone); err != nil {
		return fmt.Errorf("SCAN_TIMEZONE invalid: %w", err)
	}

	if c.Scan.Concurrency < 1 {
		return fmt.Errorf("SCAN_CONCURRENCY must be >= 1")
	}

	return nil
}

// Location returns the scan time zone (validated in Load)
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scan.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
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
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string, defaultValue string) []string {
	valueStr := getEnv(key, defaultValue)

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToUpper(part))
		}
	}
	return out
}
