// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DotEnvFile is read before the environment when present.
const DotEnvFile = ".env"

// Config holds the application configuration.
type Config struct {
	Port          string
	AllowedOrigin string
	AWSRegion     string
	S3Bucket      string
	CloudfrontURL string

	CampaignAPIURL   string
	CampaignAPIToken string
	FileAPIBaseURL   string
	FileAPIToken     string

	RedisAddr     string
	RedisPassword string
	DedupTTL      time.Duration

	HTTPTimeout      time.Duration
	ActionRateLimit  int
	ActionRateWindow time.Duration

	LayoutConfigPath string
	LogLevel         string
}

// LoadConfig loads configuration from a .env file (if any) and environment
// variables, and validates the result.
func LoadConfig() (*Config, error) {
	if err := LoadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	dedupTTL, err := getEnvDuration("DEDUP_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	httpTimeout, err := getEnvDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	rateWindow, err := getEnvDuration("ACTION_RATE_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}
	rateLimit, err := getEnvInt("ACTION_RATE_LIMIT", 30)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		AllowedOrigin:    getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		AWSRegion:        getEnv("AWS_REGION", "ap-northeast-1"),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		CloudfrontURL:    getEnv("CLOUDFRONT_URL", ""),
		CampaignAPIURL:   getEnv("CAMPAIGN_API_URL", "http://localhost:3001/api"),
		CampaignAPIToken: getEnv("CAMPAIGN_API_TOKEN", ""),
		FileAPIBaseURL:   getEnv("FILE_API_BASE_URL", ""),
		FileAPIToken:     getEnv("FILE_API_TOKEN", ""),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		DedupTTL:         dedupTTL,
		HTTPTimeout:      httpTimeout,
		ActionRateLimit:  rateLimit,
		ActionRateWindow: rateWindow,
		LayoutConfigPath: getEnv("LAYOUT_CONFIG", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from filename without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(filename string) error {
	err := godotenv.Load(filename)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", filename, err)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.New("invalid port: must be a number")
	}

	if c.DedupTTL <= 0 {
		return errors.New("invalid DEDUP_TTL: must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("invalid HTTP_TIMEOUT: must be positive")
	}
	if c.ActionRateLimit <= 0 || c.ActionRateWindow <= 0 {
		return errors.New("invalid action rate limit: must be positive")
	}

	if err := validateURL("CAMPAIGN_API_URL", c.CampaignAPIURL); err != nil {
		return err
	}
	if c.FileAPIBaseURL != "" {
		if err := validateURL("FILE_API_BASE_URL", c.FileAPIBaseURL); err != nil {
			return err
		}
	}

	return nil
}

// S3Enabled reports whether gallery storage is configured.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// RedisEnabled reports whether the Redis dedup store should be used.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid %s: %q", name, raw)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
