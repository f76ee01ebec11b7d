package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultGatewayTimeout outlasts the gateway's default 15s provider timeout
// plus its session write, so a slow capture that succeeds still reaches the
// browser with its cookie.
const DefaultGatewayTimeout = 25 * time.Second

type Config struct {
	Port string
	Env  string

	// GatewayURL is the access gateway's base URL, without the /api prefix.
	GatewayURL     string
	RequestTimeout time.Duration

	RateLimitPerMinute int

	CloudWatchEnabled  bool
	CloudWatchLogGroup string
	MetricsNamespace   string
}

// LoadConfig reads the environment, after loading a .env file if present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "3000"),
		Env:                getEnv("APP_ENV", "development"),
		GatewayURL:         strings.TrimRight(getEnv("GATEWAY_URL", "http://localhost:3001"), "/"),
		CloudWatchEnabled:  getEnv("CLOUDWATCH_ENABLED", "false") == "true",
		CloudWatchLogGroup: getEnv("CLOUDWATCH_LOG_GROUP", "/paywall/services"),
		MetricsNamespace:   getEnv("METRICS_NAMESPACE", "Paywall"),
	}

	u, err := url.Parse(cfg.GatewayURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("GATEWAY_URL must be an absolute http(s) URL, got %q", cfg.GatewayURL)
	}

	if cfg.RequestTimeout, err = getDuration("GATEWAY_TIMEOUT", DefaultGatewayTimeout); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 30); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, val)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, val)
	}
	return n, nil
}
