package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	awspkg "github.com/kpsbusiness/paywall/pkg/aws"
	"github.com/shopspring/decimal"
)

const (
	SessionStoreMemory   = "memory"
	SessionStoreRedis    = "redis"
	SessionStoreDynamoDB = "dynamodb"

	// Used when SESSION_SECRET is unset. Never acceptable in production.
	devSessionSecret = "dev-secret-change-in-production"

	// Secrets Manager names read when AWS_USE_SECRETS=true.
	PayPalSecretName  = "paywall/PAYPAL_CREDENTIALS"
	SessionSecretName = "paywall/SESSION_SECRET"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

type Config struct {
	Port string
	Env  string

	PayPalClientID     string
	PayPalClientSecret string
	PayPalMode         string
	payPalModeSet      bool
	Currency           string
	Amount             decimal.Decimal
	ProviderTimeout    time.Duration

	SessionSecret string
	SessionTTL    time.Duration
	SessionStore  string
	RedisURL      string
	SessionTable  string

	FrontendURL        string
	RateLimitPerMinute int

	UseSecrets          bool
	OrderEventsTopicARN string
	CloudWatchEnabled   bool
	CloudWatchLogGroup  string
	MetricsNamespace    string
}

// LoadConfig reads the environment (and .env, if present). Malformed values
// are errors; missing PayPal credentials are not, see Status.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "3001"),
		Env:                 getEnv("APP_ENV", "development"),
		PayPalClientID:      strings.TrimSpace(os.Getenv("PAYPAL_CLIENT_ID")),
		PayPalClientSecret:  strings.TrimSpace(os.Getenv("PAYPAL_CLIENT_SECRET")),
		Currency:            strings.ToUpper(getEnv("CURRENCY", "USD")),
		SessionSecret:       os.Getenv("SESSION_SECRET"),
		SessionStore:        strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory)),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTable:        getEnv("SESSION_TABLE", "paywall-sessions"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:5173"),
		UseSecrets:          os.Getenv("AWS_USE_SECRETS") == "true",
		OrderEventsTopicARN: os.Getenv("ORDER_EVENTS_TOPIC_ARN"),
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", "/paywall/services"),
		MetricsNamespace:    getEnv("METRICS_NAMESPACE", "Paywall"),
	}

	mode := strings.ToLower(strings.TrimSpace(os.Getenv("PAYPAL_MODE")))
	cfg.payPalModeSet = mode != ""
	switch mode {
	case "", "sandbox":
		cfg.PayPalMode = "sandbox"
	case "live":
		cfg.PayPalMode = "live"
	default:
		return nil, fmt.Errorf("PAYPAL_MODE must be sandbox or live, got %q", mode)
	}

	if !currencyPattern.MatchString(cfg.Currency) {
		return nil, fmt.Errorf("CURRENCY must be a three-letter ISO 4217 code, got %q", cfg.Currency)
	}

	amount, err := ParseAmount(getEnv("PAYMENT_AMOUNT", "449.95"))
	if err != nil {
		return nil, err
	}
	cfg.Amount = amount

	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ProviderTimeout, err = getDuration("PROVIDER_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return nil, err
	}

	switch cfg.SessionStore {
	case SessionStoreMemory, SessionStoreRedis, SessionStoreDynamoDB:
	default:
		return nil, fmt.Errorf("SESSION_STORE must be memory, redis or dynamodb, got %q", cfg.SessionStore)
	}

	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("SESSION_SECRET is required in production")
		}
		cfg.SessionSecret = devSessionSecret
	}

	return cfg, nil
}

// ParseAmount accepts a positive decimal with at most two fraction digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("PAYMENT_AMOUNT %q is not a decimal: %w", raw, err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("PAYMENT_AMOUNT must be positive, got %s", raw)
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.Zero, fmt.Errorf("PAYMENT_AMOUNT allows at most two decimal places, got %s", raw)
	}
	return amount, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// AmountString is the amount as the provider and clients see it.
func (c *Config) AmountString() string {
	return c.Amount.StringFixed(2)
}

type payPalSecret struct {
	ClientID     string `json:"PAYPAL_CLIENT_ID"`
	ClientSecret string `json:"PAYPAL_CLIENT_SECRET"`
}

// ApplySecrets overrides credentials with values from Secrets Manager.
// Secrets that cannot be read leave the environment values in place.
func (c *Config) ApplySecrets(ctx context.Context, secrets awspkg.SecretGetter) []error {
	var errs []error

	if raw, err := secrets.GetSecret(ctx, PayPalSecretName); err != nil {
		errs = append(errs, err)
	} else {
		var s payPalSecret
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			errs = append(errs, fmt.Errorf("decode %s: %w", PayPalSecretName, err))
		} else {
			if s.ClientID != "" {
				c.PayPalClientID = s.ClientID
			}
			if s.ClientSecret != "" {
				c.PayPalClientSecret = s.ClientSecret
			}
		}
	}

	if raw, err := secrets.GetSecret(ctx, SessionSecretName); err != nil {
		errs = append(errs, err)
	} else if raw = strings.TrimSpace(raw); raw != "" {
		c.SessionSecret = raw
	}

	return errs
}

// Status is the startup validation report.
type Status struct {
	Errors   []string
	Warnings []string
}

// PaymentReady is false when any error was found; the process still serves
// check-access and config so the gate can explain the outage.
func (s Status) PaymentReady() bool {
	return len(s.Errors) == 0
}

func (c *Config) Status() Status {
	var st Status
	if c.PayPalClientID == "" {
		st.Errors = append(st.Errors, "PAYPAL_CLIENT_ID is not set")
	}
	if c.PayPalClientSecret == "" {
		st.Errors = append(st.Errors, "PAYPAL_CLIENT_SECRET is not set")
	}
	if !c.payPalModeSet {
		st.Warnings = append(st.Warnings, "PAYPAL_MODE is not set, defaulting to sandbox")
	}
	if c.SessionSecret == devSessionSecret {
		st.Warnings = append(st.Warnings, "SESSION_SECRET is not set, using the development default")
	}
	return st
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
