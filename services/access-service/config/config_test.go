package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kpsbusiness/paywall/services/access-service/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "APP_ENV", "PAYPAL_CLIENT_ID", "PAYPAL_CLIENT_SECRET", "PAYPAL_MODE",
	"CURRENCY", "PAYMENT_AMOUNT", "SESSION_SECRET", "SESSION_TTL", "SESSION_STORE",
	"PROVIDER_TIMEOUT", "RATE_LIMIT_PER_MINUTE", "AWS_USE_SECRETS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, "449.95", cfg.AmountString())
	assert.Equal(t, "sandbox", cfg.PayPalMode)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 15*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, config.SessionStoreMemory, cfg.SessionStore)

	st := cfg.Status()
	assert.False(t, st.PaymentReady())
	assert.Len(t, st.Errors, 2)
	assert.Len(t, st.Warnings, 2)
}

func TestLoadConfig_Ready(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAYPAL_CLIENT_ID", "id")
	t.Setenv("PAYPAL_CLIENT_SECRET", "secret")
	t.Setenv("PAYPAL_MODE", "live")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("CURRENCY", "eur")
	t.Setenv("PAYMENT_AMOUNT", "10")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "live", cfg.PayPalMode)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, "10.00", cfg.AmountString())
	st := cfg.Status()
	assert.True(t, st.PaymentReady())
	assert.Empty(t, st.Warnings)
}

func TestLoadConfig_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"bad mode":         {"PAYPAL_MODE": "prod"},
		"bad currency":     {"CURRENCY": "DOLLARS"},
		"zero amount":      {"PAYMENT_AMOUNT": "0"},
		"negative amount":  {"PAYMENT_AMOUNT": "-5"},
		"fractional cents": {"PAYMENT_AMOUNT": "1.005"},
		"not a number":     {"PAYMENT_AMOUNT": "abc"},
		"bad ttl":          {"SESSION_TTL": "forever"},
		"unknown store":    {"SESSION_STORE": "postgres"},
		"prod no secret":   {"APP_ENV": "production"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := config.LoadConfig()
			assert.Error(t, err)
		})
	}
}

type fakeSecrets map[string]string

func (f fakeSecrets) GetSecret(_ context.Context, name string) (string, error) {
	v, ok := f[name]
	if !ok {
		return "", errors.New("secret not found")
	}
	return v, nil
}

func TestApplySecrets(t *testing.T) {
	clearEnv(t)
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	errs := cfg.ApplySecrets(context.Background(), fakeSecrets{
		config.PayPalSecretName:  `{"PAYPAL_CLIENT_ID":"sm-id","PAYPAL_CLIENT_SECRET":"sm-secret"}`,
		config.SessionSecretName: "sm-session",
	})
	assert.Empty(t, errs)
	assert.Equal(t, "sm-id", cfg.PayPalClientID)
	assert.Equal(t, "sm-secret", cfg.PayPalClientSecret)
	assert.Equal(t, "sm-session", cfg.SessionSecret)
}

func TestApplySecrets_MissingKeepsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAYPAL_CLIENT_ID", "env-id")
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	errs := cfg.ApplySecrets(context.Background(), fakeSecrets{})
	assert.Len(t, errs, 2)
	assert.Equal(t, "env-id", cfg.PayPalClientID)
}
