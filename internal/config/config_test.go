package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "localhost:3001", cfg.HTTP.Addr())
	assert.Equal(t, "http://localhost:3000", cfg.Client.URL)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, 48*time.Hour, cfg.AWS.IdempotencyTTL)
	assert.Empty(t, cfg.AWS.QuoteEventsQueueURL)
	assert.Empty(t, cfg.RateLimit.TrustedProxies)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("BACKEND_PORT", "8080")
	t.Setenv("PROD_FRONTEND_URL", "https://quotes.example.com")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "60000")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "5")
	t.Setenv("RUN_LOCAL", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.App.RunLocal)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "https://quotes.example.com", cfg.Client.URL)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 5, cfg.RateLimit.Max)
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1,,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.RateLimit.TrustedProxies)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("APP_ENV", "staging")

	_, err := Load()
	assert.Error(t, err)
}
