package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config groups the service configuration.
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Log       LogConfig
	Client    ClientConfig
	RateLimit RateLimitConfig
	AWS       AWSConfig
}

// AppConfig holds general settings.
type AppConfig struct {
	Env      string // development, production, test
	RunLocal bool   // serve HTTP directly instead of through the Lambda adapter
}

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns host:port.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LogConfig struct {
	Level string
}

// ClientConfig describes the browser client allowed through CORS.
type ClientConfig struct {
	URL string
}

type RateLimitConfig struct {
	Window time.Duration
	Max    int
	// TrustedProxies are the peers allowed to set X-Forwarded-For. Empty
	// means the client IP is always the connection's remote address.
	TrustedProxies []string
}

// AWSConfig holds the optional AWS integrations. Empty values disable them.
type AWSConfig struct {
	Region              string
	QuoteEventsQueueURL string
	IdempotencyTable    string
	IdempotencyTTL      time.Duration
	MetricsNamespace    string
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool { return c.App.Env == "development" }

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// Load reads .env (if present), an optional config.yaml and the environment.
// Environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load() // a missing .env is fine

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.AutomaticEnv()
	setDefaults(v)

	env := v.GetString("APP_ENV")
	switch env {
	case "development", "production", "test":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q", env)
	}

	cfg := &Config{
		App: AppConfig{
			Env:      env,
			RunLocal: v.GetBool("RUN_LOCAL"),
		},
		HTTP: HTTPConfig{
			Host:            v.GetString("BACKEND_HOST"),
			Port:            v.GetInt("BACKEND_PORT"),
			ReadTimeout:     v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("HTTP_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("HTTP_SHUTDOWN_TIMEOUT"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Client: ClientConfig{
			URL: clientURL(v, env),
		},
		RateLimit: RateLimitConfig{
			Window:         time.Duration(v.GetInt64("RATE_LIMIT_WINDOW_MS")) * time.Millisecond,
			Max:            v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
			TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		},
		AWS: AWSConfig{
			Region:              v.GetString("AWS_REGION"),
			QuoteEventsQueueURL: v.GetString("QUOTE_EVENTS_QUEUE_URL"),
			IdempotencyTable:    v.GetString("IDEMPOTENCY_TABLE"),
			IdempotencyTTL:      v.GetDuration("IDEMPOTENCY_TTL"),
			MetricsNamespace:    v.GetString("METRICS_NAMESPACE"),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("RUN_LOCAL", false)
	v.SetDefault("BACKEND_HOST", "localhost")
	v.SetDefault("BACKEND_PORT", 3001)
	v.SetDefault("HTTP_READ_TIMEOUT", "10s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "10s")
	v.SetDefault("HTTP_SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FRONTEND_HOST", "localhost")
	v.SetDefault("FRONTEND_PORT", "3000")
	v.SetDefault("PROD_FRONTEND_URL", "")
	v.SetDefault("CLIENT_URL", "")
	v.SetDefault("RATE_LIMIT_WINDOW_MS", 900000) // 15 minutes
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("QUOTE_EVENTS_QUEUE_URL", "")
	v.SetDefault("IDEMPOTENCY_TABLE", "")
	v.SetDefault("IDEMPOTENCY_TTL", "48h")
	v.SetDefault("METRICS_NAMESPACE", "QuoteService")
}

func clientURL(v *viper.Viper, env string) string {
	if u := v.GetString("CLIENT_URL"); u != "" {
		return u
	}
	if env == "development" {
		return fmt.Sprintf("http://%s:%s", v.GetString("FRONTEND_HOST"), v.GetString("FRONTEND_PORT"))
	}
	return v.GetString("PROD_FRONTEND_URL")
}

// splitList parses a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
