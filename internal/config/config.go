package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Auth    AuthConfig
	Metrics MetricsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name    string `validate:"required"`
	Env     string `validate:"required"`
	Host    string
	Port    string `validate:"required,numeric"`
	Version string
	// RootPath prefixes every API route; empty mounts the API at the server root.
	RootPath              string `validate:"omitempty,startswith=/"`
	RequestTimeoutSeconds int    `validate:"gte=0"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `validate:"required,oneof=debug info warn error dpanic panic fatal"`
}

// AuthConfig defines session and credential parameters.
type AuthConfig struct {
	// SigningSecret is optional; an empty value makes the signer generate a random key at start-up.
	SigningSecret        string `validate:"omitempty,min=32"`
	Issuer               string `validate:"required"`
	SessionTTLMinutes    int    `validate:"gte=0"`
	SweepIntervalSeconds int    `validate:"gte=0"`
	BcryptCost           int    `validate:"gte=4,lte=31"`
	RegistryShards       int    `validate:"gte=1,lte=4096"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Path    string `validate:"required,startswith=/"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "bookmark-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RootPath:              strings.TrimRight(getEnv("APP_ROOT_PATH", "/management"), "/"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Logger: LoggerConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Auth: AuthConfig{
			SigningSecret:        os.Getenv("AUTH_SIGNING_SECRET"),
			Issuer:               getEnv("AUTH_ISSUER", "BookmarkApplication"),
			SessionTTLMinutes:    getEnvAsInt("AUTH_SESSION_TTL_MINUTES", 60),
			SweepIntervalSeconds: getEnvAsInt("AUTH_SWEEP_INTERVAL_SECONDS", 60),
			BcryptCost:           getEnvAsInt("AUTH_BCRYPT_COST", 12),
			RegistryShards:       getEnvAsInt("AUTH_REGISTRY_SHARDS", 32),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct constraints on the loaded configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SessionTTL returns the session lifetime. Zero means sessions live until revoked.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}

// SweepInterval returns how often expired sessions are purged. Zero disables the sweeper.
func (a AuthConfig) SweepInterval() time.Duration {
	if a.SweepIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(a.SweepIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
