package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_ROOT_PATH", "APP_PORT", "LOG_LEVEL", "AUTH_SIGNING_SECRET", "AUTH_SESSION_TTL_MINUTES",
		"AUTH_SWEEP_INTERVAL_SECONDS", "AUTH_BCRYPT_COST", "AUTH_REGISTRY_SHARDS", "METRICS_ENABLED",
		"METRICS_PATH", "HTTP_REQUEST_TIMEOUT_SECONDS", "AUTH_ISSUER",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/management", cfg.App.RootPath)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "BookmarkApplication", cfg.Auth.Issuer)
	assert.Empty(t, cfg.Auth.SigningSecret)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL())
	assert.Equal(t, time.Minute, cfg.Auth.SweepInterval())
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 32, cfg.Auth.RegistryShards)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ROOT_PATH", "/")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("AUTH_SIGNING_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("AUTH_SESSION_TTL_MINUTES", "0")
	t.Setenv("AUTH_SWEEP_INTERVAL_SECONDS", "0")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.App.RootPath, "a bare slash mounts the API at the server root")
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Zero(t, cfg.Auth.SessionTTL(), "zero selects revocation-only sessions")
	assert.Zero(t, cfg.Auth.SweepInterval())
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"AUTH_SIGNING_SECRET": "too-short",
		"LOG_LEVEL":           "chatty",
		"APP_PORT":            "http",
		"AUTH_BCRYPT_COST":    "2",
		"APP_ROOT_PATH":       "management",
		"METRICS_PATH":        "metrics",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "twelve")
	t.Setenv("CFG_TEST_BOOL", "maybe")
	assert.Equal(t, 7, getEnvAsInt("CFG_TEST_INT", 7))
	assert.True(t, getEnvAsBool("CFG_TEST_BOOL", true))
	assert.Equal(t, "x", getEnv("CFG_TEST_UNSET", "x"))
}
