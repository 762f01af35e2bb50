package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.RunAddr)
	assert.Equal(t, "http://localhost:8080", cfg.ShortURLBase)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "development", cfg.Environment)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.Empty(t, cfg.TrustedSubnet)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "localhost:9090")
	t.Setenv("BASE_URL", "https://sho.rt")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JWT_SECRET", "from-the-environment")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("TRUSTED_SUBNET", "10.0.0.0/8")
	t.Setenv("APP_ENV", "staging")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, "localhost:9090", cfg.RunAddr)
	assert.Equal(t, "https://sho.rt", cfg.ShortURLBase)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "from-the-environment", cfg.JWTSigningSecret)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "10.0.0.0/8", cfg.TrustedSubnet)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestValidationRejectsBadValues(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad_log_level", key: "LOG_LEVEL", value: "verbose"},
		{name: "bad_environment", key: "APP_ENV", value: "prod"},
		{name: "bad_base_url", key: "BASE_URL", value: "not a url"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv(testCase.key, testCase.value)

			_, err := New(WithDisableFlagsParsing(true))
			assert.Error(t, err)
		})
	}
}
