package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadWith clears every bound variable, applies values and loads.
func loadWith(t *testing.T, values map[string]string) (*Config, error) {
	t.Helper()

	for _, key := range envKeys {
		t.Setenv(strings.ToUpper(key), "")
	}
	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "")
	for key, value := range values {
		t.Setenv(key, value)
	}

	return Load()
}

const strongSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadWith(t, nil)
	require.NoError(t, err)

	assert.Equal(t, 8082, cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, RateLimitConfig{MaxRequests: 20, Window: time.Minute}, cfg.RateLimit)
	assert.Equal(t, LockoutConfig{Threshold: 5, Window: 15 * time.Minute, Duration: 15 * time.Minute}, cfg.Lockout)
	assert.Equal(t, DevSigningSecret, cfg.JWTSecret)
	assert.True(t, cfg.AllowDevTokens)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.CounterStoreBreaker)
	assert.Zero(t, cfg.LocalStatePruneEvery)
	assert.Equal(t, "http://localhost:8081", cfg.DocumentServiceBaseURL)
	assert.Equal(t, "http://localhost:5173", cfg.WebOrigin)
	assert.Nil(t, cfg.TrustedProxies)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 1.0, cfg.SamplingRate)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := loadWith(t, map[string]string{
		"PORT":                          "9000",
		"AUTH_RATE_LIMIT_MAX":           "3",
		"AUTH_RATE_LIMIT_WINDOW_MS":     "1000",
		"AUTH_LOCKOUT_THRESHOLD":        "2",
		"AUTH_LOCKOUT_WINDOW_MS":        "5000",
		"AUTH_LOCKOUT_DURATION_MS":      "7000",
		"JWT_SECRET":                    strongSecret,
		"ALLOW_DEV_TOKENS":              "false",
		"REDIS_URL":                     " redis://localhost:6379/0 ",
		"COUNTER_STORE_BREAKER_ENABLED": "true",
		"LOCAL_STATE_PRUNE_INTERVAL":    "5m",
		"DOCUMENT_SERVICE_BASE_URL":     "https://docs.internal",
		"WEB_ORIGIN":                    "https://app.example.com",
		"TRUSTED_PROXIES":               "10.0.0.0/8, ,192.168.1.1",
		"LOG_LEVEL":                     "debug",
		"LOG_FORMAT":                    "console",
		"OTEL_EXPORTER_OTLP_ENDPOINT":   "otel:4317",
		"OTEL_SAMPLING_RATE":            "0.25",
	})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, RateLimitConfig{MaxRequests: 3, Window: time.Second}, cfg.RateLimit)
	assert.Equal(t, LockoutConfig{Threshold: 2, Window: 5 * time.Second, Duration: 7 * time.Second}, cfg.Lockout)
	assert.Equal(t, strongSecret, cfg.JWTSecret)
	assert.False(t, cfg.AllowDevTokens)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.True(t, cfg.CounterStoreBreaker)
	assert.Equal(t, 5*time.Minute, cfg.LocalStatePruneEvery)
	assert.Equal(t, "https://docs.internal", cfg.DocumentServiceBaseURL)
	assert.Equal(t, "https://app.example.com", cfg.WebOrigin)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.TrustedProxies)
	assert.Equal(t, "otel:4317", cfg.OTLPEndpoint)
	assert.Equal(t, 0.25, cfg.SamplingRate)
}

func TestLoad_InvalidIntegersFallBack(t *testing.T) {
	for _, raw := range []string{"", "abc", "0", "-5", "1.5"} {
		cfg, err := loadWith(t, map[string]string{
			"AUTH_RATE_LIMIT_MAX":      raw,
			"AUTH_LOCKOUT_DURATION_MS": raw,
		})
		require.NoError(t, err)
		assert.Equal(t, DefaultRateLimitMax, cfg.RateLimit.MaxRequests, "raw %q", raw)
		assert.Equal(t, 15*time.Minute, cfg.Lockout.Duration, "raw %q", raw)
	}
}

func TestLoad_EnvironmentName(t *testing.T) {
	cfg, err := loadWith(t, map[string]string{"NODE_ENV": "Staging"})
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)

	cfg, err = loadWith(t, map[string]string{"APP_ENV": "test", "NODE_ENV": "production"})
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Environment)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	cfg, err := loadWith(t, map[string]string{
		"OTEL_SAMPLING_RATE":            "often",
		"LOCAL_STATE_PRUNE_INTERVAL":    "-1m",
		"COUNTER_STORE_BREAKER_ENABLED": "maybe",
		"WEB_ORIGIN":                    "   ",
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultSamplingRate, cfg.SamplingRate)
	assert.Zero(t, cfg.LocalStatePruneEvery)
	assert.False(t, cfg.CounterStoreBreaker)
	assert.Equal(t, DefaultWebOrigin, cfg.WebOrigin)
}

func TestLoad_Production(t *testing.T) {
	_, err := loadWith(t, map[string]string{"APP_ENV": "production"})
	assert.True(t, errors.Is(err, ErrWeakSecret))

	_, err = loadWith(t, map[string]string{"NODE_ENV": "production", "JWT_SECRET": "replace-in-production"})
	assert.True(t, errors.Is(err, ErrWeakSecret))

	cfg, err := loadWith(t, map[string]string{
		"APP_ENV":          "production",
		"JWT_SECRET":       strongSecret,
		"ALLOW_DEV_TOKENS": "true",
	})
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.AllowDevTokens)
}

func TestLoad_ValidationErrors(t *testing.T) {
	_, err := loadWith(t, map[string]string{
		"LOG_LEVEL":                 "loud",
		"LOG_FORMAT":                "xml",
		"DOCUMENT_SERVICE_BASE_URL": "docs:8081",
		"OTEL_SAMPLING_RATE":        "2",
		"PORT":                      "70000",
	})
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 5)
	assert.True(t, strings.HasPrefix(err.Error(), "5 validation errors"))
}

func TestResolveSigningSecret(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		production bool
		want       string
		wantErr    bool
	}{
		{name: "strong", secret: strongSecret, want: strongSecret},
		{name: "strong in production", secret: strongSecret, production: true, want: strongSecret},
		{name: "short outside production", secret: "short", want: DevSigningSecret},
		{name: "empty outside production", want: DevSigningSecret},
		{name: "placeholder outside production", secret: "replace-in-production", want: DevSigningSecret},
		{name: "short in production", secret: "short", production: true, wantErr: true},
		{name: "31 chars in production", secret: strongSecret[:31], production: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSigningSecret(tt.secret, tt.production)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrWeakSecret)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDevTokensAllowed(t *testing.T) {
	assert.True(t, DevTokensAllowed("", false))
	assert.True(t, DevTokensAllowed("true", false))
	assert.True(t, DevTokensAllowed("0", false))
	assert.False(t, DevTokensAllowed("false", false))
	assert.False(t, DevTokensAllowed("", true))
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Equal(t, "no validation errors", ValidationErrors{}.Error())
	assert.Equal(t, "PORT: bad", ValidationErrors{{Path: "PORT", Message: "bad"}}.Error())
	assert.Equal(t, "bad", (&ValidationError{Message: "bad"}).Error())
}
