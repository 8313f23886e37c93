// Package config loads the gateway configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/relaydocs/relaygw/internal/observability"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the complete gateway configuration.
type Config struct {
	Port        int
	Environment string

	RateLimit RateLimitConfig
	Lockout   LockoutConfig

	// JWTSecret is the resolved signing secret used for both issuing and
	// verifying session tokens.
	JWTSecret      string
	AllowDevTokens bool

	RedisURL               string
	CounterStoreBreaker    bool
	LocalStatePruneEvery   time.Duration
	DocumentServiceBaseURL string
	WebOrigin              string
	TrustedProxies         []string

	LogLevel  string
	LogFormat string

	OTLPEndpoint string
	SamplingRate float64
}

// RateLimitConfig is the policy for authentication endpoints.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// LockoutConfig is the failed-login lockout policy.
type LockoutConfig struct {
	Threshold int
	Window    time.Duration
	Duration  time.Duration
}

// Default values.
const (
	DefaultPort                   = 8082
	DefaultRateLimitMax           = 20
	DefaultRateLimitWindowMs      = 60000
	DefaultLockoutThreshold       = 5
	DefaultLockoutWindowMs        = 900000
	DefaultLockoutDurationMs      = 900000
	DefaultDocumentServiceBaseURL = "http://localhost:8081"
	DefaultWebOrigin              = "http://localhost:5173"
	DefaultSamplingRate           = 1.0
	DefaultLogLevel               = "info"
	DefaultLogFormat              = "json"
)

// IsProduction reports whether the gateway runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Load reads the configuration from the process environment and validates
// it. Integer values fall back to their default when they are missing,
// unparsable or not positive.
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        positiveInt(v, keyPort, DefaultPort),
		Environment: strings.ToLower(stringOr(v, keyAppEnv, EnvDevelopment)),
		RateLimit: RateLimitConfig{
			MaxRequests: positiveInt(v, keyRateLimitMax, DefaultRateLimitMax),
			Window:      millis(v, keyRateLimitWindowMs, DefaultRateLimitWindowMs),
		},
		Lockout: LockoutConfig{
			Threshold: positiveInt(v, keyLockoutThreshold, DefaultLockoutThreshold),
			Window:    millis(v, keyLockoutWindowMs, DefaultLockoutWindowMs),
			Duration:  millis(v, keyLockoutDurationMs, DefaultLockoutDurationMs),
		},
		RedisURL:               strings.TrimSpace(v.GetString(keyRedisURL)),
		CounterStoreBreaker:    v.GetBool(keyBreakerEnabled),
		LocalStatePruneEvery:   duration(v, keyPruneInterval, 0),
		DocumentServiceBaseURL: stringOr(v, keyDocumentServiceURL, DefaultDocumentServiceBaseURL),
		WebOrigin:              stringOr(v, keyWebOrigin, DefaultWebOrigin),
		TrustedProxies:         list(v, keyTrustedProxies),
		LogLevel:               stringOr(v, keyLogLevel, DefaultLogLevel),
		LogFormat:              stringOr(v, keyLogFormat, DefaultLogFormat),
		OTLPEndpoint:           strings.TrimSpace(v.GetString(keyOTLPEndpoint)),
		SamplingRate:           float(v, keyOTELSamplingRate, DefaultSamplingRate),
	}

	production := cfg.IsProduction()

	secret, err := ResolveSigningSecret(v.GetString(keyJWTSecret), production)
	if err != nil {
		return nil, err
	}
	cfg.JWTSecret = secret
	cfg.AllowDevTokens = DevTokensAllowed(v.GetString(keyAllowDevTokens), production)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that have no safe fallback.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Port > 65535 {
		errs = append(errs, ValidationError{Path: "PORT", Message: fmt.Sprintf("%d is out of range", c.Port)})
	}

	if _, err := observability.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, ValidationError{Path: "LOG_LEVEL", Message: err.Error()})
	}

	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = append(errs, ValidationError{Path: "LOG_FORMAT", Message: fmt.Sprintf("must be json or console, got %q", c.LogFormat)})
	}

	if u, err := url.Parse(c.DocumentServiceBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Path:    "DOCUMENT_SERVICE_BASE_URL",
			Message: fmt.Sprintf("must be an absolute http(s) URL, got %q", c.DocumentServiceBaseURL),
		})
	}

	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		errs = append(errs, ValidationError{Path: "OTEL_SAMPLING_RATE", Message: "must be between 0 and 1"})
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
