package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Configuration keys. Each key is bound to the environment variable of the
// same name in upper case.
const (
	keyPort               = "port"
	keyAppEnv             = "app_env"
	keyRateLimitMax       = "auth_rate_limit_max"
	keyRateLimitWindowMs  = "auth_rate_limit_window_ms"
	keyLockoutThreshold   = "auth_lockout_threshold"
	keyLockoutWindowMs    = "auth_lockout_window_ms"
	keyLockoutDurationMs  = "auth_lockout_duration_ms"
	keyJWTSecret          = "jwt_secret"
	keyAllowDevTokens     = "allow_dev_tokens"
	keyRedisURL           = "redis_url"
	keyBreakerEnabled     = "counter_store_breaker_enabled"
	keyPruneInterval      = "local_state_prune_interval"
	keyDocumentServiceURL = "document_service_base_url"
	keyWebOrigin          = "web_origin"
	keyTrustedProxies     = "trusted_proxies"
	keyLogLevel           = "log_level"
	keyLogFormat          = "log_format"
	keyOTLPEndpoint       = "otel_exporter_otlp_endpoint"
	keyOTELSamplingRate   = "otel_sampling_rate"
)

var envKeys = []string{
	keyPort,
	keyRateLimitMax,
	keyRateLimitWindowMs,
	keyLockoutThreshold,
	keyLockoutWindowMs,
	keyLockoutDurationMs,
	keyJWTSecret,
	keyAllowDevTokens,
	keyRedisURL,
	keyBreakerEnabled,
	keyPruneInterval,
	keyDocumentServiceURL,
	keyWebOrigin,
	keyTrustedProxies,
	keyLogLevel,
	keyLogFormat,
	keyOTLPEndpoint,
	keyOTELSamplingRate,
}

// newViper returns a viper instance bound to the process environment.
func newViper() (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyPort, DefaultPort)
	v.SetDefault(keyAppEnv, EnvDevelopment)

	v.SetDefault(keyRateLimitMax, DefaultRateLimitMax)
	v.SetDefault(keyRateLimitWindowMs, DefaultRateLimitWindowMs)
	v.SetDefault(keyLockoutThreshold, DefaultLockoutThreshold)
	v.SetDefault(keyLockoutWindowMs, DefaultLockoutWindowMs)
	v.SetDefault(keyLockoutDurationMs, DefaultLockoutDurationMs)

	v.SetDefault(keyBreakerEnabled, false)
	v.SetDefault(keyPruneInterval, time.Duration(0))
	v.SetDefault(keyDocumentServiceURL, DefaultDocumentServiceBaseURL)
	v.SetDefault(keyWebOrigin, DefaultWebOrigin)

	v.SetDefault(keyLogLevel, DefaultLogLevel)
	v.SetDefault(keyLogFormat, DefaultLogFormat)
	v.SetDefault(keyOTELSamplingRate, DefaultSamplingRate)
}

func bindEnvs(v *viper.Viper) error {
	for _, key := range envKeys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	// APP_ENV wins over NODE_ENV.
	if err := v.BindEnv(keyAppEnv, "APP_ENV", "NODE_ENV"); err != nil {
		return fmt.Errorf("bind env for %s: %w", keyAppEnv, err)
	}
	return nil
}

// stringOr returns the trimmed value, or defaultValue when it is blank.
func stringOr(v *viper.Viper, key, defaultValue string) string {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		return value
	}
	return defaultValue
}

// positiveInt returns the value as an int, or the default when it is
// unparsable or not positive.
func positiveInt(v *viper.Viper, key string, defaultValue int) int {
	if value := v.GetInt(key); value > 0 {
		return value
	}
	return defaultValue
}

func millis(v *viper.Viper, key string, defaultMs int) time.Duration {
	return time.Duration(positiveInt(v, key, defaultMs)) * time.Millisecond
}

// duration reads a Go duration string such as "5m". Negative values are
// treated as unset.
func duration(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	if value := v.GetDuration(key); value > 0 {
		return value
	}
	return defaultValue
}

func float(v *viper.Viper, key string, defaultValue float64) float64 {
	value, err := cast.ToFloat64E(v.Get(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// list splits a comma-separated value, dropping empty items.
func list(v *viper.Viper, key string) []string {
	var items []string
	for _, item := range strings.Split(v.GetString(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
