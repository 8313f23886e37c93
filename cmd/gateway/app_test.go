package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/relaydocs/relaygw/internal/config"
	"github.com/relaydocs/relaygw/internal/observability"
)

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()

	for _, key := range []string{
		"APP_ENV", "NODE_ENV", "REDIS_URL", "DOCUMENT_SERVICE_BASE_URL",
		"COUNTER_STORE_BREAKER_ENABLED", "LOCAL_STATE_PRUNE_INTERVAL",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	for key, value := range env {
		t.Setenv(key, value)
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestNewApplication(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	docs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(docs.Close)

	cfg := testConfig(t, map[string]string{
		"REDIS_URL":                     "redis://" + mr.Addr(),
		"DOCUMENT_SERVICE_BASE_URL":     docs.URL,
		"COUNTER_STORE_BREAKER_ENABLED": "true",
		"LOCAL_STATE_PRUNE_INTERVAL":    "1m",
	})

	app, err := newApplication(context.Background(), cfg, observability.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { app.closeAll(context.Background(), zap.NewNop()) })

	assert.NotNil(t, app.pruner)
	assert.True(t, app.provider.Enabled())

	engine := app.server.Engine()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"document_service"`)
	assert.Contains(t, w.Body.String(), `"counter_store"`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNewApplication_WithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app, err := newApplication(context.Background(), testConfig(t, nil), observability.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { app.closeAll(context.Background(), zap.NewNop()) })

	assert.Nil(t, app.pruner)
	assert.False(t, app.provider.Enabled())
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("RELAYGW_TEST_FROM_FILE=file\nRELAYGW_TEST_PRESET=file\n"), 0o600))

	t.Setenv("RELAYGW_TEST_PRESET", "process")
	t.Cleanup(func() { _ = os.Unsetenv("RELAYGW_TEST_FROM_FILE") })

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "file", os.Getenv("RELAYGW_TEST_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("RELAYGW_TEST_PRESET"))

	assert.NoError(t, loadEnvFile(filepath.Join(dir, "missing.env")))
	assert.NoError(t, loadEnvFile(""))
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("RELAYGW_TEST_VALUE", "set")

	assert.Equal(t, "set", getEnvOrDefault("RELAYGW_TEST_VALUE", "default"))
	assert.Equal(t, "default", getEnvOrDefault("RELAYGW_TEST_UNSET", "default"))
}
