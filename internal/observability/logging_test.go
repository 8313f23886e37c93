package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{name: "defaults", cfg: DefaultLogConfig()},
		{name: "console", cfg: LogConfig{Level: "debug", Format: "console", Output: "stderr"}},
		{name: "empty format is json", cfg: LogConfig{Level: "warn"}},
		{name: "invalid level", cfg: LogConfig{Level: "loud", Format: "json"}, wantErr: true},
		{name: "invalid format", cfg: LogConfig{Level: "info", Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger.Zap())
		})
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("error")
	require.NoError(t, err)
	assert.Equal(t, zapcore.ErrorLevel, l)

	_, err = ParseLevel("nope")
	assert.Error(t, err)
}

func TestLogger_WithContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := NewLoggerFromZap(zap.New(core))

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithTraceID(ctx, "trace-1")

	logger.WithContext(ctx).Info("hello", String("k", "v"))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "trace-1", fields["trace_id"])
	assert.Equal(t, "v", fields["k"])
}

func TestLogger_WithContext_NoFields(t *testing.T) {
	logger := NopLogger()
	assert.Same(t, logger, logger.WithContext(context.Background()))
}

func TestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLoggerFromZap(zap.New(core)).With(String("component", "test"))

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")

	require.Equal(t, 4, logs.Len())
	for _, entry := range logs.All() {
		assert.Equal(t, "test", entry.ContextMap()["component"])
	}
	assert.NoError(t, NopLogger().Sync())
}

func TestContextHelpers_Empty(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
