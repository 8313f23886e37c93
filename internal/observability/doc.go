// Package observability provides logging, metrics, and tracing
// functionality for the relaydocs gateway.
//
// # Logging
//
// The Logger interface wraps zap for structured logging:
//
//	logger, err := observability.NewLogger(observability.LogConfig{Level: "info", Format: "json"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
// Components that take a *zap.Logger get it from Logger.Zap.
//
// # Metrics
//
// Gateway metrics live in their own Prometheus registry:
//
//	metrics := observability.NewMetrics("gateway")
//	handler := metrics.Handler()
//
// Every recording method is safe on a nil *Metrics.
//
// # Tracing
//
// OpenTelemetry tracing exports over OTLP gRPC when an endpoint is
// configured and falls back to the global no-op provider otherwise.
package observability
