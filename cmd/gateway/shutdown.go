package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relaydocs/relaygw/internal/observability"
)

// shutdownTimeout bounds the graceful drain.
const shutdownTimeout = 30 * time.Second

// runGateway serves until SIGINT or SIGTERM, then shuts down gracefully.
func runGateway(ctx context.Context, app *application, logger observability.Logger) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if app.pruner != nil {
		go app.pruner.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			app.closeAll(context.Background(), logger.Zap())
			fatalWithSync(logger, "gateway failed", observability.Error(err))
			return
		}
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	waitForShutdown(app, logger)
}

// waitForShutdown drains the HTTP server and releases resources.
func waitForShutdown(app *application, logger observability.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.server.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop gateway gracefully", observability.Error(err))
	}

	app.closeAll(shutdownCtx, logger.Zap())

	logger.Info("gateway stopped")
}

// fatalWithSync flushes buffered log entries before exiting.
func fatalWithSync(logger observability.Logger, msg string, fields ...observability.Field) {
	_ = logger.Sync()
	logger.Fatal(msg, fields...)
	os.Exit(1)
}
