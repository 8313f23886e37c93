// Package main is the entry point for the relaydocs gateway.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/relaydocs/relaygw/internal/config"
	"github.com/relaydocs/relaygw/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	envFile     string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	if err := loadEnvFile(flags.envFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", flags.envFile, err)
		os.Exit(1)
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", observability.Error(err))
	}

	logger.Info("starting relaydocs gateway",
		observability.String("version", version),
		observability.String("environment", cfg.Environment),
		observability.Int("port", cfg.Port),
		observability.Bool("counter_store", cfg.RedisURL != ""),
		observability.Bool("dev_tokens", cfg.AllowDevTokens),
	)

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize gateway", observability.Error(err))
	}

	runGateway(ctx, app, logger)
}

// parseFlags parses command line flags. Flag defaults come from the
// environment so a .env file cannot override an explicit flag.
func parseFlags() cliFlags {
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before reading configuration")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	logFormat := flag.String("log-format", "", "Log format (json, console); overrides LOG_FORMAT")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		envFile:     *envFile,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information.
func printVersion() {
	fmt.Printf("relaygw version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// loadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// initLogger initializes the logger. Flags win over LOG_LEVEL and LOG_FORMAT.
func initLogger(flags cliFlags) observability.Logger {
	if flags.logLevel != "" {
		_ = os.Setenv("LOG_LEVEL", flags.logLevel)
	}
	if flags.logFormat != "" {
		_ = os.Setenv("LOG_FORMAT", flags.logFormat)
	}

	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	return logger
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
