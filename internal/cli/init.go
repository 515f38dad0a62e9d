// Package cli holds the start-up steps shared by cmd/bizdash and
// cmd/catalog-worker.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bizdash/internal/config"
	applog "bizdash/internal/log"
)

// SetupLogger builds the process logger for component at level and
// installs it as the slog default.
func SetupLogger(component string, level slog.Level) *applog.Logger {
	logger := applog.New(applog.Config{Level: level, Component: component})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env (or the given files) for local development. A
// missing file is not an error.
func LoadEnvFile(files ...string) {
	_ = godotenv.Load(files...)
}

// LoadAndValidateConfig reads the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		if parent.Err() == nil {
			logger.Info("Shutdown signal received")
		}
	}()
	return ctx, cancel
}

// GracefulShutdown runs each step with a shared timeout, logging failures.
// Steps run in order; a failing step does not stop the rest.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, steps ...func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var firstErr error
	for i, step := range steps {
		if step == nil {
			continue
		}
		if err := step(ctx); err != nil {
			logger.Error("Shutdown step failed", "step", i, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("shutdown step %d: %w", i, err)
			}
		}
	}
	if ctx.Err() != nil {
		logger.Warn("Shutdown timeout reached")
	} else {
		logger.Info("Shutdown complete")
	}
	return firstErr
}

// Fatal logs err and exits with status 1.
func Fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
