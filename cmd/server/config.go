package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskapi/internal/config"
	"github.com/phrazzld/taskapi/internal/platform/logger"
	"github.com/phrazzld/taskapi/internal/platform/tracing"
	"github.com/phrazzld/taskapi/internal/redact"
)

// loadAppConfig loads the application configuration from environment
// variables or config file.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// setupAppLogger configures the process-wide JSON logger and logs the
// effective configuration without secrets.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"backend", cfg.Broker.Backend,
		"queue", cfg.Broker.Queue)
	if cfg.Broker.URL != "" {
		l.Debug("Broker configuration", "url", redact.URL(cfg.Broker.URL))
	}
	if cfg.Database.URL != "" {
		l.Debug("Database configuration", "url", redact.URL(cfg.Database.URL))
	}
	l.Debug("Auth configuration", "enabled", cfg.Auth.Enabled())

	return l, nil
}

// setupTracing installs the stdout span exporter when tracing is enabled.
func setupTracing(cfg *config.Config, l *slog.Logger) (tracing.ShutdownFunc, error) {
	if !cfg.Tracing.Enabled {
		return tracing.Noop, nil
	}

	shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	l.Info("OpenTelemetry tracer initialized", "service_name", cfg.Tracing.ServiceName)
	return shutdown, nil
}
