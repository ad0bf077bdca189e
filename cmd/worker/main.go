// Package main implements the taskapi worker: it consumes tasks from the
// Redis broker and writes their results back for lookup.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/taskapi/internal/config"
	"github.com/phrazzld/taskapi/internal/platform/logger"
	"github.com/phrazzld/taskapi/internal/platform/redisq"
	"github.com/phrazzld/taskapi/internal/platform/tracing"
	"github.com/phrazzld/taskapi/internal/task"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("taskapi worker: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Broker.Backend != config.BackendRedis {
		return fmt.Errorf("worker requires the redis backend, configured backend is %q", cfg.Broker.Backend)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName + "-worker")
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	registry, err := task.NewDefaultRegistry()
	if err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}

	worker, err := redisq.NewWorker(redisq.WorkerConfig{
		Conn: redisq.ConnConfig{
			URL:          cfg.Broker.URL,
			DialTimeout:  cfg.Broker.DialTimeout,
			ReadTimeout:  cfg.Broker.ReadTimeout,
			WriteTimeout: cfg.Broker.WriteTimeout,
		},
		Queue:           cfg.Broker.Queue,
		Concurrency:     cfg.Worker.Concurrency,
		ShutdownTimeout: time.Duration(cfg.Worker.ShutdownTimeoutSeconds) * time.Second,
	}, registry, l)
	if err != nil {
		return err
	}

	return worker.Run(ctx)
}
