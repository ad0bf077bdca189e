package redisq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/phrazzld/taskapi/internal/redact"
	"github.com/phrazzld/taskapi/internal/task"
)

// WorkerConfig configures a Worker.
type WorkerConfig struct {
	Conn            ConnConfig
	Queue           string
	Concurrency     int
	ShutdownTimeout time.Duration
}

// Worker consumes tasks from Redis and executes them through the registry.
type Worker struct {
	server  *asynq.Server
	handler asynq.Handler
	logger  *slog.Logger
}

// NewWorker builds an asynq server whose handler mux has one route per
// registered task.
func NewWorker(cfg WorkerConfig, registry *task.Registry, logger *slog.Logger) (*Worker, error) {
	opts, err := ParseURL(cfg.Conn)
	if err != nil {
		return nil, err
	}

	logger = logger.With("component", "redis_worker", "queue", cfg.Queue)

	server := asynq.NewServer(AsynqOpt(opts), asynq.Config{
		Concurrency:     cfg.Concurrency,
		Queues:          map[string]int{cfg.Queue: 1},
		ShutdownTimeout: cfg.ShutdownTimeout,
		Logger:          &slogAsynqLogger{logger: logger},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
			id, _ := asynq.GetTaskID(ctx)
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Error("task failed",
				"task_id", id,
				"task_name", t.Type(),
				"retry", retried,
				"max_retry", maxRetry,
				"error", redact.Error(err))
		}),
	})

	logger.Info("worker configured",
		"broker", redact.URL(cfg.Conn.URL),
		"concurrency", cfg.Concurrency,
		"tasks", registry.Names())

	return &Worker{
		server:  server,
		handler: NewHandler(registry, logger),
		logger:  logger,
	}, nil
}

// Run starts processing and blocks until ctx is cancelled, then waits for
// in-flight tasks up to the shutdown timeout.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.handler); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}
	w.logger.Info("worker started")

	<-ctx.Done()

	w.logger.Info("shutting down worker")
	w.server.Shutdown()
	w.logger.Info("worker stopped")
	return nil
}

// NewHandler returns an asynq handler that dispatches by task type.
func NewHandler(registry *task.Registry, logger *slog.Logger) asynq.Handler {
	h := &taskHandler{registry: registry, logger: logger}

	mux := asynq.NewServeMux()
	for _, name := range registry.Names() {
		mux.HandleFunc(name, h.ProcessTask)
	}
	return mux
}

type taskHandler struct {
	registry *task.Registry
	logger   *slog.Logger
}

// ProcessTask runs one task and stores its JSON result. Bad arguments and
// unknown names cannot succeed on retry, so they skip it.
func (h *taskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	id, _ := asynq.GetTaskID(ctx)
	log := h.logger.With("task_id", id, "task_name", t.Type())
	log.Debug("processing task")

	result, err := task.Execute(ctx, h.registry, t.Type(), t.Payload())
	if err != nil {
		if errors.Is(err, task.ErrInvalidArgs) || errors.Is(err, task.ErrUnknownTask) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	if rw := t.ResultWriter(); rw != nil {
		if _, err := rw.Write(result); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}

	log.Debug("task completed", "result", string(result))
	return nil
}
