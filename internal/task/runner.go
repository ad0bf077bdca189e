package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskapi/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RunnerConfig holds configuration for the task runner
type RunnerConfig struct {
	// Backend labels submissions in metrics ("postgres" or "memory")
	Backend string

	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Backend:                "memory",
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// Runner is a Dispatcher that executes tasks inside the current process.
// Every submission is persisted before it is queued so that pending work can
// be recovered after a restart.
type Runner struct {
	store    Store
	registry *Registry
	queue    *TaskQueue
	pool     *WorkerPool
	config   RunnerConfig
	logger   *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  atomic.Bool
	stopOnce sync.Once

	errHandler func(record *Record, err error)
}

// Ensure Runner implements Dispatcher
var _ Dispatcher = (*Runner)(nil)

// NewRunner creates a new Runner
func NewRunner(store Store, registry *Registry, config RunnerConfig, logger *slog.Logger) *Runner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}

	logger = logger.With("component", "task_runner", "backend", config.Backend)
	queue := NewTaskQueue(config.QueueSize, logger)
	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		store:    store,
		registry: registry,
		queue:    queue,
		pool:     NewWorkerPool(queue.GetChannel(), WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger),
		config:   config,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		errHandler: func(record *Record, err error) {
			logger.Error("task execution failed",
				"task_id", record.ID,
				"task_name", record.Name,
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *Runner) SetErrorHandler(handler func(record *Record, err error)) {
	r.errHandler = handler
}

// ErrRunnerNotStarted is returned by Submit before Start has recovered the
// store, since recovery would queue the new task a second time.
var ErrRunnerNotStarted = errors.New("task runner not started")

// Submit persists a new task and adds it to the queue.
func (r *Runner) Submit(ctx context.Context, name string, args ...any) (handle Handle, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "task.submit "+name,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("task.name", name),
			attribute.String("task.backend", r.config.Backend)))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
		metrics.ObserveSubmission(name, r.config.Backend, err)
	}()

	if !r.started.Load() {
		return Handle{}, ErrRunnerNotStarted
	}

	if !r.registry.Has(name) {
		return Handle{}, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}

	payload, err := EncodePayloadContext(ctx, args...)
	if err != nil {
		return Handle{}, err
	}

	record := NewRecord(name, payload)
	span.SetAttributes(attribute.String("task.id", record.ID.String()))

	if err := r.store.SaveTask(ctx, record); err != nil {
		return Handle{}, fmt.Errorf("%w: failed to save task: %v", ErrBrokerUnavailable, err)
	}

	if err := r.queue.Enqueue(record); err != nil {
		// The caller never sees this ID, so the record must not run later.
		if updateErr := r.store.UpdateTaskStatus(context.WithoutCancel(ctx), record.ID,
			StatusFailed, nil, "Rejected at submission: "+err.Error()); updateErr != nil {
			r.logger.Error("failed to mark rejected task as failed",
				"task_id", record.ID,
				"task_name", record.Name,
				"error", updateErr)
		}
		return Handle{}, fmt.Errorf("failed to enqueue task %s: %w", record.ID, err)
	}

	return Handle{ID: record.ID.String(), Name: name}, nil
}

// Lookup returns the stored state of a task.
func (r *Runner) Lookup(ctx context.Context, id string) (*Info, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	record, err := r.store.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: lookup %s: %v", ErrBrokerUnavailable, id, err)
	}
	return record.Info(), nil
}

// Ping reports whether the backing store is reachable.
func (r *Runner) Ping(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	return nil
}

// Start starts the worker pool, recovers unfinished tasks and then starts the
// stuck task monitor. Recovery waits for queue space, so it returns once every
// recovered task has been queued.
func (r *Runner) Start() error {
	r.pool.Start(r.processTask)

	if err := r.Recover(r.ctx); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	r.started.Store(true)

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop gracefully shuts down the runner. It is safe to call more than once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		r.cancel()
		r.wg.Wait()
		r.pool.Stop()
		r.queue.Close()
	})
}

// Recover loads unfinished tasks from the store and queues them again.
// Tasks left in "processing" by a crash are reset to "pending" first.
func (r *Runner) Recover(ctx context.Context) error {
	pendingTasks, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processingTasks, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pendingTasks),
		"processing_count", len(processingTasks))

	for _, record := range pendingTasks {
		r.requeue(ctx, record, "pending")
	}

	for _, record := range processingTasks {
		if err := r.store.UpdateTaskStatus(ctx, record.ID, StatusPending, nil, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing task status",
				"task_id", record.ID,
				"task_name", record.Name,
				"error", err)
			continue
		}
		r.requeue(ctx, record, "processing")
	}

	return nil
}

// requeue blocks until the record is queued or ctx ends. A record that could
// not be queued stays pending in the store for the next recovery.
func (r *Runner) requeue(ctx context.Context, record *Record, from string) {
	if err := r.queue.EnqueueWait(ctx, record); err != nil {
		r.logger.Error("failed to requeue task",
			"task_id", record.ID,
			"task_name", record.Name,
			"previous_status", from,
			"error", err)
	}
}

// processTask handles execution of a single task
func (r *Runner) processTask(ctx context.Context, record *Record, workerID int) {
	logger := r.logger.With(
		"task_id", record.ID,
		"task_name", record.Name,
		"worker_id", workerID,
	)

	if err := r.store.UpdateTaskStatus(ctx, record.ID, StatusProcessing, nil, ""); err != nil {
		logger.Error("failed to update task status to processing", "error", err)
		return
	}

	logger.Info("processing task")

	result, err := Execute(ctx, r.registry, record.Name, record.Payload)
	if err != nil {
		if updateErr := r.store.UpdateTaskStatus(ctx, record.ID, StatusFailed, nil, err.Error()); updateErr != nil {
			logger.Error("failed to update task status to failed", "error", updateErr)
		}
		r.errHandler(record, err)
		return
	}

	logger.Info("task completed successfully")
	if updateErr := r.store.UpdateTaskStatus(ctx, record.ID, StatusCompleted, result, ""); updateErr != nil {
		logger.Error("failed to update task status to completed", "error", updateErr)
	}
}

// stuckTaskMonitor periodically resets tasks that have been in "processing"
// state for longer than StuckTaskAge.
func (r *Runner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.resetStuckTasks(r.ctx)
		}
	}
}

func (r *Runner) resetStuckTasks(ctx context.Context) {
	stuckTasks, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			r.logger.Error("failed to check for stuck tasks", "error", err)
		}
		return
	}

	if len(stuckTasks) == 0 {
		return
	}
	r.logger.Info("found stuck tasks", "count", len(stuckTasks))

	for _, record := range stuckTasks {
		if err := r.store.UpdateTaskStatus(ctx, record.ID, StatusPending, nil,
			"Reset after being stuck in processing state"); err != nil {
			r.logger.Error("failed to reset stuck task status",
				"task_id", record.ID,
				"task_name", record.Name,
				"error", err)
			continue
		}
		r.requeue(ctx, record, "processing")
	}
}
