package redisq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/phrazzld/taskapi/internal/metrics"
	"github.com/phrazzld/taskapi/internal/redact"
	"github.com/phrazzld/taskapi/internal/task"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	backendName = "redis"
	tracerName  = "github.com/phrazzld/taskapi/internal/platform/redisq"
)

// enqueuer is the subset of *asynq.Client used by Client.
type enqueuer interface {
	EnqueueContext(ctx context.Context, t *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// inspector is the subset of *asynq.Inspector used by Client.
type inspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	Close() error
}

// pinger is the subset of *redis.Client used for readiness checks.
type pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// ClientConfig configures a Client.
type ClientConfig struct {
	Conn            ConnConfig
	Queue           string
	MaxRetry        int
	ResultRetention time.Duration
	SubmitTimeout   time.Duration
}

// Client submits tasks to Redis through asynq and reads their state back.
type Client struct {
	enqueuer  enqueuer
	inspector inspector
	pinger    pinger
	registry  *task.Registry
	config    ClientConfig
	logger    *slog.Logger
}

// Ensure Client implements task.Dispatcher
var _ task.Dispatcher = (*Client)(nil)

// NewClient connects lazily to the broker described by cfg.Conn.
func NewClient(cfg ClientConfig, registry *task.Registry, logger *slog.Logger) (*Client, error) {
	opts, err := ParseURL(cfg.Conn)
	if err != nil {
		return nil, err
	}

	logger = logger.With("component", "redis_dispatcher", "queue", cfg.Queue)
	logger.Info("broker client configured", "broker", redact.URL(cfg.Conn.URL))

	connOpt := AsynqOpt(opts)
	return newClient(
		asynq.NewClient(connOpt),
		asynq.NewInspector(connOpt),
		redis.NewClient(opts),
		registry,
		cfg,
		logger,
	), nil
}

func newClient(
	e enqueuer,
	i inspector,
	p pinger,
	registry *task.Registry,
	cfg ClientConfig,
	logger *slog.Logger,
) *Client {
	return &Client{
		enqueuer:  e,
		inspector: i,
		pinger:    p,
		registry:  registry,
		config:    cfg,
		logger:    logger,
	}
}

// Submit enqueues name(args...) under a new UUID and returns immediately.
func (c *Client) Submit(ctx context.Context, name string, args ...any) (handle task.Handle, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "task.submit "+name,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("task.name", name),
			attribute.String("task.backend", backendName)))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
		metrics.ObserveSubmission(name, backendName, err)
	}()

	if !c.registry.Has(name) {
		return task.Handle{}, fmt.Errorf("%w: %s", task.ErrUnknownTask, name)
	}

	payload, err := task.EncodePayloadContext(ctx, args...)
	if err != nil {
		return task.Handle{}, err
	}

	id := uuid.NewString()
	span.SetAttributes(attribute.String("task.id", id))

	if c.config.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.SubmitTimeout)
		defer cancel()
	}

	info, err := c.enqueuer.EnqueueContext(ctx, asynq.NewTask(name, payload),
		asynq.TaskID(id),
		asynq.Queue(c.config.Queue),
		asynq.MaxRetry(c.config.MaxRetry),
		asynq.Retention(c.config.ResultRetention),
	)
	if err != nil {
		c.logger.Error("failed to enqueue task",
			"task_id", id,
			"task_name", name,
			"error", redact.Error(err))
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return task.Handle{}, fmt.Errorf("enqueue %s: %w", name, err)
		}
		return task.Handle{}, fmt.Errorf("%w: enqueue %s: %v", task.ErrBrokerUnavailable, name, err)
	}

	c.logger.Debug("task enqueued", "task_id", info.ID, "task_name", name)
	return task.Handle{ID: info.ID, Name: name}, nil
}

// Lookup reads the task state and result from Redis. Completed tasks remain
// visible for the configured result retention.
func (c *Client) Lookup(ctx context.Context, id string) (*task.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := c.inspector.GetTaskInfo(c.config.Queue, id)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			return nil, fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("%w: lookup %s: %v", task.ErrBrokerUnavailable, id, err)
	}

	return toInfo(info), nil
}

// Ping checks that Redis answers within the configured timeouts.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.pinger.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", task.ErrBrokerUnavailable, err)
	}
	return nil
}

// Close releases all broker connections.
func (c *Client) Close() error {
	return errors.Join(c.enqueuer.Close(), c.inspector.Close(), c.pinger.Close())
}

// toInfo maps asynq task states onto task statuses. Archived tasks have
// exhausted their retries and count as failed.
func toInfo(info *asynq.TaskInfo) *task.Info {
	out := &task.Info{
		ID:    info.ID,
		Name:  info.Type,
		Error: info.LastErr,
	}

	switch info.State {
	case asynq.TaskStateActive:
		out.State = task.StatusProcessing
	case asynq.TaskStateCompleted:
		out.State = task.StatusCompleted
		out.Error = ""
		if len(info.Result) > 0 {
			out.Result = append([]byte(nil), info.Result...)
		}
	case asynq.TaskStateArchived:
		out.State = task.StatusFailed
	default:
		out.State = task.StatusPending
	}

	return out
}
