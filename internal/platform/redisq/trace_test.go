package redisq

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/taskapi/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestWorkerContinuesSubmitTrace(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	requestCtx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}))

	registry := newTestRegistry(t)
	var seen trace.TraceID
	require.NoError(t, registry.Register("trace_task", func(ctx context.Context, _ task.Args) (any, error) {
		seen = trace.SpanContextFromContext(ctx).TraceID()
		return "ok", nil
	}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	enq := &fakeEnqueuer{}
	client := newClient(enq, &fakeInspector{}, &fakePinger{}, registry,
		ClientConfig{Queue: "default", SubmitTimeout: time.Second}, logger)

	_, err = client.Submit(requestCtx, "trace_task")
	require.NoError(t, err)
	require.Len(t, enq.tasks, 1)
	assert.Contains(t, string(enq.tasks[0].Payload()), traceID.String())

	// The worker runs in another process with a fresh context.
	require.NoError(t, NewHandler(registry, logger).ProcessTask(context.Background(), enq.tasks[0]))
	assert.Equal(t, traceID, seen)
}
