package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/phrazzld/taskapi/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/phrazzld/taskapi/internal/task"

// Execute decodes payload, runs the function registered under name and
// returns its JSON encoded result. It is shared by every worker implementation.
// The execution span continues the trace recorded in the payload at submission.
func Execute(ctx context.Context, registry *Registry, name string, payload []byte) ([]byte, error) {
	ctx = extractTraceContext(ctx, payload)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "task.execute "+name,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attribute.String("task.name", name)))
	defer span.End()

	result, err := execute(ctx, registry, name, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.TaskExecutionsTotal.WithLabelValues(name, string(StatusFailed)).Inc()
		return nil, err
	}

	metrics.TaskExecutionsTotal.WithLabelValues(name, string(StatusCompleted)).Inc()
	return result, nil
}

func execute(ctx context.Context, registry *Registry, name string, payload []byte) ([]byte, error) {
	fn, err := registry.Lookup(name)
	if err != nil {
		return nil, err
	}

	args, err := DecodePayload(payload)
	if err != nil {
		return nil, err
	}

	value, err := fn(ctx, args)
	if err != nil {
		return nil, err
	}

	result, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result of %s: %w", name, err)
	}
	return result, nil
}
