package task

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Args holds the positional arguments of a task, each still JSON encoded.
type Args []json.RawMessage

// payload is the wire form of a task submission. Headers carries the
// submitter's trace context so execution joins the same trace.
type payload struct {
	Args    []json.RawMessage `json:"args"`
	Headers map[string]string `json:"headers,omitempty"`
}

// EncodePayload serializes positional arguments as {"args": [...]}.
func EncodePayload(args ...any) ([]byte, error) {
	return EncodePayloadContext(context.Background(), args...)
}

// EncodePayloadContext is EncodePayload plus the trace context of ctx,
// injected with the global propagator.
func EncodePayloadContext(ctx context.Context, args ...any) ([]byte, error) {
	encoded := make([]json.RawMessage, 0, len(args))
	for i, arg := range args {
		b, err := json.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %v", ErrInvalidArgs, i, err)
		}
		encoded = append(encoded, b)
	}

	headers := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, headers)

	p := payload{Args: encoded}
	if len(headers) > 0 {
		p.Headers = headers
	}

	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return b, nil
}

// DecodePayload is the inverse of EncodePayload. An empty payload has no arguments.
func DecodePayload(data []byte) (Args, error) {
	if len(data) == 0 {
		return Args{}, nil
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if p.Args == nil {
		return Args{}, nil
	}
	return Args(p.Args), nil
}

// extractTraceContext returns ctx joined to the trace carried in data, if any.
// Malformed payloads are left for DecodePayload to report.
func extractTraceContext(ctx context.Context, data []byte) context.Context {
	var p payload
	if len(data) == 0 || json.Unmarshal(data, &p) != nil || len(p.Headers) == 0 {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(p.Headers))
}

// Expect returns ErrInvalidArgs unless exactly n arguments are present.
func (a Args) Expect(name string, n int) error {
	if len(a) != n {
		return fmt.Errorf("%w: %s takes %d arguments, got %d", ErrInvalidArgs, name, n, len(a))
	}
	return nil
}
