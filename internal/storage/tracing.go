package storage

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/inteiros/GoStack-GoMarketplace/internal/storage"

type tracingStore struct {
	next   Store
	system string
}

// WithTracing records a client span around every call to next.
func WithTracing(next Store, system string) Store {
	return &tracingStore{next: next, system: system}
}

func (t *tracingStore) start(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "storage."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("storage.system", t.system),
			attribute.String("storage.key", key),
		),
	)
}

func (t *tracingStore) Get(ctx context.Context, key string) (string, error) {
	ctx, span := t.start(ctx, "get", key)
	defer span.End()

	value, err := t.next.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		span.SetAttributes(attribute.Bool("storage.hit", false))
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	default:
		span.SetAttributes(attribute.Bool("storage.hit", true), attribute.Int("storage.value_bytes", len(value)))
	}
	return value, err
}

func (t *tracingStore) Set(ctx context.Context, key, value string) error {
	ctx, span := t.start(ctx, "set", key)
	defer span.End()

	span.SetAttributes(attribute.Int("storage.value_bytes", len(value)))
	err := t.next.Set(ctx, key, value)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (t *tracingStore) Unwrap() Store { return t.next }
