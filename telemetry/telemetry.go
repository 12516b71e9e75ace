// Package telemetry wires OpenTelemetry tracing to the execution event bus.
package telemetry

import (
	"context"
	"sync"

	"github.com/hanpama/gqlexec/events"
	"github.com/hanpama/gqlexec/internal/opid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Setup configures an OTLP/gRPC trace exporter and attaches event-bus
// subscribers producing operation and subscription spans, with incremental
// payloads and subscription events recorded as span events. Subscribers attach
// to the bus installed with events.Use at the time Setup runs; with no bus
// installed, none are attached. If endpoint is empty, no telemetry is
// configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("gqlexec")}
	sub.register()

	return tp.Shutdown, nil
}

type subscriber struct {
	tracer        trace.Tracer
	execSpans     sync.Map // opid -> trace.Span
	subscrSpans   sync.Map // opid -> trace.Span
	payloadCounts sync.Map // opid -> int
}

func (s *subscriber) register() {
	events.Subscribe(func(ctx context.Context, e events.ExecuteStart) {
		id, _ := opid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "graphql.operation")
		span.SetAttributes(
			attribute.String("graphql.operation.name", e.OperationName),
			attribute.String("graphql.operation.type", e.OperationType),
		)
		s.execSpans.Store(id, span)
	})

	events.Subscribe(func(ctx context.Context, e events.ExecuteFinish) {
		id, _ := opid.FromContext(ctx)
		v, ok := s.execSpans.LoadAndDelete(id)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(attribute.Int("graphql.error_count", len(e.Errors)))
		if n, ok := s.payloadCounts.LoadAndDelete(id); ok {
			span.SetAttributes(attribute.Int("graphql.incremental.payloads", n.(int)))
		}
		span.End()
	})

	events.Subscribe(func(ctx context.Context, e events.IncrementalPayload) {
		id, _ := opid.FromContext(ctx)
		n := 0
		if v, ok := s.payloadCounts.Load(id); ok {
			n = v.(int)
		}
		s.payloadCounts.Store(id, n+1)
		if v, ok := s.execSpans.Load(id); ok {
			v.(trace.Span).AddEvent("graphql.incremental.payload",
				trace.WithAttributes(
					attribute.Int("graphql.incremental.records", e.Records),
					attribute.Bool("graphql.incremental.has_next", e.HasNext),
				))
		}
	})

	events.Subscribe(func(ctx context.Context, e events.SubscriptionStart) {
		id, _ := opid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "graphql.subscription")
		span.SetAttributes(attribute.String("graphql.operation.name", e.OperationName))
		s.subscrSpans.Store(id, span)
	})

	events.Subscribe(func(ctx context.Context, e events.SubscriptionEvent) {
		id, _ := opid.FromContext(ctx)
		if v, ok := s.subscrSpans.Load(id); ok {
			v.(trace.Span).AddEvent("graphql.subscription.event",
				trace.WithAttributes(attribute.Int("graphql.subscription.sequence", e.Sequence)))
		}
	})

	events.Subscribe(func(ctx context.Context, e events.SubscriptionFinish) {
		id, _ := opid.FromContext(ctx)
		v, ok := s.subscrSpans.LoadAndDelete(id)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(attribute.Int("graphql.subscription.events", e.Events))
		span.End()
	})
}
