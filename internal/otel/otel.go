package otel

import (
	"context"
	"fmt"
	"sync"

	eventbus "github.com/hanpama/gqlguard/internal/eventbus"
	events "github.com/hanpama/gqlguard/internal/events"
	reqid "github.com/hanpama/gqlguard/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
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

	unsubscribe := Register(otel.Tracer("gqlguard"))
	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Register subscribes tracer to validation and resolve events on the global
// bus. Spans are correlated by the request ID in the event context.
func Register(tracer trace.Tracer) (unsubscribe func()) {
	s := &subscriber{tracer: tracer}
	return s.register()
}

type subscriber struct {
	tracer          trace.Tracer
	validationSpans sync.Map // rid -> trace.Span
	resolveSpans    sync.Map // rid/path -> trace.Span
}

func resolveKey(rid int64, path string) string { return fmt.Sprintf("%d/%s", rid, path) }

func (s *subscriber) register() func() {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.ValidationStart) {
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "graphql.validate")
			span.SetAttributes(
				attribute.String("graphql.operation.name", e.OperationName),
				attribute.String("graphql.operation.type", e.OperationType),
			)
			s.validationSpans.Store(rid, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.ValidationFinish) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.validationSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(attribute.Int("graphql.error_count", len(e.Errors)))
			if len(e.Errors) > 0 {
				span.SetStatus(codes.Error, e.Errors[0].Error())
			}
			span.End()
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.ResolveStart) {
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "graphql.resolve")
			span.SetAttributes(
				attribute.String("graphql.field.parent", e.ObjectType),
				attribute.String("graphql.field.name", e.Field),
				attribute.String("graphql.field.path", e.Path),
			)
			s.resolveSpans.Store(resolveKey(rid, e.Path), span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.ResolvedValueRejected) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.resolveSpans.Load(resolveKey(rid, e.Path))
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.AddEvent("resolved value rejected", trace.WithAttributes(
				attribute.String("graphql.field.type", e.Type),
			))
			if e.Err != nil {
				span.RecordError(e.Err)
			}
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.ResolveFinish) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.resolveSpans.LoadAndDelete(resolveKey(rid, e.Path))
			if !ok {
				return
			}
			span := v.(trace.Span)
			if e.Err != nil {
				span.RecordError(e.Err)
				span.SetStatus(codes.Error, e.Err.Error())
			}
			span.End()
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
