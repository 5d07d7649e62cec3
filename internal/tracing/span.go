package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartCallSpan starts a client span for a single GraphQL call.
func StartCallSpan(ctx context.Context, tracer trace.Tracer, endpoint string) (context.Context, trace.Span) {
	spanName := "graphql call"
	if endpoint != "" {
		spanName = "graphql " + endpoint
	}
	ctx, span := tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("rpc.system", "graphql"),
	)
	if endpoint != "" {
		span.SetAttributes(attribute.String("graphql.endpoint", endpoint))
	}
	return ctx, span
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// headerMapCarrier adapts a plain header map to the OTel TextMapCarrier interface.
type headerMapCarrier map[string]string

func (c headerMapCarrier) Get(key string) string { return c[key] }

func (c headerMapCarrier) Set(key, value string) { c[key] = value }

func (c headerMapCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// InjectHeaders returns W3C trace context headers for the current span,
// suitable for a per-call header override.
func InjectHeaders(ctx context.Context) map[string]string {
	headers := map[string]string{}
	otel.GetTextMapPropagator().Inject(ctx, headerMapCarrier(headers))
	return headers
}
