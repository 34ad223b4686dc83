package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

// TracingCollector implements h2o.TracingCollector using the OpenTelemetry tracing API.
// Spans started from a context that already carries a span become its children,
// so the atom spans of a run are nested below the run span.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a new OpenTelemetry tracing collector.
// The tracer should be created from your OpenTelemetry TracerProvider.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts an OpenTelemetry span with the given name and string attributes.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, h2o.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan sets the final attributes and the status, then ends the span.
// SpanContext values not created by this collector are ignored.
func (t *TracingCollector) FinishSpan(spanCtx h2o.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	otelSpanCtx.span.SetAttributes(toAttributes(attrs)...)
	otelSpanCtx.SetStatus(status)
	otelSpanCtx.span.End()
}

var _ h2o.TracingCollector = (*TracingCollector)(nil)

// OTelSpanContext implements h2o.SpanContext by wrapping an OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus maps the simulation's status strings to OpenTelemetry status codes.
// Unknown statuses are recorded as a "status" attribute.
func (s *OTelSpanContext) SetStatus(status string) {
	switch status {
	case "success":
		s.span.SetStatus(codes.Ok, "")
	case "error":
		s.span.SetStatus(codes.Error, "atom failed")
	case "canceled":
		s.span.SetStatus(codes.Error, "run canceled")
	default:
		s.span.SetAttributes(attribute.String("status", status))
	}
}

// AddAttribute adds a string attribute to the span.
func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var _ h2o.SpanContext = (*OTelSpanContext)(nil)
