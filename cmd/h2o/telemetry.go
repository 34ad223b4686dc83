package main

import (
	"context"
	"errors"
	"io"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o/oteladapters"
)

const (
	instrumentationName = "github.com/AntonStoeckl/h2o-rendezvous-go"
	serviceName         = "h2o"
	shutdownTimeout     = 5 * time.Second
)

// Telemetry holds the OpenTelemetry providers of one run, exporting as JSON to the given writer.
type Telemetry struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
}

// NewTelemetry creates tracer and meter providers with stdout exporters writing to w.
// Nothing is exported before Shutdown, so the JSON does not interleave with the log output of the run.
func NewTelemetry(w io.Writer) (*Telemetry, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w), stdoutmetric.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tracerProvider := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter),
		trace.WithResource(res),
	)

	// The interval is far beyond any run, Shutdown performs the only collection.
	meterProvider := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(metricExporter, metric.WithInterval(time.Hour))),
		metric.WithResource(res),
	)

	return &Telemetry{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
	}, nil
}

// MetricsCollector returns the h2o.MetricsCollector backed by the meter provider.
func (t *Telemetry) MetricsCollector() *oteladapters.MetricsCollector {
	return oteladapters.NewMetricsCollector(t.MeterProvider.Meter(instrumentationName))
}

// TracingCollector returns the h2o.TracingCollector backed by the tracer provider.
func (t *Telemetry) TracingCollector() *oteladapters.TracingCollector {
	return oteladapters.NewTracingCollector(t.TracerProvider.Tracer(instrumentationName))
}

// Shutdown flushes and stops both providers, returning all errors that occurred.
func (t *Telemetry) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(
		t.TracerProvider.Shutdown(ctx),
		t.MeterProvider.Shutdown(ctx),
	)
}
