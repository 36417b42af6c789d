package observability

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observability owns the OpenTelemetry meter and tracer used by the HTTP layer.
// The zero value is usable and records nothing.
type Observability struct {
	meterProvider   *metric.MeterProvider
	tracing         *Tracing
	meter           otelmetric.Meter
	requestCounter  otelmetric.Int64Counter
	requestDuration otelmetric.Float64Histogram
	tracer          trace.Tracer
}

// New registers an OpenTelemetry meter provider backed by the Prometheus
// exporter, so instruments appear on the default /metrics handler.
func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{tracer: noop.NewTracerProvider().Tracer(serviceName)}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	o := &Observability{
		meterProvider: provider,
		meter:         provider.Meter(serviceName),
		tracer:        otel.Tracer(serviceName),
	}
	if err := o.initInstruments(); err != nil {
		log.Printf("Failed to create instruments: %v", err)
	}
	return o
}

func (o *Observability) initInstruments() error {
	var err error
	o.requestCounter, err = o.meter.Int64Counter(
		"http.requests",
		otelmetric.WithDescription("Number of HTTP requests served"),
	)
	if err != nil {
		return fmt.Errorf("request counter: %w", err)
	}

	o.requestDuration, err = o.meter.Float64Histogram(
		"http.request.duration",
		otelmetric.WithDescription("HTTP request processing duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("request duration: %w", err)
	}
	return nil
}

// WithTracing attaches a tracer provider. Spans started afterwards are exported.
func (o *Observability) WithTracing(t *Tracing, serviceName string) {
	o.tracing = t
	if t != nil {
		o.tracer = t.provider.Tracer(serviceName)
	}
}

// StartSpan starts a server span. Without tracing it returns a no-op span.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, name)
	}
	return o.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
}

// RecordRequest counts one served request and its latency.
func (o *Observability) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	if o.requestCounter != nil {
		o.requestCounter.Add(ctx, 1, attrs)
	}
	if o.requestDuration != nil {
		o.requestDuration.Record(ctx, float64(duration.Microseconds())/1000.0, attrs)
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.tracing != nil {
		if err := o.tracing.Shutdown(ctx); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			log.Printf("meter shutdown: %v", err)
		}
	}
}
