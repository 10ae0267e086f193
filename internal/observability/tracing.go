package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName is the tracer name used for compile spans.
const InstrumentationName = "github.com/xraph/kiln"

// TracingConfig configures export of compile spans over OTLP/HTTP.
type TracingConfig struct {
	Enabled        bool    `yaml:"enabled" json:"enabled"`
	Endpoint       string  `yaml:"endpoint" json:"endpoint"`
	ServiceName    string  `yaml:"service_name" json:"service_name"`
	ServiceVersion string  `yaml:"service_version" json:"service_version"`
	Insecure       bool    `yaml:"insecure" json:"insecure"`
	SampleRate     float64 `yaml:"sample_rate" json:"sample_rate"`
}

// ShutdownFunc flushes and stops a tracer provider.
type ShutdownFunc func(context.Context) error

// NewTracerProvider returns an SDK tracer provider exporting to the configured
// endpoint, or a no-op provider when tracing is disabled.
func NewTracerProvider(ctx context.Context, config TracingConfig) (oteltrace.TracerProvider, ShutdownFunc, error) {
	if !config.Enabled {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{}
	if config.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(config.Endpoint))
	}
	if config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(createResource(config)),
		sdktrace.WithSampler(createSampler(config)),
	)
	return provider, provider.Shutdown, nil
}

func createResource(config TracingConfig) *resource.Resource {
	name := config.ServiceName
	if name == "" {
		name = "kiln"
	}
	attrs := []attribute.KeyValue{semconv.ServiceName(name)}
	if config.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(config.ServiceVersion))
	}
	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}

func createSampler(config TracingConfig) sdktrace.Sampler {
	if config.SampleRate > 0 && config.SampleRate < 1 {
		return sdktrace.TraceIDRatioBased(config.SampleRate)
	}
	return sdktrace.AlwaysSample()
}

// Tracer returns the compile tracer of provider.
func Tracer(provider oteltrace.TracerProvider) oteltrace.Tracer {
	if provider == nil {
		provider = noop.NewTracerProvider()
	}
	return provider.Tracer(InstrumentationName)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
