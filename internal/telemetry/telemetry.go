// Package telemetry implements SPEC_FULL.md §7's OTLP tracing: one root
// span per Compile call, one child span per translated method, exported
// over OTLP/HTTP when enabled.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation-scope name every span is recorded
// under.
const tracerName = "classwasmc"

// Config controls whether tracing is active and where spans are
// exported.
type Config struct {
	Enabled     bool
	ExporterURL string
	ServiceName string
}

// Init wires up the global tracer provider per config, returning a
// shutdown closure the caller must run before the process exits so
// buffered spans are flushed. When config.Enabled is false, Init is a
// no-op and GetTracer returns a provider that discards every span.
func Init(ctx context.Context, config Config) (func(), error) {
	if !config.Enabled {
		return func() {}, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(config.ExporterURL),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", config.ServiceName),
			attribute.String("service.version", "dev"),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}, nil
}

// GetTracer returns the tracer every compiler phase starts spans from.
func GetTracer() oteltrace.Tracer {
	return otel.Tracer(tracerName)
}

// StartCompile opens the root span for one Compile call.
func StartCompile(ctx context.Context, moduleName string) (context.Context, oteltrace.Span) {
	return GetTracer().Start(ctx, "compile", oteltrace.WithAttributes(
		attribute.String("classwasmc.module", moduleName),
	))
}

// StartMethod opens a child span for translating one method.
func StartMethod(ctx context.Context, className, signature string) (context.Context, oteltrace.Span) {
	return GetTracer().Start(ctx, "translate_method", oteltrace.WithAttributes(
		attribute.String("classwasmc.class", className),
		attribute.String("classwasmc.signature", signature),
	))
}
