package tracer

import (
	"context"
	"fmt"
	"log"

	"productivity-pal-be/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// ShutdownFunc flushes pending spans. Safe to call when tracing is disabled.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init installs the global tracer provider described by cfg. A disabled config
// or an exporter that cannot be built leaves the otel no-op provider in place.
func Init(ctx context.Context, cfg *config.Config) ShutdownFunc {
	if !cfg.Otel.Enabled {
		log.Println("Tracing disabled (OTEL_ENABLED=false)")
		return noopShutdown
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Otel.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Printf("Warning: tracing disabled: %v", fmt.Errorf("otlp exporter: %w", err))
		return noopShutdown
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(Resource(cfg)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Otel.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	log.Printf("[INFO] Tracing to %s as %s@%s", cfg.Otel.Endpoint, cfg.Otel.ServiceName, cfg.Otel.ServiceVersion)

	return tp.Shutdown
}

// Resource describes this process on every exported span, including which
// blob store and classifier the tracker runs with.
func Resource(cfg *config.Config) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.Otel.ServiceName),
		semconv.ServiceVersion(cfg.Otel.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.App.Environment),
		attribute.String("tracker.blob_store", cfg.Storage.Driver),
		attribute.String("tracker.ai_provider", cfg.Ai.Provider),
	)
}
