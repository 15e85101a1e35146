// Package telemetry installs the OpenTelemetry tracer provider used to
// trace sync runs.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// EnvEndpoint is the standard OTLP endpoint variable. When set and no
// explicit endpoint is configured, the exporter reads it itself.
const EnvEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"

// InstrumentationName names the tracer handed to instrumented packages.
const InstrumentationName = "github.com/flemzord/modesync"

// Config controls trace export.
type Config struct {
	ServiceName    string
	ServiceVersion string

	// Endpoint is an OTLP/HTTP host:port. Empty falls back to
	// OTEL_EXPORTER_OTLP_ENDPOINT; if neither is set spans are not exported.
	Endpoint string
	Insecure bool
}

// Exporting reports whether spans will leave the process.
func (c Config) Exporting() bool {
	if c.Endpoint != "" {
		return true
	}
	return os.Getenv(EnvEndpoint) != ""
}

// ShutdownFunc flushes and stops the provider.
type ShutdownFunc func(context.Context) error

// Setup creates a tracer provider, installs it as the global provider and
// returns it with its shutdown function.
func Setup(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, ShutdownFunc, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "modesync"
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if cfg.Exporting() {
		var clientOpts []otlptracehttp.Option
		if cfg.Endpoint != "" {
			clientOpts = append(clientOpts, otlptracehttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			clientOpts = append(clientOpts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, clientOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("telemetry: creating OTLP exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp, tp.Shutdown, nil
}

// Tracer returns the package tracer from tp, or from the global provider
// when tp is nil.
func Tracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(InstrumentationName)
}
