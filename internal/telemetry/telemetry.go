// Package telemetry wires OpenTelemetry tracing for agent and flow spans.
// Without Setup the global no-op provider is used and spans cost nothing.
package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/hupe1980/agentrelay"

// Tracer returns the tracer used by agentrelay packages. It always consults
// the current global provider so tests can inject their own.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Setup installs a tracer provider exporting spans to w when enabled. When
// disabled it leaves the global provider untouched and returns a no-op
// shutdown.
func Setup(serviceName string, enabled bool, w io.Writer) (ShutdownFunc, error) {
	if !enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create console exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)

	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
