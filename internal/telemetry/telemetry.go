// Package telemetry wraps an OpenTelemetry TracerProvider for the
// scheduling core: a no-op provider when tracing is disabled, otherwise an
// OTLP-gRPC exporter feeding a batching TracerProvider with a ratio-based
// sampler.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Config controls whether tracing exports and, if so, where to.
type Config struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Environment string
	SampleRate  float64
}

// Provider wraps the tracer a solve invocation's spans come from.
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
}

// Init returns a no-op Provider when cfg.Enabled is false; otherwise it
// stands up an OTLP-gRPC exporter and a sampling TracerProvider, and
// installs both as the process-global otel defaults.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{tracer: otel.Tracer(cfg.ServiceName)}, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case cfg.SampleRate <= 0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Provider{tp: tp, tracer: tp.Tracer(cfg.ServiceName)}, nil
}

// Shutdown flushes and stops the TracerProvider. A no-op Provider returns
// nil immediately.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp != nil {
		return p.tp.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the provider's tracer.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// StartSolveSpan starts a span covering one solver.Solve call. Only the
// algorithm name is known at start; iteration count and max-flow value are
// recorded after the solve completes, via SetSolveResult.
func (p *Provider) StartSolveSpan(ctx context.Context, solverKind string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "scheduler.Solve", trace.WithAttributes(attribute.String(AttrAlgorithm, solverKind)))
}

// SetSolveResult records the real post-solve iteration count and max-flow
// value on span, once the solver has reported them (scheduler.Assignment's
// Iterations/MaxFlow fields; both are legitimately zero for ILPSolver,
// which has no augmenting-path concept).
func SetSolveResult(span trace.Span, solverKind string, iterations int, maxFlow float64) {
	span.SetAttributes(AlgorithmAttributes(solverKind, iterations, maxFlow)...)
}

// SetSpanError records err on span and marks it failed.
func SetSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
