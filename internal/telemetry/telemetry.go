// Package telemetry sets up OpenTelemetry tracing for flowdraft.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/zjrosen/flowdraft/internal/log"
)

// InstrumentationName is the OTel instrumentation scope name.
const InstrumentationName = "github.com/zjrosen/flowdraft"

// Options configures tracing.
type Options struct {
	Enabled bool
	// TracesPath receives spans as JSON lines when no OTLP endpoint is set.
	TracesPath string
	// OTLPEndpoint is a host:port accepting OTLP over gRPC.
	OTLPEndpoint string

	ServiceName    string
	ServiceVersion string
}

// Provider is the configured tracer provider and its shutdown hook.
type Provider struct {
	trace.TracerProvider
	shutdown []func(context.Context) error
}

var _ trace.TracerProvider = (*Provider)(nil)

// ComponentTracer returns the flowdraft tracer for the named component.
func (p *Provider) ComponentTracer(component string) trace.Tracer {
	return p.TracerProvider.Tracer(InstrumentationName + "/" + component)
}

// Shutdown flushes pending spans and releases exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Setup builds a tracer provider from opts and installs it globally. When
// tracing is disabled, or no destination is configured, spans are discarded.
func Setup(ctx context.Context, opts Options) (*Provider, error) {
	if !opts.Enabled || (opts.OTLPEndpoint == "" && opts.TracesPath == "") {
		p := &Provider{TracerProvider: noop.NewTracerProvider()}
		otel.SetTracerProvider(p.TracerProvider)
		return p, nil
	}

	p := &Provider{}
	var exporter sdktrace.SpanExporter
	if opts.OTLPEndpoint != "" {
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(opts.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("creating OTLP exporter: %w", err)
		}
		exporter = exp
		log.Info(log.CatTelemetry, "Exporting traces over OTLP", "endpoint", opts.OTLPEndpoint)
	} else {
		if err := os.MkdirAll(filepath.Dir(opts.TracesPath), 0750); err != nil {
			return nil, fmt.Errorf("creating traces directory: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.TracesPath,
			MaxSize:    10,
			MaxBackups: 2,
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(rotator))
		if err != nil {
			_ = rotator.Close()
			return nil, fmt.Errorf("creating trace file exporter: %w", err)
		}
		exporter = exp
		p.shutdown = append(p.shutdown, func(context.Context) error { return rotator.Close() })
		log.Info(log.CatTelemetry, "Writing traces to file", "path", opts.TracesPath)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", opts.ServiceName),
			attribute.String("service.version", opts.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("building resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	p.TracerProvider = tp
	// provider first so spans are flushed before the file closes
	p.shutdown = append([]func(context.Context) error{tp.Shutdown}, p.shutdown...)
	return p, nil
}
