// Package telemetry installs the OpenTelemetry tracer provider and reports
// finished spans through the logger.
package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/justrun/internal/core/ports"
)

// Provider owns the SDK tracer provider.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// NewProvider creates a Provider whose spans are reported to logger at
// debug level once they end.
func NewProvider(logger ports.Logger, opts ...sdktrace.TracerProviderOption) *Provider {
	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithSpanProcessor(NewLogProcessor(logger)),
	}, opts...)
	return &Provider{tp: sdktrace.NewTracerProvider(opts...)}
}

// Install registers the provider as the global tracer provider.
func (p *Provider) Install() {
	otel.SetTracerProvider(p.tp)
}

// Tracer returns a tracer with the given instrumentation name.
func (p *Provider) Tracer(name string) trace.Tracer {
	return p.tp.Tracer(name)
}

// Shutdown flushes and stops every span processor.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.tp.Shutdown(ctx)
}

var _ sdktrace.SpanProcessor = (*LogProcessor)(nil)

// LogProcessor is a span processor that logs span timings.
type LogProcessor struct {
	logger ports.Logger
}

// NewLogProcessor creates a LogProcessor.
func NewLogProcessor(logger ports.Logger) *LogProcessor {
	return &LogProcessor{logger: logger}
}

// OnStart is a no-op; spans are reported when they end.
func (p *LogProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd logs the span name, duration, attributes and error status.
func (p *LogProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	p.logger.Debug(FormatSpan(s))
}

// Shutdown implements sdktrace.SpanProcessor.
func (p *LogProcessor) Shutdown(context.Context) error { return nil }

// ForceFlush implements sdktrace.SpanProcessor.
func (p *LogProcessor) ForceFlush(context.Context) error { return nil }

// FormatSpan renders a finished span as a single line.
func FormatSpan(s sdktrace.ReadOnlySpan) string {
	var b strings.Builder
	elapsed := s.EndTime().Sub(s.StartTime()).Round(time.Microsecond)
	fmt.Fprintf(&b, "span %s took %s", s.Name(), elapsed)

	for _, kv := range s.Attributes() {
		fmt.Fprintf(&b, " %s=%s", kv.Key, kv.Value.Emit())
	}

	if status := s.Status(); status.Code == codes.Error {
		fmt.Fprintf(&b, " error=%q", status.Description)
	}
	return b.String()
}
