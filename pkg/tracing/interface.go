package tracing

import (
	"context"

	"go.opencensus.io/trace"
)

// Tracer is the tracing surface services depend on, so tests can swap it out
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, *trace.Span)
	StartServiceSpan(ctx context.Context, serviceName, methodName string) (context.Context, *trace.Span)
	EndSpan(span *trace.Span, err error)
	AddAttribute(ctx context.Context, key string, value interface{})
	MarkSpanError(ctx context.Context, err error)
	TraceMethod(ctx context.Context, serviceName, methodName string, f func(context.Context) error) error
}

// DefaultTracer forwards to the package level helpers
type DefaultTracer struct{}

func NewTracer() Tracer {
	return &DefaultTracer{}
}

func (t *DefaultTracer) StartSpan(ctx context.Context, name string) (context.Context, *trace.Span) {
	return StartSpan(ctx, name)
}

func (t *DefaultTracer) StartServiceSpan(ctx context.Context, serviceName, methodName string) (context.Context, *trace.Span) {
	return StartServiceSpan(ctx, serviceName, methodName)
}

func (t *DefaultTracer) EndSpan(span *trace.Span, err error) {
	EndSpan(span, err)
}

func (t *DefaultTracer) AddAttribute(ctx context.Context, key string, value interface{}) {
	AddAttribute(ctx, key, value)
}

func (t *DefaultTracer) MarkSpanError(ctx context.Context, err error) {
	MarkSpanError(ctx, err)
}

func (t *DefaultTracer) TraceMethod(ctx context.Context, serviceName, methodName string, f func(context.Context) error) error {
	return TraceMethod(ctx, serviceName, methodName, f)
}

var globalTracer Tracer = NewTracer()

// GetTracer returns the global tracer instance
func GetTracer() Tracer {
	return globalTracer
}

// SetTracer sets the global tracer instance
func SetTracer(tracer Tracer) {
	globalTracer = tracer
}
