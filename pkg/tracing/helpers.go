package tracing

import (
	"context"
	"fmt"
	"net/http"

	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/trace"
)

// StartServiceSpan starts a span named "<service>.<method>"
func StartServiceSpan(ctx context.Context, serviceName, methodName string) (context.Context, *trace.Span) {
	return trace.StartSpan(ctx, fmt.Sprintf("%s.%s", serviceName, methodName))
}

func markStatus(span *trace.Span, err error) {
	if err == nil || span == nil {
		return
	}
	span.SetStatus(trace.Status{
		Code:    trace.StatusCodeUnknown,
		Message: err.Error(),
	})
}

// EndSpan ends a span and records any error
func EndSpan(span *trace.Span, err error) {
	markStatus(span, err)
	span.End()
}

// TraceMethod runs f inside a service span
func TraceMethod(ctx context.Context, serviceName, methodName string, f func(context.Context) error) error {
	ctx, span := StartServiceSpan(ctx, serviceName, methodName)
	defer span.End()

	err := f(ctx)
	markStatus(span, err)
	return err
}

// AddAttribute adds an attribute to the current span
func AddAttribute(ctx context.Context, key string, value interface{}) {
	span := trace.FromContext(ctx)
	if span == nil {
		return
	}

	switch v := value.(type) {
	case string:
		span.AddAttributes(trace.StringAttribute(key, v))
	case int64:
		span.AddAttributes(trace.Int64Attribute(key, v))
	case int:
		span.AddAttributes(trace.Int64Attribute(key, int64(v)))
	case bool:
		span.AddAttributes(trace.BoolAttribute(key, v))
	case fmt.Stringer:
		span.AddAttributes(trace.StringAttribute(key, v.String()))
	default:
		span.AddAttributes(trace.StringAttribute(key, fmt.Sprintf("%v", v)))
	}
}

// MarkSpanError marks the current span as failed with the given error
func MarkSpanError(ctx context.Context, err error) {
	markStatus(trace.FromContext(ctx), err)
}

// WrapHandler traces every request served by h, one span per "METHOD /path"
func WrapHandler(h http.Handler) http.Handler {
	return &ochttp.Handler{
		Handler: h,
		FormatSpanName: func(r *http.Request) string {
			return r.Method + " " + r.URL.Path
		},
		IsPublicEndpoint: true,
	}
}
