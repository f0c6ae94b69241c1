package middleware

import (
	"net/http"

	"go.opencensus.io/trace"

	"github.com/Notifuse/mailblocks/pkg/tracing"
)

// Tracing opens one span per request and annotates it with request details and the
// response status
func Tracing(next http.Handler) http.Handler {
	annotated := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := trace.FromContext(r.Context())
		if span != nil {
			span.AddAttributes(
				trace.StringAttribute("http.host", r.Host),
				trace.StringAttribute("http.user_agent", r.UserAgent()),
				trace.StringAttribute("http.method", r.Method),
				trace.StringAttribute("http.path", r.URL.Path),
			)

			// template ids travel in the query string
			if r.URL.RawQuery != "" {
				span.AddAttributes(trace.StringAttribute("http.query", r.URL.RawQuery))
			}
			if requestID := r.Header.Get("X-Request-ID"); requestID != "" {
				span.AddAttributes(trace.StringAttribute("http.request_id", requestID))
			}
		}

		next.ServeHTTP(&traceResponseWriter{ResponseWriter: w, span: span}, r)
	})

	return tracing.WrapHandler(annotated)
}

// traceResponseWriter records the status code on the request span
type traceResponseWriter struct {
	http.ResponseWriter
	span       *trace.Span
	statusCode int
}

func (trw *traceResponseWriter) WriteHeader(code int) {
	trw.statusCode = code

	if trw.span != nil {
		trw.span.AddAttributes(trace.Int64Attribute("http.status_code", int64(code)))
		if code >= 400 {
			trw.span.SetStatus(trace.Status{
				Code:    trace.StatusCodeUnknown,
				Message: http.StatusText(code),
			})
		}
	}

	trw.ResponseWriter.WriteHeader(code)
}

var _ http.ResponseWriter = (*traceResponseWriter)(nil)
