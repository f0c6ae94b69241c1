package tracing

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"contrib.go.opencensus.io/exporter/jaeger"
	"contrib.go.opencensus.io/exporter/prometheus"
	"contrib.go.opencensus.io/exporter/zipkin"
	"contrib.go.opencensus.io/integrations/ocsql"
	datadog "github.com/DataDog/opencensus-go-exporter-datadog"
	zipkinhttp "github.com/openzipkin/zipkin-go/reporter/http"
	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/trace"

	"github.com/Notifuse/mailblocks/config"
)

// InitTracing initializes OpenCensus tracing with the given configuration
// codecov:ignore:start
func InitTracing(tracingConfig *config.TracingConfig) error {
	if !tracingConfig.Enabled {
		return nil
	}

	trace.ApplyConfig(trace.Config{
		DefaultSampler: trace.ProbabilitySampler(tracingConfig.SamplingProbability),
	})

	if tracingConfig.TraceExporter != "none" && tracingConfig.TraceExporter != "" {
		if err := initTraceExporter(tracingConfig); err != nil {
			return err
		}
	}

	if tracingConfig.MetricsExporter != "none" && tracingConfig.MetricsExporter != "" {
		if err := initMetricsExporters(tracingConfig); err != nil {
			return err
		}
	}

	if err := RegisterHTTPServerViews(); err != nil {
		return fmt.Errorf("failed to register HTTP server views: %w", err)
	}

	log.Printf("OpenCensus initialized with trace exporter: %s, metrics exporters: %s",
		tracingConfig.TraceExporter, tracingConfig.MetricsExporter)
	return nil
}

func initTraceExporter(cfg *config.TracingConfig) error {
	switch cfg.TraceExporter {
	case "jaeger":
		return initJaegerExporter(cfg)
	case "zipkin":
		return initZipkinExporter(cfg)
	case "datadog":
		return initDatadogTraceExporter(cfg)
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
}

// initMetricsExporters accepts a comma separated list of exporters
func initMetricsExporters(cfg *config.TracingConfig) error {
	if cfg.MetricsExporter == "none" || cfg.MetricsExporter == "" {
		return nil
	}

	initialized := make([]string, 0, 2)
	for _, exporter := range strings.Split(cfg.MetricsExporter, ",") {
		exporter = strings.TrimSpace(exporter)
		if exporter == "" {
			continue
		}

		var err error
		switch exporter {
		case "prometheus":
			err = initPrometheusExporter(cfg)
		case "datadog":
			err = initDatadogMetricsExporter(cfg)
		default:
			return fmt.Errorf("unsupported metrics exporter: %s", exporter)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize %s metrics exporter: %w", exporter, err)
		}
		initialized = append(initialized, exporter)
	}

	// database views from ocsql
	if err := view.Register(ocsql.DefaultViews...); err != nil {
		return fmt.Errorf("failed to register database views: %w", err)
	}

	log.Printf("Initialized metrics exporters: %s", strings.Join(initialized, ", "))
	return nil
}

func initJaegerExporter(cfg *config.TracingConfig) error {
	if cfg.JaegerEndpoint == "" {
		return fmt.Errorf("Jaeger endpoint is required for Jaeger exporter")
	}

	je, err := jaeger.NewExporter(jaeger.Options{
		CollectorEndpoint: cfg.JaegerEndpoint,
		ServiceName:       cfg.ServiceName,
		Process: jaeger.Process{
			ServiceName: cfg.ServiceName,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	trace.RegisterExporter(je)
	return nil
}

func initZipkinExporter(cfg *config.TracingConfig) error {
	if cfg.ZipkinEndpoint == "" {
		return fmt.Errorf("Zipkin endpoint is required for Zipkin exporter")
	}

	reporter := zipkinhttp.NewReporter(cfg.ZipkinEndpoint)
	trace.RegisterExporter(zipkin.NewExporter(reporter, nil))
	return nil
}

func datadogAgent(cfg *config.TracingConfig) string {
	if cfg.DatadogAgentAddress != "" {
		return cfg.DatadogAgentAddress
	}
	return cfg.AgentEndpoint
}

func datadogOptions(cfg *config.TracingConfig, agentAddr string) datadog.Options {
	options := datadog.Options{
		Service:   cfg.ServiceName,
		TraceAddr: agentAddr,
		StatsAddr: agentAddr,
		OnError: func(err error) {
			log.Printf("Datadog exporter error: %v", err)
		},
	}
	if cfg.DatadogAPIKey != "" {
		options.GlobalTags = map[string]interface{}{"api_key": cfg.DatadogAPIKey}
	}
	return options
}

func initDatadogTraceExporter(cfg *config.TracingConfig) error {
	agentAddr := datadogAgent(cfg)
	if agentAddr == "" {
		return fmt.Errorf("Datadog agent address is required for Datadog exporter")
	}

	exporter, err := datadog.NewExporter(datadogOptions(cfg, agentAddr))
	if err != nil {
		return fmt.Errorf("failed to create Datadog exporter: %w", err)
	}

	trace.RegisterExporter(exporter)
	return nil
}

func initDatadogMetricsExporter(cfg *config.TracingConfig) error {
	agentAddr := datadogAgent(cfg)
	if agentAddr == "" {
		return fmt.Errorf("Datadog agent address is required for Datadog metrics exporter")
	}

	exporter, err := datadog.NewExporter(datadogOptions(cfg, agentAddr))
	if err != nil {
		return fmt.Errorf("failed to create Datadog metrics exporter: %w", err)
	}

	view.RegisterExporter(exporter)
	return nil
}

// initPrometheusExporter registers the exporter and serves /metrics on its own port
func initPrometheusExporter(cfg *config.TracingConfig) error {
	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: strings.ReplaceAll(cfg.ServiceName, "-", "_"),
		OnError: func(err error) {
			log.Printf("Prometheus exporter error: %v", err)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	view.RegisterExporter(pe)

	if cfg.PrometheusPort > 0 {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", pe)

			server := &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.PrometheusPort),
				Handler: mux,
			}

			log.Printf("Starting Prometheus metrics server on :%d", cfg.PrometheusPort)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("Failed to start Prometheus metrics server: %v", err)
			}
		}()
	}

	return nil
}

// RegisterDBDriver wraps a database/sql driver with ocsql and returns the name to open it with
func RegisterDBDriver(driverName string) (string, error) {
	wrapped, err := ocsql.Register(driverName, ocsql.WithAllTraceOptions())
	if err != nil {
		return "", fmt.Errorf("failed to register opencensus sql driver: %w", err)
	}
	return wrapped, nil
}

// RegisterHTTPServerViews registers views for HTTP server metrics
func RegisterHTTPServerViews() error {
	return view.Register(
		ochttp.ServerRequestCountView,
		ochttp.ServerRequestBytesView,
		ochttp.ServerResponseBytesView,
		ochttp.ServerLatencyView,
		ochttp.ServerRequestCountByMethod,
		ochttp.ServerResponseCountByStatusCode,
	)
}

// StartSpan starts a new span with the given name and returns a context with the span
func StartSpan(ctx context.Context, name string) (context.Context, *trace.Span) {
	return trace.StartSpan(ctx, name)
}

// StartSpanWithAttributes starts a new span with attributes and returns a context with the span
func StartSpanWithAttributes(ctx context.Context, name string, attrs ...trace.Attribute) (context.Context, *trace.Span) {
	ctx, span := trace.StartSpan(ctx, name)
	span.AddAttributes(attrs...)
	return ctx, span
}

// codecov:ignore:end
