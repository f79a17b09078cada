package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"screener/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Metrics holds all custom metrics for the screener
type Metrics struct {
	// API client metrics
	APIRequestCount    metric.Int64Counter
	APIErrorCount      metric.Int64Counter
	APIRequestDuration metric.Float64Histogram

	// Business metrics
	ResumesUploaded metric.Int64Counter
	JobsCreated     metric.Int64Counter
	MatchesReceived metric.Int64Counter

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// Manager owns the OpenTelemetry providers and the custom instruments.
// A nil *Manager is valid and records nothing.
type Manager struct {
	settings       Settings
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	manualReader   *sdkmetric.ManualReader
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error
	logger         *errors.Logger
}

// NewManager sets up tracing and metrics according to settings
func NewManager(settings Settings, logger *errors.Logger) (*Manager, error) {
	if logger == nil {
		logger = errors.Nop()
	}
	m := &Manager{settings: settings, logger: logger}
	if !settings.Enabled {
		return m, nil
	}

	res, err := m.newResource()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}

	if settings.TracingEnabled {
		if err := m.initTracing(res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if settings.MetricsEnabled {
		if err := m.initMetrics(res); err != nil {
			_ = m.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	return m, nil
}

func (m *Manager) newResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(m.settings.ServiceName),
			semconv.ServiceVersion(m.settings.ServiceVersion),
			semconv.ServiceInstanceID(m.settings.ServiceInstance),
		),
	)
}

func (m *Manager) initTracing(res *resource.Resource) error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case m.settings.ConsoleOutput:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case m.settings.OTLP.Enabled:
		exporter, err = m.createOTLPTraceExporter()
	default:
		exporter = noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(m.settings.SampleRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	m.tracerProvider = tp
	m.shutdownFuncs = append(m.shutdownFuncs, tp.Shutdown)
	return nil
}

func (m *Manager) initMetrics(res *resource.Resource) error {
	readers, err := m.setupMetricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	m.meterProvider = mp
	m.shutdownFuncs = append(m.shutdownFuncs, mp.Shutdown)

	return m.initCustomMetrics()
}

func (m *Manager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if m.settings.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(m.settings.CollectionInterval)))
	}

	if m.settings.OTLP.Enabled {
		reader, err := m.createOTLPMetricsReader()
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if m.settings.Prometheus.Enabled {
		reader, server, err := StartPrometheus(m.settings.Prometheus, m.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to start Prometheus exporter: %w", err)
		}
		readers = append(readers, reader)
		m.shutdownFuncs = append(m.shutdownFuncs, server.Shutdown)
	}

	// Without an exporter the instruments still need a reader to register against
	if len(readers) == 0 {
		m.manualReader = sdkmetric.NewManualReader()
		readers = append(readers, m.manualReader)
	}

	return readers, nil
}

func (m *Manager) initCustomMetrics() error {
	meter := m.meterProvider.Meter(m.settings.ServiceName)
	metrics := &Metrics{}

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&metrics.APIRequestCount, "screener_api_requests_total", "Total number of screening API requests"},
		{&metrics.APIErrorCount, "screener_api_errors_total", "Total number of failed screening API requests"},
		{&metrics.ResumesUploaded, "screener_resumes_uploaded_total", "Total number of resume uploads"},
		{&metrics.JobsCreated, "screener_jobs_created_total", "Total number of job descriptions created"},
		{&metrics.MatchesReceived, "screener_matches_received_total", "Total number of match results received from bulk matching"},
		{&metrics.RateLimitHits, "screener_rate_limit_hits_total", "Total number of rate limit hits"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.description))
		if err != nil {
			return fmt.Errorf("failed to create %s metric: %w", c.name, err)
		}
		*c.target = counter
	}

	var err error
	metrics.APIRequestDuration, err = meter.Float64Histogram(
		"screener_api_request_duration_seconds",
		metric.WithDescription("Time spent waiting on the screening API"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create API request duration metric: %w", err)
	}

	m.metrics = metrics
	return nil
}

// Enabled reports whether telemetry is being collected
func (m *Manager) Enabled() bool {
	return m != nil && m.settings.Enabled
}

func (m *Manager) instruments() *Metrics {
	if m == nil || m.metrics == nil {
		return nil
	}
	return m.metrics
}

// RecordAPIRequest records one round trip to the screening API
func (m *Manager) RecordAPIRequest(ctx context.Context, endpoint, method string, status int, duration time.Duration, err error) {
	metrics := m.instruments()
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("method", method),
		attribute.Int("status", status),
		attribute.Bool("success", err == nil),
	)
	metrics.APIRequestCount.Add(ctx, 1, attrs)
	metrics.APIRequestDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		metrics.APIErrorCount.Add(ctx, 1, attrs)
	}
}

// RecordMatches counts the results of one bulk match
func (m *Manager) RecordMatches(ctx context.Context, count int, all bool) {
	metrics := m.instruments()
	if metrics == nil {
		return
	}
	scope := "selected"
	if all {
		scope = "all"
	}
	metrics.MatchesReceived.Add(ctx, int64(count), metric.WithAttributes(attribute.String("scope", scope)))
}

// RecordResumeUpload counts one finished upload attempt
func (m *Manager) RecordResumeUpload(ctx context.Context, success bool) {
	metrics := m.instruments()
	if metrics == nil {
		return
	}
	metrics.ResumesUploaded.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordJobCreated counts one job description submission
func (m *Manager) RecordJobCreated(ctx context.Context, success bool) {
	metrics := m.instruments()
	if metrics == nil {
		return
	}
	metrics.JobsCreated.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordRateLimitHit counts one rejected web request
func (m *Manager) RecordRateLimitHit(ctx context.Context, clientIP string) {
	metrics := m.instruments()
	if metrics == nil {
		return
	}
	metrics.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("client_ip", clientIP)))
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (m *Manager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !m.Enabled() || m.tracerProvider == nil {
		return func(h http.Handler) http.Handler { return h }
	}

	opts := []otelhttp.Option{otelhttp.WithTracerProvider(m.tracerProvider)}
	if m.meterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(m.meterProvider))
	}
	return otelhttp.NewMiddleware(m.settings.ServiceName, opts...)
}

// Tracer returns a tracer for the service
func (m *Manager) Tracer(name string) oteltrace.Tracer {
	if !m.Enabled() || m.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return m.tracerProvider.Tracer(name)
}

// Shutdown flushes and stops every exporter, returning the first error
func (m *Manager) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	var firstErr error
	for i := len(m.shutdownFuncs) - 1; i >= 0; i-- {
		if err := m.shutdownFuncs[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.shutdownFuncs = nil
	return firstErr
}

type noOpSpanExporter struct{}

func (noOpSpanExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error { return nil }
func (noOpSpanExporter) Shutdown(context.Context) error                           { return nil }

func (m *Manager) createOTLPTraceExporter() (trace.SpanExporter, error) {
	otlp := m.settings.OTLP

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(otlp.Endpoint)}
	if otlp.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlp.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlp.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

func (m *Manager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlp := m.settings.OTLP

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(otlp.Endpoint)}
	if otlp.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlp.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlp.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(m.settings.CollectionInterval)), nil
}
