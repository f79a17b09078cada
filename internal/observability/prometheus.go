package observability

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	apperrors "screener/internal/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusSettings holds Prometheus-specific configuration
type PrometheusSettings struct {
	Enabled  bool
	Endpoint string
	Port     string
}

// NewPrometheusExporter builds an OpenTelemetry reader backed by its own
// registry, plus the handler that serves it.
func NewPrometheusExporter(settings PrometheusSettings) (sdkmetric.Reader, http.Handler, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	endpoint := settings.Endpoint
	if endpoint == "" {
		endpoint = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(endpoint, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	return exporter, mux, nil
}

// StartPrometheus creates the exporter and serves it on a dedicated port.
// The returned server must be shut down by the caller.
func StartPrometheus(settings PrometheusSettings, logger *apperrors.Logger) (sdkmetric.Reader, *http.Server, error) {
	reader, handler, err := NewPrometheusExporter(settings)
	if err != nil {
		return nil, nil, err
	}

	addr := ":" + settings.Port
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Prometheus metrics server started", "address", listener.Addr().String(), "endpoint", settings.Endpoint)

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Prometheus server error")
		}
	}()

	return reader, server, nil
}
