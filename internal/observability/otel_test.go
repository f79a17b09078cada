package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"screener/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNilManagerIsSafe(t *testing.T) {
	var m *Manager
	ctx := context.Background()

	assert.False(t, m.Enabled())
	m.RecordAPIRequest(ctx, "/resumes/", http.MethodGet, 200, time.Millisecond, nil)
	m.RecordMatches(ctx, 3, true)
	m.RecordResumeUpload(ctx, true)
	m.RecordJobCreated(ctx, false)
	m.RecordRateLimitHit(ctx, "127.0.0.1")
	assert.NoError(t, m.Shutdown(ctx))
}

func TestDisabledManagerPassesThrough(t *testing.T) {
	m, err := NewManager(Settings{ServiceName: "screener"}, nil)
	require.NoError(t, err)

	called := false
	h := m.HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)

	_, span := m.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestManagerRecordsCustomMetrics(t *testing.T) {
	m, err := NewManager(Settings{
		ServiceName:        "screener-test",
		ServiceVersion:     "test",
		Enabled:            true,
		MetricsEnabled:     true,
		SampleRate:         1.0,
		CollectionInterval: time.Second,
	}, nil)
	require.NoError(t, err)
	defer func() { _ = m.Shutdown(context.Background()) }()
	require.NotNil(t, m.manualReader)

	ctx := context.Background()
	m.RecordAPIRequest(ctx, "/bulk-match/", http.MethodPost, 500, 2*time.Second, errors.New("boom"))
	m.RecordMatches(ctx, 4, false)
	m.RecordResumeUpload(ctx, true)
	m.RecordJobCreated(ctx, true)
	m.RecordRateLimitHit(ctx, "10.0.0.1")

	var rm metricdata.ResourceMetrics
	require.NoError(t, m.manualReader.Collect(ctx, &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[md.Name] += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(1), sums["screener_api_requests_total"])
	assert.Equal(t, int64(1), sums["screener_api_errors_total"])
	assert.Equal(t, int64(4), sums["screener_matches_received_total"])
	assert.Equal(t, int64(1), sums["screener_resumes_uploaded_total"])
	assert.Equal(t, int64(1), sums["screener_jobs_created_total"])
	assert.Equal(t, int64(1), sums["screener_rate_limit_hits_total"])
}

func TestPrometheusExporterServesRegistry(t *testing.T) {
	_, handler, err := NewPrometheusExporter(PrometheusSettings{Enabled: true})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestSettingsFromConfig(t *testing.T) {
	assert.False(t, SettingsFromConfig(nil, "1.0").Enabled)

	cfg := &config.Config{}
	cfg.Observability.Enabled = true
	cfg.Observability.ServiceName = "screener"
	cfg.Observability.SampleRate = 1.0
	cfg.Observability.Tracing.SampleRate = 0.25

	s := SettingsFromConfig(cfg, "2.0.0")
	assert.Equal(t, "2.0.0", s.ServiceVersion)
	assert.Equal(t, 0.25, s.SampleRate)
	assert.Equal(t, 15*time.Second, s.CollectionInterval)
}
