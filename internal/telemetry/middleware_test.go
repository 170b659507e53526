package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func newTestMeterProvider(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader, mp
}

func newTestTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func findMetric(t *testing.T, reader *sdkmetric.ManualReader, scopeName, metricName string) metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, scope := range rm.ScopeMetrics {
		if scope.Scope.Name != scopeName {
			continue
		}
		for _, m := range scope.Metrics {
			if m.Name == metricName {
				return m
			}
		}
	}
	t.Fatalf("metric %s not found in scope %s", metricName, scopeName)
	return metricdata.Metrics{}
}

func TestNewHTTPMetricsNilProvider(t *testing.T) {
	t.Parallel()

	metrics, err := NewHTTPMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, metrics)

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rr := httptest.NewRecorder()
	metrics.Middleware(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestHTTPMetricsMiddlewareRecordsRequests(t *testing.T) {
	t.Parallel()

	reader, mp := newTestMeterProvider(t)
	mw, err := MetricsMiddleware(mp)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(mw)
	r.HandleFunc("/*", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	for range 3 {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/anything?github_repo=a/b", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}

	m := findMetric(t, reader, HTTPMeterName, "readmesync_http_requests_total")
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)

	route, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("route"))
	assert.Equal(t, "/*", route.AsString())
	status, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("status_code"))
	assert.Equal(t, "400", status.AsString())
}

func TestTracingMiddlewareNilProvider(t *testing.T) {
	t.Parallel()

	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	})

	rr := httptest.NewRecorder()
	TracingMiddleware(nil)(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/hook", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestTracingMiddlewareSpans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		wantStatus codes.Code
	}{
		{name: "success", status: http.StatusOK, wantStatus: codes.Ok},
		{name: "client error", status: http.StatusBadRequest, wantStatus: codes.Error},
		{name: "server error", status: http.StatusInternalServerError, wantStatus: codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			exporter, tp := newTestTracerProvider(t)

			r := chi.NewRouter()
			r.Use(TracingMiddleware(tp))
			r.HandleFunc("/*", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sync", nil))

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, "GET /*", spans[0].Name)
			assert.Equal(t, tt.wantStatus, spans[0].Status.Code)
			assert.Contains(t, spans[0].Attributes, semconv.HTTPResponseStatusCode(tt.status))
		})
	}
}

func TestRoutePatternUnknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, unknownRoute, routePattern(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestSyncMetrics(t *testing.T) {
	t.Parallel()

	t.Run("nil provider and receiver are no-ops", func(t *testing.T) {
		t.Parallel()

		metrics, err := NewSyncMetrics(nil)
		require.NoError(t, err)
		assert.Nil(t, metrics)

		metrics.RecordSync(context.Background(), "success", time.Second)
		metrics.RecordStage(context.Background(), "fetch", time.Second, true)
	})

	t.Run("records sync outcome and duration", func(t *testing.T) {
		t.Parallel()

		reader, mp := newTestMeterProvider(t)
		metrics, err := NewSyncMetrics(mp)
		require.NoError(t, err)

		metrics.RecordSync(context.Background(), "success", 1500*time.Millisecond)
		metrics.RecordSync(context.Background(), "not_found", 100*time.Millisecond)

		m := findMetric(t, reader, SyncMeterName, "readmesync_sync_duration_seconds")
		hist, ok := m.Data.(metricdata.Histogram[float64])
		require.True(t, ok)
		require.Len(t, hist.DataPoints, 2)

		var total float64
		for _, dp := range hist.DataPoints {
			total += dp.Sum
		}
		assert.InDelta(t, 1.6, total, 0.001)
	})

	t.Run("records stage durations", func(t *testing.T) {
		t.Parallel()

		reader, mp := newTestMeterProvider(t)
		metrics, err := NewSyncMetrics(mp)
		require.NoError(t, err)

		metrics.RecordStage(context.Background(), "login", 250*time.Millisecond, false)

		m := findMetric(t, reader, SyncMeterName, "readmesync_stage_duration_seconds")
		hist, ok := m.Data.(metricdata.Histogram[float64])
		require.True(t, ok)
		require.Len(t, hist.DataPoints, 1)
		stage, _ := hist.DataPoints[0].Attributes.Value(attribute.Key("stage"))
		assert.Equal(t, "login", stage.AsString())
		assert.InDelta(t, 0.25, hist.DataPoints[0].Sum, 0.001)
	})
}
