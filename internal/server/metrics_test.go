package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/coachcal/internal/instrumentation"
)

func createTestProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()
	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		ServiceName:     "coachcal-test",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: instrumentation.ExporterNone,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider
}

func TestNewMetricsServer(t *testing.T) {
	t.Run("default addr", func(t *testing.T) {
		s, err := NewMetricsServer(MetricsServerConfig{MetricsHandler: http.NotFoundHandler()})
		require.NoError(t, err)
		assert.Equal(t, DefaultMetricsAddr, s.Addr())
	})

	t.Run("nil handler", func(t *testing.T) {
		_, err := NewMetricsServer(MetricsServerConfig{Addr: ":9090"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "metrics handler is required")
	})
}

func TestMetricsServer_ServesPrometheus(t *testing.T) {
	provider := createTestProvider(t)
	provider.Metrics().RecordScan(context.Background(), instrumentation.StatusSuccess, time.Second)

	s, err := NewMetricsServer(MetricsServerConfig{MetricsHandler: provider.PrometheusHandler()})
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "coachcal_scans_total")

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestMetricsServer_StartAndShutdown(t *testing.T) {
	s, err := NewMetricsServer(MetricsServerConfig{
		Addr:           "127.0.0.1:0",
		MetricsHandler: http.NotFoundHandler(),
		Health:         NewHealthChecker(),
	})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-done)
}

func getHealth(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthChecker_Readiness(t *testing.T) {
	h := NewHealthChecker()
	mux := http.NewServeMux()
	h.RegisterHealthEndpoints(mux)

	code, _ := getHealth(t, mux, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code, "not ready before the first scan")

	h.RecordScan(time.Now(), nil)
	code, body := getHealth(t, mux, "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, healthStatusOK, body["status"])

	h.RecordScan(time.Now(), errors.New("token revoked"))
	code, body = getHealth(t, mux, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, healthStatusScanFailed, body["checks"].(map[string]any)["scan"])

	code, body = getHealth(t, mux, "/healthz/detailed")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["scans"])
	assert.Equal(t, "token revoked", body["last_error"])

	h.RecordScan(time.Now(), nil)
	h.SetShuttingDown()
	code, _ = getHealth(t, mux, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	code, _ = getHealth(t, mux, "/healthz")
	assert.Equal(t, http.StatusOK, code)
}
