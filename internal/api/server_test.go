// internal/api/server_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/quanta/internal/api/response"
	"github.com/newthinker/quanta/internal/app"
	"github.com/newthinker/quanta/internal/config"
	"github.com/newthinker/quanta/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCollector struct {
	bars []core.OHLCV
}

func (s *stubCollector) Name() string { return "stub" }
func (s *stubCollector) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.OHLCV, error) {
	return s.bars, nil
}

func newTestServer(t *testing.T, metricsEnabled bool) (*Server, *app.App) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Export.Path = t.TempDir()
	cfg.Metrics.Enabled = metricsEnabled

	a := app.New(cfg, zap.NewNop())
	a.RegisterCollector(&stubCollector{bars: []core.OHLCV{
		{Symbol: "IBM", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 100, Volume: 1000},
		{Symbol: "IBM", Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Close: 99, Volume: 900},
	}})

	srv, err := NewServer(Config{Host: "localhost", Port: 0, MetricsPath: "/metrics"}, Dependencies{App: a}, zap.NewNop())
	require.NoError(t, err)
	return srv, a
}

func TestNewServer_RequiresApp(t *testing.T) {
	_, err := NewServer(Config{}, Dependencies{}, nil)
	assert.Error(t, err)
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t, true)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Data["status"])
	assert.ElementsMatch(t, []any{"eastmoney", "stub", "yahoo"}, resp.Data["providers"])
}

func TestServer_Analysis(t *testing.T) {
	srv, _ := newTestServer(t, true)

	body := bytes.NewBufferString(`{"symbol":"IBM","provider":"stub","start":"2024-01-01","end":"2024-01-31","save":true}`)
	req := httptest.NewRequest("POST", "/api/v1/analysis", body)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data map[string]any `json:"data"`
		Meta response.Meta  `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "stub", resp.Data["provider"])
	assert.Equal(t, float64(2), resp.Data["bars"])
	assert.True(t, strings.HasSuffix(resp.Meta.SavedTo, "/IBM_strategy_analysis.csv"))
}

func TestServer_Analysis_ProviderNeedsKey(t *testing.T) {
	srv, _ := newTestServer(t, false)

	req := httptest.NewRequest("POST", "/api/v1/analysis", bytes.NewBufferString(`{"symbol":"IBM"}`))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CONFIG_MISSING", resp.Error.Code)
}

func TestServer_Export(t *testing.T) {
	srv, _ := newTestServer(t, true)

	req := httptest.NewRequest("GET", "/api/v1/analysis/export?symbol=IBM&provider=stub&start=2024-01-01&end=2024-01-31", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "Buy Date,"))
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, true)

	req := httptest.NewRequest("GET", "/api/v1/analysis", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_Metrics(t *testing.T) {
	srv, _ := newTestServer(t, true)

	run := httptest.NewRequest("POST", "/api/v1/analysis", bytes.NewBufferString(`{"symbol":"IBM","provider":"stub"}`))
	srv.Handler().ServeHTTP(httptest.NewRecorder(), run)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `quanta_analysis_runs_total{status="ok"} 1`)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestServer_MetricsDisabled(t *testing.T) {
	srv, _ := newTestServer(t, false)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
