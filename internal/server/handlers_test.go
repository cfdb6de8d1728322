package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovtrader/ov-trader/internal/config"
	"github.com/ovtrader/ov-trader/internal/service"
	"github.com/ovtrader/ov-trader/internal/signals"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := service.New(config.DefaultTraderConfig(), service.Deps{
		Signals: signals.NewSyntheticSource(90, 42),
		Prices:  signals.NewSyntheticSource(90, 42),
		Log:     zerolog.Nop(),
	})
	return New(Config{Port: 0, Log: zerolog.Nop(), Service: svc, DevMode: true})
}

func doRequest(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec, payload := doRequest(t, s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", payload["status"])
}

func TestRootListsEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec, payload := doRequest(t, s, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OV Trader API", payload["name"])
	assert.NotEmpty(t, payload["endpoints"])
}

func TestConfigRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec, payload := doRequest(t, s, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := payload["config"].(map[string]interface{})
	risk := cfg["risk"].(map[string]interface{})
	assert.Equal(t, 2.0, risk["max_leverage"])

	rec, payload = doRequest(t, s, http.MethodPut, "/config",
		`{"risk": {"max_leverage": 3.0}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cfg = payload["config"].(map[string]interface{})
	risk = cfg["risk"].(map[string]interface{})
	assert.Equal(t, 3.0, risk["max_leverage"])

	// The update sticks
	rec, payload = doRequest(t, s, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	risk = payload["config"].(map[string]interface{})["risk"].(map[string]interface{})
	assert.Equal(t, 3.0, risk["max_leverage"])
}

func TestUpdateConfig_InvalidBody(t *testing.T) {
	s := newTestServer(t)

	rec, payload := doRequest(t, s, http.MethodPut, "/config", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON body", payload["error"])
}

func TestTriggerAndFetchRun(t *testing.T) {
	s := newTestServer(t)

	rec, payload := doRequest(t, s, http.MethodPost, "/runs", `{"notes": "api test"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	run := payload["run"].(map[string]interface{})
	assert.Equal(t, "completed", run["status"])
	assert.Equal(t, "api test", run["notes"])
	runID := run["id"].(string)
	require.NotEmpty(t, runID)

	rec, payload = doRequest(t, s, http.MethodGet, "/runs/"+runID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := payload["run"].(map[string]interface{})
	assert.Equal(t, runID, fetched["id"])

	rec, payload = doRequest(t, s, http.MethodGet, "/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	runs := payload["runs"].([]interface{})
	assert.Len(t, runs, 1)
}

func TestTriggerRun_EmptyBodyIsAllowed(t *testing.T) {
	s := newTestServer(t)

	rec, payload := doRequest(t, s, http.MethodPost, "/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	run := payload["run"].(map[string]interface{})
	assert.Equal(t, "completed", run["status"])
}

func TestTriggerRun_CamelCaseOverrideAccepted(t *testing.T) {
	s := newTestServer(t)

	rec, payload := doRequest(t, s, http.MethodPost, "/runs",
		`{"overrideConfig": {"execution": {"target_gross_exposure": 0.5}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	run := payload["run"].(map[string]interface{})
	snapshot := run["config_snapshot"].(map[string]interface{})
	execution := snapshot["execution"].(map[string]interface{})
	assert.Equal(t, 0.5, execution["target_gross_exposure"])
}

func TestGetRun_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec, payload := doRequest(t, s, http.MethodGet, "/runs/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Run not found", payload["error"])
}

func TestTriggerAndListBacktests(t *testing.T) {
	s := newTestServer(t)

	rec, payload := doRequest(t, s, http.MethodPost, "/backtests", "")
	require.Equal(t, http.StatusOK, rec.Code)
	backtest := payload["backtest"].(map[string]interface{})
	assert.Equal(t, "completed", backtest["status"])

	rec, payload = doRequest(t, s, http.MethodGet, "/backtests", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, payload["backtests"], 1)
}

func TestTriggerAndListDemos(t *testing.T) {
	s := newTestServer(t)

	rec, payload := doRequest(t, s, http.MethodPost, "/demos", `{"initial_balance": 250}`)
	require.Equal(t, http.StatusOK, rec.Code)
	demo := payload["demo"].(map[string]interface{})
	assert.Equal(t, "completed", demo["status"])
	assert.Equal(t, 250.0, demo["initial_balance"])

	rec, payload = doRequest(t, s, http.MethodGet, "/demos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, payload["demos"], 1)
}

func TestDashboardEndpoint(t *testing.T) {
	s := newTestServer(t)
	doRequest(t, s, http.MethodPost, "/runs", "")

	rec, payload := doRequest(t, s, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, payload, "config")
	assert.Contains(t, payload, "metrics")
	assert.Len(t, payload["runs"], 1)
}

func TestQueryLimit(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 3; i++ {
		doRequest(t, s, http.MethodPost, "/demos", "")
	}

	rec, payload := doRequest(t, s, http.MethodGet, "/demos?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, payload["demos"], 2)

	// Malformed limits fall back to the default
	rec, payload = doRequest(t, s, http.MethodGet, "/demos?limit=abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, payload["demos"], 3)
}
