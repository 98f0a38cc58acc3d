package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dpapukchiev/ridehail-sim/config"
)

func smallConfig() config.Config {
	cfg := config.Default()
	cfg.Scenario.NumRiders = 10
	cfg.Scenario.NumDrivers = 10
	cfg.Scenario.InitialRiderCount = 3
	cfg.Scenario.InitialDriverCount = 3
	cfg.Logging.Level = "error"
	return cfg
}

func TestHandleRouteReportsScenarioGeography(t *testing.T) {
	srv, err := New(smallConfig(), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/route", nil)
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out routeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, smallConfig().Scenario.NumRiders, out.NumRiders)
	require.NotEmpty(t, out.RunID)
}

func TestHandleControlUpdatesSpeedAndPause(t *testing.T) {
	srv, err := New(smallConfig(), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"speed": 120, "paused": true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/control", body)
	req.Header.Set("Content-Type", "application/json")
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	speed, _ := srv.speed.Load().(float64)
	require.Equal(t, 120.0, speed)
	require.True(t, srv.paused.Load())
}

func TestHandleResetBuildsFreshRun(t *testing.T) {
	srv, err := New(smallConfig(), nil)
	require.NoError(t, err)
	firstRun := srv.scenario().RunID

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reset", nil)
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEqual(t, firstRun, srv.scenario().RunID)
}

func TestHandleSnapshotNoContentBeforeFirstPush(t *testing.T) {
	srv, err := New(smallConfig(), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}
