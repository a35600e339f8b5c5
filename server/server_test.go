package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/frozenlake-rl/types"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	h.ServeHTTP(w, req)
	return w
}

func newTestServer(store *Store, gatherer prometheus.Gatherer) *Server {
	return NewServer(context.Background(), "127.0.0.1:0", store, gatherer, func(table [][]float64) string {
		return strings.Repeat("→", len(table))
	})
}

func TestLiveTrajectory(t *testing.T) {
	store := NewStore()
	store.WinRateSampled("simple", types.WinRateSample{Episode: 9, WinRate: 10})
	store.WinRateSampled("simple", types.WinRateSample{Episode: 19, WinRate: 15})
	h := newTestServer(store, nil).Handler()

	w := get(t, h, "/experiments/simple/trajectory")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Name       string                `json:"name"`
		Trajectory []types.WinRateSample `json:"trajectory"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "simple", body.Name)
	assert.Equal(t, []types.WinRateSample{{Episode: 9, WinRate: 10}, {Episode: 19, WinRate: 15}}, body.Trajectory)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/experiments/double/trajectory").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/experiments/simple/evaluation").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/experiments/simple/tables").Code)
}

func TestFinishedResult(t *testing.T) {
	store := NewStore()
	store.AddResult(&types.ExperimentResult{
		Name:              "double",
		Trajectory:        []types.WinRateSample{{Episode: 0, WinRate: 0}},
		EvaluationWinRate: 71.5,
		Tables:            [][][]float64{{{0, 1, 0, 0}}, {{0, 0, 1, 0}}},
	})
	h := newTestServer(store, nil).Handler()

	w := get(t, h, "/experiments")
	assert.JSONEq(t, `{"experiments":["double"]}`, w.Body.String())

	w = get(t, h, "/experiments/double/evaluation")
	assert.JSONEq(t, `{"name":"double","win_rate":71.5}`, w.Body.String())

	w = get(t, h, "/experiments/double/tables")
	assert.JSONEq(t, `{"name":"double","tables":[[[0,1,0,0]],[[0,0,1,0]]]}`, w.Body.String())

	w = get(t, h, "/experiments/double/policy")
	assert.JSONEq(t, `{"name":"double","policies":["→","→"]}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	h := newTestServer(NewStore(), reg).Handler()
	w := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_total 1")

	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)
}
