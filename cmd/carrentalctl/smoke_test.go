// README: Tests for the smoke runner against a fake API.
package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("OK")) })
	mux.HandleFunc("GET /api/cars", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("min_price") == "9000" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"cars":[{"id":"car-1"}],"categories":["All"]}`))
	})
	mux.HandleFunc("GET /api/addons", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"add_ons":[]}`)) })
	mux.HandleFunc("POST /api/cars/car-1/quote", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"grand_total":4500}`))
	})
	mux.HandleFunc("POST /api/bookings", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusUnauthorized) })
	mux.HandleFunc("GET /api/admin/stats", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusUnauthorized) })
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSmokeRunner(t *testing.T) {
	srv := fakeAPI(t)
	r := newRunner(smokeConfig{BaseURL: srv.URL, Concurrency: 2, Duration: 100 * time.Millisecond, Timeout: 5 * time.Second})
	defer r.close()

	var out bytes.Buffer
	results := r.runAll(t.Context(), &out)

	byName := map[string]result{}
	for _, res := range results {
		byName[res.Name] = res
	}
	assert.Equal(t, statusSkip, byName["Postgres: connect"].Status)
	assert.Equal(t, statusSkip, byName["Redis: connect"].Status)
	for _, name := range []string{
		"API: health",
		"API: search cars",
		"API: bad price range -> 400",
		"API: add-on catalog",
		"API: checkout without token -> 401",
		"API: admin stats without token -> 401",
		"Perf: search throughput",
	} {
		assert.Equal(t, statusPass, byName[name].Status, "%s: %s", name, byName[name].Note)
	}
	require.Equal(t, statusPass, byName["API: quote first car"].Status)
	assert.Equal(t, "₹4,500", byName["API: quote first car"].Note)
	assert.Equal(t, "car-1", r.carID)
	assert.Contains(t, out.String(), "PASS  API: health")
}

func TestSmokeRunnerReportsWrongStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := newRunner(smokeConfig{BaseURL: srv.URL})
	res := r.doJSON(t.Context(), http.MethodGet, srv.URL+"/health", nil, http.StatusOK, nil)
	assert.Equal(t, statusFail, res.Status)
	assert.Equal(t, "status=503 want 200", res.Note)
}
