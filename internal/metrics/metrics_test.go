package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteAndBookingCounters(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.QuoteComputed("weekly")
	m.QuoteComputed("weekly")
	m.QuoteComputed("none")
	m.BookingCreated("cash")

	expected := `
# HELP quotes_computed_total Rental quotes computed by discount tier
# TYPE quotes_computed_total counter
quotes_computed_total{tier="none"} 1
quotes_computed_total{tier="weekly"} 2
`
	assert.NoError(t, testutil.CollectAndCompare(m.quotes, strings.NewReader(expected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookings.WithLabelValues("cash")))
}

func TestObserveRequest(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveRequest(http.MethodGet, "/api/cars", 200, 15*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/cars", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.latency))
}

func TestNew_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	require.NoError(t, err)
	second, err := New(reg)
	require.NoError(t, err)

	first.BookingCreated("upi")
	assert.Equal(t, 1.0, testutil.ToFloat64(second.bookings.WithLabelValues("upi")))
}

func TestHandlerExposesRealtimeGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	require.NoError(t, m.TrackRealtimeClients(func() int { return 3 }))

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "realtime_clients 3")
}
