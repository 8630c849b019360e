// README: Prometheus collectors for HTTP traffic, quotes, bookings and realtime clients.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	quotes   *prometheus.CounterVec
	bookings *prometheus.CounterVec
	reg      prometheus.Registerer
}

// New registers the collectors on reg, or on the default registerer when reg
// is nil. Collectors that are already registered are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{reg: reg}
	var err error
	if m.requests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})); err != nil {
		return nil, err
	}
	if m.latency, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})); err != nil {
		return nil, err
	}
	if m.quotes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_computed_total",
		Help: "Rental quotes computed by discount tier",
	}, []string{"tier"})); err != nil {
		return nil, err
	}
	if m.bookings, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Bookings created by payment method",
	}, []string{"payment_method"})); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) QuoteComputed(tier string) {
	m.quotes.WithLabelValues(tier).Inc()
}

func (m *Metrics) BookingCreated(paymentMethod string) {
	m.bookings.WithLabelValues(paymentMethod).Inc()
}

// TrackRealtimeClients exposes count as the realtime_clients gauge.
func (m *Metrics) TrackRealtimeClients(count func() int) error {
	_, err := register(m.reg, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "realtime_clients",
		Help: "Connected websocket clients",
	}, func() float64 { return float64(count()) }))
	return err
}

// Handler serves the metrics gathered by g, or the default gatherer when g is nil.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
