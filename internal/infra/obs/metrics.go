package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	reservations *prometheus.CounterVec
	lockWait     prometheus.Histogram
	httpRequests *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		reservations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tradeboard_reservations_total",
			Help: "Reservation attempts by outcome.",
		}, []string{"outcome"}),
		lockWait: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradeboard_reservation_lock_wait_seconds",
			Help:    "Time spent waiting for the per-announcement calendar lock.",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .25, .5, 1, 2, 5},
		}),
		httpRequests: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tradeboard_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) ReservationOutcome(outcome string) {
	m.reservations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LockWait(d time.Duration) {
	m.lockWait.Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
