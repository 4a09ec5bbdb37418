package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/railquote/fare-estimator-api/internal/domain"
	"github.com/railquote/fare-estimator-api/internal/ports/out/fareprovider"
)

const namespace = "fare_estimator"

// Estimate outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeInvalidInput = "invalid_input"
	OutcomeAPIFailure   = "api_failure"
	OutcomeError        = "error"
)

// Metrics owns a private registry so tests and multiple servers never collide.
type Metrics struct {
	reg *prometheus.Registry

	estimates       *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		estimates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimates_total",
			Help:      "Fare estimates by outcome.",
		}, []string{"outcome"}),
		providerLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fare_provider_duration_seconds",
			Help:      "Base fare lookup latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "result"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) ObserveEstimate(outcome string) {
	m.estimates.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// InstrumentProvider wraps next so every lookup is timed under the given provider label.
func (m *Metrics) InstrumentProvider(name string, next fareprovider.Provider) fareprovider.Provider {
	return fareprovider.Func(func(ctx context.Context, trip domain.TripDetails) (float64, error) {
		start := time.Now()
		fare, err := next.FetchBaseFare(ctx, trip)

		result := "ok"
		switch {
		case err != nil:
			result = "error"
		case !fareprovider.IsUsable(fare):
			result = "unavailable"
		}
		m.providerLatency.WithLabelValues(name, result).Observe(time.Since(start).Seconds())
		return fare, err
	})
}
