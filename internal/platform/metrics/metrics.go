package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	LoginsTotal        *prometheus.CounterVec
	RegistrationsTotal prometheus.Counter
	TokensIssuedTotal  *prometheus.CounterVec
	RateLimitDenials   prometheus.Counter
	RequestDuration    *prometheus.HistogramVec
}

// New creates and registers all metrics with the given registerer.
// Tests pass a fresh prometheus.NewRegistry() to stay isolated.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bookify_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		RegistrationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "bookify_registrations_total",
			Help: "Total number of registered users.",
		}),
		TokensIssuedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bookify_security_tokens_issued_total",
			Help: "Security tokens issued by purpose.",
		}, []string{"purpose"}),
		RateLimitDenials: factory.NewCounter(prometheus.CounterOpts{
			Name: "bookify_rate_limit_denials_total",
			Help: "Requests rejected by the sliding-window rate limiter.",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bookify_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status_class"}),
	}
}

// ObserveRequest records one HTTP request latency sample.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	class := "2xx"
	switch {
	case status >= 500:
		class = "5xx"
	case status >= 400:
		class = "4xx"
	case status >= 300:
		class = "3xx"
	}
	m.RequestDuration.WithLabelValues(route, class).Observe(elapsed.Seconds())
}
