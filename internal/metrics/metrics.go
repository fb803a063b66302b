package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the API.
type Metrics struct {
	CompanyWrites   *prometheus.CounterVec
	CNPJRejections  *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	EventsPublished *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers every collector on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not panic.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CompanyWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cadastro_company_writes_total",
			Help: "Companies written, by action (created, updated, deleted).",
		}, []string{"action"}),
		CNPJRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cadastro_cnpj_rejections_total",
			Help: "Writes rejected because of the cnpj, by reason (invalid, in_use).",
		}, []string{"reason"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cadastro_http_requests_total",
			Help: "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cadastro_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cadastro_events_published_total",
			Help: "Company events handed to the broker, by result (ok, error).",
		}, []string{"result"}),
		gatherer: reg,
	}
}

// A nil *Metrics is valid and records nothing.

func (m *Metrics) CompanyWritten(action string) {
	if m == nil {
		return
	}
	m.CompanyWrites.WithLabelValues(action).Inc()
}

func (m *Metrics) CNPJRejected(reason string) {
	if m == nil {
		return
	}
	m.CNPJRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) EventPublished(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
