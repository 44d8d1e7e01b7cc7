package server

import (
	"net/http"
	"time"

	"github.com/brettbedarf/previewfs/preview"
	"github.com/brettbedarf/previewfs/transform"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "previewfs"

var _ preview.Observer = (*Metrics)(nil)

// Metrics collects dev server and rebuild metrics on a private registry, so
// several servers can live in one process
type Metrics struct {
	registry *prometheus.Registry

	builds        *prometheus.CounterVec
	buildErrors   *prometheus.CounterVec
	buildDuration prometheus.Histogram
	revision      prometheus.Gauge
	runtimeErrors prometheus.Counter
	clients       prometheus.Gauge

	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	inFlight     prometheus.Gauge
	requestSize  *prometheus.HistogramVec
	responseSize *prometheus.HistogramVec
}

// NewMetrics registers all collectors. Compiled module cache counters are
// read from tr when it is not nil.
func NewMetrics(tr *transform.Transformer) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "builds_total",
			Help:      "Preview builds by resulting state",
		}, []string{"state"}),
		buildErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "build_errors_total",
			Help:      "Preview errors reported by builds, by kind",
		}, []string{"kind"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "build_duration_seconds",
			Help:      "Time to assemble a preview document",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		revision: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "built_revision",
			Help:      "Tree revision of the latest build",
		}),
		runtimeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "runtime_errors_total",
			Help:      "Runtime errors reported by preview clients",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "preview_clients",
			Help:      "Connected live preview clients",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "A counter of total requests",
		}, []string{"code", "method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "A histogram of request duration",
			Buckets:   []float64{.005, .025, .1, .25, .5, 1, 2.5, 5},
		}, []string{"code", "method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "http_in_flight_requests",
			Help:      "A gauge of requests currently in flight",
		}),
		requestSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_size_bytes",
			Help:      "A histogram of request size",
			Buckets:   []float64{200, 500, 900, 1500, 10000, 100000},
		}, []string{}),
		responseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_response_size_bytes",
			Help:      "A histogram of response size",
			Buckets:   []float64{200, 500, 900, 1500, 10000, 100000},
		}, []string{}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.builds, m.buildErrors, m.buildDuration, m.revision, m.runtimeErrors, m.clients,
		m.requests, m.duration, m.inFlight, m.requestSize, m.responseSize,
	)
	if tr != nil {
		m.registry.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "transform_cache_hits_total",
				Help:      "Compiled module cache hits",
			}, func() float64 { return float64(tr.Stats().Hits) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "transform_cache_misses_total",
				Help:      "Compiled module cache misses",
			}, func() float64 { return float64(tr.Stats().Misses) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "transform_cache_entries",
				Help:      "Compiled modules currently cached",
			}, func() float64 { return float64(tr.Stats().Entries) }),
		)
	}
	return m
}

// OnBuild records a finished build
func (m *Metrics) OnBuild(doc *preview.Document, took time.Duration) {
	m.builds.WithLabelValues(doc.State.String()).Inc()
	m.buildDuration.Observe(took.Seconds())
	m.revision.Set(float64(doc.Revision))
	for _, e := range doc.Errors {
		m.buildErrors.WithLabelValues(string(e.Kind)).Inc()
	}
}

// Instrument wraps next with the request metrics
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerInFlight(m.inFlight,
		promhttp.InstrumentHandlerDuration(m.duration,
			promhttp.InstrumentHandlerCounter(m.requests,
				promhttp.InstrumentHandlerResponseSize(m.responseSize,
					promhttp.InstrumentHandlerRequestSize(m.requestSize, next),
				))))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
