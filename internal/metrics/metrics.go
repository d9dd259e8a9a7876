package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Failure reasons used as label values.
const (
	ReasonTimeout    = "timeout"
	ReasonNavigation = "navigation"
	ReasonOther      = "other"
)

// Metrics holds the Prometheus collectors for one crawl run.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	PagesFetched  prometheus.Counter
	FetchFailures *prometheus.CounterVec
	DepthCapped   prometheus.Counter
	PagesSkipped  prometheus.Counter
	FetchDuration prometheus.Histogram
	PagesKnown    prometheus.Gauge
}

// New creates the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitegraph_pages_fetched_total",
			Help: "The total number of pages fetched and expanded",
		}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitegraph_fetch_failures_total",
			Help: "The total number of page fetches that failed",
		}, []string{"reason"}),
		DepthCapped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitegraph_depth_capped_total",
			Help: "The total number of pages not fetched because of the depth limit",
		}),
		PagesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitegraph_pages_skipped_total",
			Help: "The total number of pages not fetched because of the page limit",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sitegraph_fetch_duration_seconds",
			Help:    "Duration of page fetches.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}),
		PagesKnown: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sitegraph_pages_known",
			Help: "Current number of page records, fetched or stub.",
		}),
	}

	m.registry.MustRegister(
		m.PagesFetched,
		m.FetchFailures,
		m.DepthCapped,
		m.PagesSkipped,
		m.FetchDuration,
		m.PagesKnown,
	)
	return m
}

// Registry exposes the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.PagesFetched.Inc()
	m.FetchDuration.Observe(d.Seconds())
}

func (m *Metrics) IncFailure(reason string) {
	if m == nil {
		return
	}
	m.FetchFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncDepthCapped() {
	if m == nil {
		return
	}
	m.DepthCapped.Inc()
}

func (m *Metrics) IncSkipped() {
	if m == nil {
		return
	}
	m.PagesSkipped.Inc()
}

func (m *Metrics) SetPagesKnown(n int) {
	if m == nil {
		return
	}
	m.PagesKnown.Set(float64(n))
}
