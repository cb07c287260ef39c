package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the map session.
type Metrics struct {
	// Refresh cycle metrics.
	RefreshCycles   *prometheus.CounterVec // labels: outcome={success,error,stale}
	RefreshDuration prometheus.Histogram
	ResolveRounds   prometheus.Histogram
	ViewportScore   prometheus.Gauge

	// Index fetch metrics.
	Fetches         *prometheus.CounterVec // labels: outcome={hit,empty,error}
	Escalations     prometheus.Counter
	FetchCache      *prometheus.CounterVec // labels: result={hit,miss}
	SkippedElements *prometheus.CounterVec // labels: reason={bad_address,short_metrics,unknown_kind}

	// Submission metrics.
	Submissions *prometheus.CounterVec // labels: outcome={success,error,skipped}

	// Tracker metrics.
	ViewportEvents prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RefreshCycles,
		m.RefreshDuration,
		m.ResolveRounds,
		m.ViewportScore,
		m.Fetches,
		m.Escalations,
		m.FetchCache,
		m.SkippedElements,
		m.Submissions,
		m.ViewportEvents,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RefreshCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moodmap",
			Name:      "refresh_cycles_total",
			Help:      "Refresh cycles by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "moodmap",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete plan-resolve-aggregate cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ResolveRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "moodmap",
			Name:      "resolve_rounds",
			Help:      "Fetch rounds needed to resolve one cycle, escalations included.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 10, 12, 13},
		}),
		ViewportScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "moodmap",
			Name:      "viewport_score",
			Help:      "Weighted mean mood of the last published snapshot.",
		}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moodmap",
			Name:      "fetches_total",
			Help:      "Index fetches by outcome.",
		}, []string{"outcome"}),
		Escalations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "moodmap",
			Name:      "escalations_total",
			Help:      "Empty fetches replaced by a fetch of the parent cell.",
		}),
		FetchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moodmap",
			Name:      "fetch_cache_total",
			Help:      "Fetch cache lookups by result.",
		}, []string{"result"}),
		SkippedElements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moodmap",
			Name:      "skipped_elements_total",
			Help:      "Fetched elements that could not be classified, by reason.",
		}, []string{"reason"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moodmap",
			Name:      "submissions_total",
			Help:      "Daily reading submissions by outcome.",
		}, []string{"outcome"}),
		ViewportEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "moodmap",
			Name:      "viewport_events_total",
			Help:      "Pan and zoom events received before debouncing.",
		}),
	}
}
