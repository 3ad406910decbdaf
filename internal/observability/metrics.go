package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analysis service.
type Metrics struct {
	AnalysesRun        *prometheus.CounterVec // labels: kind, outcome={success,error}
	WaveEventsDetected *prometheus.CounterVec // labels: kind

	AnalysisDuration   prometheus.Histogram
	TableBuildDuration prometheus.Histogram

	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AnalysesRun,
		m.WaveEventsDetected,
		m.AnalysisDuration,
		m.TableBuildDuration,
		m.EventsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics with nothing registered, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AnalysesRun: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climatex",
			Name:      "analyses_run_total",
			Help:      "Detection runs by event kind and outcome.",
		}, []string{"kind", "outcome"}),
		WaveEventsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climatex",
			Name:      "wave_events_detected_total",
			Help:      "Discrete wave events found, by event kind.",
		}, []string{"kind"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climatex",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete detection run, including aggregation.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		TableBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climatex",
			Name:      "percentile_table_build_seconds",
			Help:      "Duration of percentile table calibration from the climatic normal.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climatex",
			Name:      "events_published_total",
			Help:      "Wave events published to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climatex",
			Name:      "publish_errors_total",
			Help:      "Failed publishes to the sink topic.",
		}),
	}
}
