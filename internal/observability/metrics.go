package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "navdata_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for a conversion run.
type Metrics struct {
	ProceduresProcessed prometheus.Counter
	LegsNormalized      prometheus.Counter
	LoadErrors          prometheus.Counter
	TablesExported      prometheus.Counter
	PipelineRunning     prometheus.Gauge

	ProcedureDuration prometheus.Histogram
	ProcedureSize     prometheus.Histogram

	// Normalization metrics.
	Backfills    *prometheus.CounterVec // labels: rule={missed_approach_runway,waypoint,center_fix,navaid}, outcome={resolved,unresolved}
	DerivedFlags *prometheus.CounterVec // labels: flag={faf,map}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ProceduresProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "procedures_processed_total",
			Help:      "Total terminal procedures normalized and loaded.",
		}),
		LegsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legs_normalized_total",
			Help:      "Total procedure legs written to the sinks.",
		}),
		LoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Total sink write failures.",
		}),
		TablesExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_exported_total",
			Help:      "Total reference tables exported.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a conversion run is active, 0 otherwise.",
		}),
		ProcedureDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "procedure_duration_seconds",
			Help:      "Time to normalize and load one procedure.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		ProcedureSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "procedure_legs",
			Help:      "Number of legs per procedure.",
			Buckets:   []float64{1, 3, 5, 8, 12, 16, 24, 32, 48},
		}),
		Backfills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backfill_total",
			Help:      "Coordinate backfills by rule and lookup outcome.",
		}, []string{"rule", "outcome"}),
		DerivedFlags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "derived_flags_total",
			Help:      "Legs marked as final approach fix or missed approach point.",
		}, []string{"flag"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ProceduresProcessed,
		m.LegsNormalized,
		m.LoadErrors,
		m.TablesExported,
		m.PipelineRunning,
		m.ProcedureDuration,
		m.ProcedureSize,
		m.Backfills,
		m.DerivedFlags,
	}
}
