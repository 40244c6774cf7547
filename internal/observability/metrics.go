package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histogram, and gauges shared by
// the compute pipeline and the query API.
type Metrics struct {
	// Pipeline metrics.
	SourceRows       *prometheus.CounterVec // label: source={grace,era5,imerg}
	RowsDropped      *prometheus.CounterVec // label: source
	PipelineRuns     prometheus.Counter
	PipelineFailures prometheus.Counter
	PipelineDuration prometheus.Histogram
	TableRecords     prometheus.Gauge
	SnapshotBasins   prometheus.Gauge

	// Query metrics.
	SnapshotCache *prometheus.CounterVec   // label: result={hit,miss}
	HTTPRequests  *prometheus.CounterVec   // labels: path, status
	HTTPDuration  *prometheus.HistogramVec // label: path
}

// NewMetrics creates and registers all metrics with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SourceRows,
		m.RowsDropped,
		m.PipelineRuns,
		m.PipelineFailures,
		m.PipelineDuration,
		m.TableRecords,
		m.SnapshotBasins,
		m.SnapshotCache,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SourceRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asi",
			Name:      "source_rows_total",
			Help:      "Rows loaded per raw monthly source.",
		}, []string{"source"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asi",
			Name:      "source_rows_dropped_total",
			Help:      "Rows excluded for unparsable dates or values, per source.",
		}, []string{"source"}),
		PipelineRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "asi",
			Name:      "pipeline_runs_total",
			Help:      "Completed pipeline runs.",
		}),
		PipelineFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "asi",
			Name:      "pipeline_failures_total",
			Help:      "Pipeline runs that aborted with an error.",
		}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "asi",
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of a full compute run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		TableRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "asi",
			Name:      "table_records",
			Help:      "Basin-month records in the last written table.",
		}),
		SnapshotBasins: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "asi",
			Name:      "snapshot_basins",
			Help:      "Features in the last written latest snapshot.",
		}),
		SnapshotCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asi",
			Name:      "snapshot_cache_total",
			Help:      "Month snapshot cache lookups by result.",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asi",
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "asi",
			Name:      "http_request_duration_seconds",
			Help:      "API request duration by route.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"path"}),
	}
}
