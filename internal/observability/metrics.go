package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	RecordsConsumed     prometheus.Counter
	AssignmentsProduced prometheus.Counter
	RecordsRejected     *prometheus.CounterVec // label: reason
	TransformErrors     prometheus.Counter
	PipelineRunning     prometheus.Gauge
	GridPoints          prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Neighbor assignment metrics.
	NeighborsPerStation prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "station_etl",
			Name:      "records_consumed_total",
			Help:      "Total raw site records read from the source topic.",
		}),
		AssignmentsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "station_etl",
			Name:      "assignments_produced_total",
			Help:      "Total neighbor assignments written to the sink topic.",
		}),
		RecordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "station_etl",
			Name:      "records_rejected_total",
			Help:      "Records filtered out by validation, by rejection reason.",
		}, []string{"reason"}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "station_etl",
			Name:      "transform_errors_total",
			Help:      "Records that failed transformation for a reason other than rejection.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "station_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		GridPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "station_etl",
			Name:      "grid_points",
			Help:      "Number of grid points loaded at startup.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "station_etl",
			Name:      "batch_size",
			Help:      "Number of records per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "station_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		NeighborsPerStation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "station_etl",
			Name:      "neighbors_per_station",
			Help:      "Grid points within the cutoff radius per validated station.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
		}),
	}

	prometheus.MustRegister(
		m.RecordsConsumed,
		m.AssignmentsProduced,
		m.RecordsRejected,
		m.TransformErrors,
		m.PipelineRunning,
		m.GridPoints,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.NeighborsPerStation,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsConsumed:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "station_etl", Name: "records_consumed_total"}),
		AssignmentsProduced:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "station_etl", Name: "assignments_produced_total"}),
		RecordsRejected:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "station_etl", Name: "records_rejected_total"}, []string{"reason"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "station_etl", Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "station_etl", Name: "pipeline_running"}),
		GridPoints:              prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "station_etl", Name: "grid_points"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "station_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "station_etl", Name: "batch_processing_duration_seconds"}),
		NeighborsPerStation:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "station_etl", Name: "neighbors_per_station"}),
	}
}
