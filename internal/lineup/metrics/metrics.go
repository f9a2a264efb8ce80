package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for snapshot builds and graph serving.
// All methods are safe on a nil receiver.
type Metrics struct {
	BuildDuration   prometheus.Histogram
	Rebuilds        prometheus.Counter
	RebuildFailures prometheus.Counter
	Anomalies       prometheus.Counter

	// Size of the currently published snapshot
	Drivers prometheus.Gauge
	Pairs   prometheus.Gauge

	CacheRequests  *prometheus.CounterVec // result: "hit", "miss", "error"
	ExportDuration *prometheus.HistogramVec
	EventsEmitted  *prometheus.CounterVec
}

// New registers all lineup metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers all lineup metrics with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "paddock_snapshot_build_duration_seconds",
			Help:    "Duration of a full snapshot rebuild including record loading",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Rebuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "paddock_snapshot_rebuilds_total",
			Help: "Total number of snapshots built and published",
		}),
		RebuildFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "paddock_snapshot_rebuild_failures_total",
			Help: "Total number of rebuilds that failed and kept the previous snapshot",
		}),
		Anomalies: factory.NewCounter(prometheus.CounterOpts{
			Name: "paddock_snapshot_anomalies_total",
			Help: "Constructor entries with more than two drivers in one race, across all builds",
		}),
		Drivers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "paddock_snapshot_drivers",
			Help: "Drivers in the published snapshot",
		}),
		Pairs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "paddock_snapshot_pairs",
			Help: "Teammate pairs in the published snapshot",
		}),
		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paddock_graph_cache_requests_total",
			Help: "Graph document cache lookups by result",
		}, []string{"result"}),
		ExportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paddock_graph_export_duration_seconds",
			Help:    "Duration of projecting and encoding a graph document",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"format"}),
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paddock_snapshot_events_total",
			Help: "Snapshot lifecycle events by type and delivery outcome",
		}, []string{"type", "outcome"}),
	}
}

func (m *Metrics) ObserveBuild(d time.Duration) {
	if m != nil {
		m.BuildDuration.Observe(d.Seconds())
	}
}

// RecordPublished updates the snapshot gauges after a successful rebuild.
func (m *Metrics) RecordPublished(drivers, pairs, anomalies int) {
	if m == nil {
		return
	}
	m.Rebuilds.Inc()
	m.Drivers.Set(float64(drivers))
	m.Pairs.Set(float64(pairs))
	m.Anomalies.Add(float64(anomalies))
}

func (m *Metrics) IncrementRebuildFailures() {
	if m != nil {
		m.RebuildFailures.Inc()
	}
}

func (m *Metrics) IncrementCacheHit() {
	if m != nil {
		m.CacheRequests.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) IncrementCacheMiss() {
	if m != nil {
		m.CacheRequests.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) IncrementCacheError() {
	if m != nil {
		m.CacheRequests.WithLabelValues("error").Inc()
	}
}

func (m *Metrics) ObserveExport(format string, d time.Duration) {
	if m != nil {
		m.ExportDuration.WithLabelValues(format).Observe(d.Seconds())
	}
}

// IncrementEvent records an emitted event; outcome is "ok" or "error".
func (m *Metrics) IncrementEvent(eventType, outcome string) {
	if m != nil {
		m.EventsEmitted.WithLabelValues(eventType, outcome).Inc()
	}
}
