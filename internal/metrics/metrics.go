// Package metrics provides Prometheus metrics for the rule store.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors updated by the write coordinator and the
// snapshot reader.
type Metrics struct {
	WritesTotal            *prometheus.CounterVec
	WriteDuration          *prometheus.HistogramVec
	Version                prometheus.Gauge
	ConflictModifiersTotal prometheus.Counter
	SnapshotsTotal         *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which is what tests that do not scrape want.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		WritesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rulestore_writes_total",
				Help: "Total number of write attempts by command and result status",
			},
			[]string{"op", "status"},
		),
		WriteDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rulestore_write_duration_seconds",
				Help:    "Duration of write attempts in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		Version: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "rulestore_version",
				Help: "Current system version of the rule set",
			},
		),
		ConflictModifiersTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "rulestore_conflict_modifiers_total",
				Help: "Sum of distinct modifiers reported across conflicts",
			},
		),
		SnapshotsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rulestore_snapshots_total",
				Help: "Total number of rule set reads by result",
			},
			[]string{"result"},
		),
	}
}

// RecordWrite counts one write attempt and observes its duration.
func (m *Metrics) RecordWrite(op, status string, duration time.Duration) {
	m.WritesTotal.WithLabelValues(op, status).Inc()
	m.WriteDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordConflict adds the modifier count of one conflict report.
func (m *Metrics) RecordConflict(uniqueModifiers int) {
	m.ConflictModifiersTotal.Add(float64(uniqueModifiers))
}

// SetVersion publishes the current system version.
func (m *Metrics) SetVersion(version int64) {
	m.Version.Set(float64(version))
}

// RecordSnapshot counts one read. result is "full" or "not_modified".
func (m *Metrics) RecordSnapshot(result string) {
	m.SnapshotsTotal.WithLabelValues(result).Inc()
}
