// Package metrics exposes Prometheus counters for a normalization run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "property_etl"

// Metrics holds the run counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Records              prometheus.Counter
	DuplicatesDropped    prometheus.Counter
	ConstructionFailures prometheus.Counter
	EntitiesEmitted      *prometheus.CounterVec // by entity
	DependentsDropped    *prometheus.CounterVec // empty payloads, by entity
	RowsWritten          *prometheus.CounterVec // by table
}

// New creates the counters and registers them on reg. A nil reg leaves them
// unregistered.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Raw records read from the input batch",
		}),
		DuplicatesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_dropped_total",
			Help:      "Raw records dropped because their property key was already seen",
		}),
		ConstructionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "construction_failures_total",
			Help:      "Entities rejected by validation",
		}),
		EntitiesEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_emitted_total",
			Help:      "Entities added to the bundle",
		}, []string{"entity"}),
		DependentsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dependents_dropped_total",
			Help:      "Dependent entities dropped for having no meaningful payload",
		}, []string{"entity"}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "rows_written_total",
			Help:      "Rows inserted into the database",
		}, []string{"table"}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{
		m.Records, m.DuplicatesDropped, m.ConstructionFailures,
		m.EntitiesEmitted, m.DependentsDropped, m.RowsWritten,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) RecordSeen() {
	if m != nil {
		m.Records.Inc()
	}
}

func (m *Metrics) DuplicateDropped() {
	if m != nil {
		m.DuplicatesDropped.Inc()
	}
}

func (m *Metrics) ConstructionFailed() {
	if m != nil {
		m.ConstructionFailures.Inc()
	}
}

func (m *Metrics) Emitted(entity string) {
	if m != nil {
		m.EntitiesEmitted.WithLabelValues(entity).Inc()
	}
}

func (m *Metrics) DroppedEmpty(entity string) {
	if m != nil {
		m.DependentsDropped.WithLabelValues(entity).Inc()
	}
}

func (m *Metrics) Written(table string, rows int) {
	if m != nil && rows > 0 {
		m.RowsWritten.WithLabelValues(table).Add(float64(rows))
	}
}

// WriteTextfile writes every metric gathered by g to path in the Prometheus
// text format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
