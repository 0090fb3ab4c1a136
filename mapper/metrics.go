package mapper

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts mapping activity.
type Metrics struct {
	Records     prometheus.Counter
	Entities    *prometheus.CounterVec
	Diagnostics *prometheus.CounterVec
}

// NewMetrics creates the mapper metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "artgraph",
			Subsystem: "mapper",
			Name:      "records_total",
			Help:      "Records mapped.",
		}),
		Entities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "artgraph",
			Subsystem: "mapper",
			Name:      "entities_total",
			Help:      "Entities produced by kind.",
		}, []string{"kind"}),
		Diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "artgraph",
			Subsystem: "mapper",
			Name:      "diagnostics_total",
			Help:      "Values dropped during mapping by field.",
		}, []string{"field"}),
	}
	if reg != nil {
		reg.MustRegister(m.Records, m.Entities, m.Diagnostics)
	}
	return m
}
