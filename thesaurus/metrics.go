package thesaurus

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts resolver activity.
type Metrics struct {
	CacheHits  prometheus.Counter
	Fetches    *prometheus.CounterVec
	Unresolved prometheus.Counter
}

// Fetch outcomes.
const (
	outcomeFound    = "found"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// NewMetrics creates the resolver metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "artgraph",
			Subsystem: "thesaurus",
			Name:      "cache_hits_total",
			Help:      "Term lookups answered from the cache.",
		}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "artgraph",
			Subsystem: "thesaurus",
			Name:      "fetches_total",
			Help:      "Term page fetches by locale and outcome.",
		}, []string{"locale", "outcome"}),
		Unresolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "artgraph",
			Subsystem: "thesaurus",
			Name:      "unresolved_total",
			Help:      "Terms that no locale could provide.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.CacheHits, m.Fetches, m.Unresolved)
	}
	return m
}
