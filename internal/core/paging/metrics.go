package paging

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the load counters shared by all paging stores in one
// process. Register once in the daemon and pass to each store.
type Metrics struct {
	Loads *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fediview",
			Subsystem: "paging",
			Name:      "loads_total",
			Help:      "Page load attempts by list and result.",
		}, []string{"list", "result"}),
	}
	reg.MustRegister(m.Loads)
	return m
}
