package streaming

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the streaming counters. Register once in the daemon.
type Metrics struct {
	Frames     *prometheus.CounterVec
	Reconnects prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fediview",
			Subsystem: "streaming",
			Name:      "frames_total",
			Help:      "Classified frames by routing result.",
		}, []string{"result"}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fediview",
			Subsystem: "streaming",
			Name:      "reconnects_total",
			Help:      "Websocket reconnection attempts.",
		}),
	}
	reg.MustRegister(m.Frames, m.Reconnects)
	return m
}
