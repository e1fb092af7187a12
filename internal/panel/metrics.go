package panel

import "github.com/prometheus/client_golang/prometheus"

var (
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "webvideo",
			Subsystem: "panel",
			Name:      "transitions_total",
			Help:      "Panel lifecycle transitions by target state.",
		},
		[]string{"state"},
	)
	drawsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "webvideo",
			Subsystem: "panel",
			Name:      "draws_total",
			Help:      "Panel draw ticks by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(transitionsTotal, drawsTotal)
}
