package relay

import "github.com/prometheus/client_golang/prometheus"

var (
	pullsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "webvideo",
			Subsystem: "relay",
			Name:      "pulls_total",
			Help:      "Frame pulls by result (hit, empty, missing)",
		},
		[]string{"result"},
	)

	registeredGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "webvideo",
			Subsystem: "relay",
			Name:      "registered",
			Help:      "Number of registered frame relays",
		},
	)
)

func init() {
	prometheus.MustRegister(pullsTotal, registeredGauge)
}
