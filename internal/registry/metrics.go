package registry

import "github.com/prometheus/client_golang/prometheus"

var (
	lookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelcache",
			Subsystem: "unified",
			Name:      "lookups_total",
			Help:      "Reference lookups by resolution tier",
		},
		[]string{"tier"},
	)

	registryEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelcache",
			Subsystem: "unified",
			Name:      "entries",
			Help:      "Registry entries (live or stale weak references)",
		},
	)

	registryStrongRefs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelcache",
			Subsystem: "unified",
			Name:      "strong_refs",
			Help:      "Models pinned by a strong reference",
		},
	)
)

func init() {
	prometheus.MustRegister(lookupsTotal, registryEntries, registryStrongRefs)
}
