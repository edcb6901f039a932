package refcache

import (
	"github.com/prometheus/client_golang/prometheus"

	"modelcache/pkg/types"
)

var (
	cacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelcache",
			Subsystem: "reference",
			Name:      "hits_total",
			Help:      "Cache hits on live reference-model entries",
		},
	)

	cacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelcache",
			Subsystem: "reference",
			Name:      "misses_total",
			Help:      "Cache misses, including dead weak references",
		},
	)

	loadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelcache",
			Subsystem: "reference",
			Name:      "loads_total",
			Help:      "Reference models loaded from persisted bundles",
		},
	)

	loadFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelcache",
			Subsystem: "reference",
			Name:      "load_failures_total",
			Help:      "Loader failures by kind",
		},
		[]string{"kind"},
	)

	trimFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelcache",
			Subsystem: "reference",
			Name:      "trim_failures_total",
			Help:      "Perches that could not be trimmed after load",
		},
	)

	cachedEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelcache",
			Subsystem: "reference",
			Name:      "entries",
			Help:      "Cache entries (live or stale weak references)",
		},
	)

	strongRefs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelcache",
			Subsystem: "reference",
			Name:      "strong_refs",
			Help:      "Models pinned by a strong reference",
		},
	)
)

func init() {
	prometheus.MustRegister(cacheHitsTotal, cacheMissesTotal, loadsTotal,
		loadFailuresTotal, trimFailuresTotal, cachedEntries, strongRefs)
}

// failureKind maps a loader error to a metric label.
func failureKind(err error) string {
	switch {
	case types.IsModelUnavailable(err):
		return "model_unavailable"
	case types.IsInvalidParameters(err):
		return "invalid_parameters"
	default:
		return "other"
	}
}
