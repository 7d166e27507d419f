// Package metrics holds the prometheus collectors for node evaluation and
// cache invalidation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Evaluation modes.
const (
	ModeCached   = "cached"
	ModeComputed = "computed"
	ModeReplayed = "replayed"
)

var (
	Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "damper_evaluations_total",
		Help: "Node evaluations by mode",
	}, []string{"mode"})

	EvaluationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "damper_evaluation_errors_total",
		Help: "Evaluations that failed a precondition",
	})

	Invalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "damper_invalidations_total",
		Help: "Invalidation range queries by reason",
	}, []string{"reason"})

	FramesEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "damper_frames_evicted_total",
		Help: "Cached frames dropped by invalidation",
	})

	FramesTrimmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "damper_frames_trimmed_total",
		Help: "Cached frames dropped by the cache size limit",
	})

	FrameCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "damper_frame_cache_size",
		Help: "Frames currently held in the output cache",
	})

	SimulationSupport = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "damper_simulation_support",
		Help: "1 when the node requests simulation-aware caching",
	})
)

// ObserveSimulationSupport records the node's current cache requirement.
func ObserveSimulationSupport(required bool) {
	if required {
		SimulationSupport.Set(1)
		return
	}
	SimulationSupport.Set(0)
}
