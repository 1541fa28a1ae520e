package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lenscoach_sessions_active",
		Help: "Number of live peer sessions.",
	})
	framesAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lenscoach_frames_analyzed_total",
		Help: "Frames that went through the heuristics.",
	})
	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lenscoach_frames_dropped_total",
		Help: "Frames skipped due to decode or analysis errors.",
	})
	advisoriesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lenscoach_advisories_sent_total",
		Help: "Advisories delivered on feedback channels.",
	})
	advisoriesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lenscoach_advisories_dropped_total",
		Help: "Advisories suppressed by the throttle or missing channel.",
	})
	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lenscoach_analysis_duration_seconds",
		Help:    "Per-frame heuristics latency.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
)
