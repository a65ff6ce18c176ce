package optimizer

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SelectionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_selection_duration_seconds",
		Help:    "Time spent producing one ranked variant selection.",
		Buckets: prometheus.DefBuckets,
	})

	PredictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_prediction_duration_seconds",
		Help:    "Time spent on one external predictor call, including timeouts.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
	})

	PredictionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimizer_prediction_failures_total",
			Help: "External predictor calls that fell back to the uniform prior.",
		},
		[]string{"reason"},
	)

	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optimizer_prediction_cache_hits_total",
		Help: "Prediction cache hits.",
	})

	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optimizer_prediction_cache_misses_total",
		Help: "Prediction cache misses.",
	})

	FeedbackEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimizer_feedback_events_total",
			Help: "Engagement events accepted by the pipeline, by event type.",
		},
		[]string{"event_type"},
	)

	FeedbackRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optimizer_feedback_rejected_total",
		Help: "Engagement events rejected because the queue was full.",
	})

	FeedbackQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "optimizer_feedback_queue_depth",
		Help: "Events currently buffered in the feedback queue.",
	})

	FeedbackFlushesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optimizer_feedback_flushes_total",
		Help: "Completed feedback flush cycles.",
	})

	ActiveVariants = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "optimizer_active_variants",
		Help: "Variants seen by the most recent selection load.",
	})
)

func init() {
	prometheus.MustRegister(
		SelectionDuration,
		PredictionDuration,
		PredictionFailures,
		CacheHits,
		CacheMisses,
		FeedbackEventsTotal,
		FeedbackRejectedTotal,
		FeedbackQueueDepth,
		FeedbackFlushesTotal,
		ActiveVariants,
	)
}
