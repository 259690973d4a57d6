package queue

import "github.com/prometheus/client_golang/prometheus"

var (
	metricEnqueued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "assistd",
			Subsystem: "queue",
			Name:      "enqueued_total",
			Help:      "Total number of enqueued generation requests",
		},
	)

	metricCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assistd",
			Subsystem: "queue",
			Name:      "completed_total",
			Help:      "Total number of requests that reached a terminal state",
		},
		[]string{"outcome"},
	)

	metricQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "assistd",
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Number of requests currently waiting",
		},
	)

	metricProcessingSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "assistd",
			Subsystem: "queue",
			Name:      "processing_duration_seconds",
			Help:      "Duration of backend execution per request in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(metricEnqueued, metricCompletions, metricQueueDepth, metricProcessingSeconds)
}
