package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the Select HTTP handler
	SelectLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_select_latency_seconds",
		Help:    "Latency of the variant selection handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of selection requests served
	SelectRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optimizer_select_requests_total",
		Help: "Total number of variant selection requests",
	})

	// Total number of engagement events accepted over HTTP
	RecordRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optimizer_record_requests_total",
		Help: "Total number of engagement record requests",
	})
)

func Init() {
	prometheus.MustRegister(
		SelectLatency,
		SelectRequests,
		RecordRequests,
	)
}
