// pkg/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RewriteDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edge_rewrite_decisions_total",
			Help: "Rewrite decisions at the edge by outcome (pass, rewrite, unresolved, debug)",
		},
		[]string{"outcome"},
	)

	DirectoryLookupSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tenant_directory_lookup_seconds",
			Help:    "Latency of custom-domain tenant directory lookups",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Init registers metrics with Prometheus.
func Init() {
	prometheus.MustRegister(RewriteDecisions)
	prometheus.MustRegister(DirectoryLookupSeconds)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
