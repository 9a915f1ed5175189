package xrayclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "testgrade_xray_requests_total",
	Help: "Requests made to the Xray API",
}, []string{"operation", "status"})

var collectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "testgrade_xray_collected_results_total",
	Help: "Results collected from paginated Xray queries",
}, []string{"operation", "aborted"})

// Collectors returns the client metrics so they can be pushed alongside loader metrics.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{requestsTotal, collectedTotal}
}
