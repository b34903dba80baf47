package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(placementOutcomes) }

var placementOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "image_placement_outcomes_total",
		Help: "How image slots were resolved during placement.",
	},
	[]string{"outcome"}, // placeholder | structural | fallback | skipped
)

func AddPlacement(outcome string, n int) {
	if n <= 0 {
		return
	}
	placementOutcomes.WithLabelValues(norm(outcome)).Add(float64(n))
}
