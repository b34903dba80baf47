package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(sessionSteps, sessionOutcomes) }

var (
	sessionSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_session_steps_total",
			Help: "Executed generation steps by result.",
		},
		[]string{"step", "result"}, // result: ok | precondition | conflict | expired | error
	)

	sessionOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_sessions_total",
			Help: "Generation sessions by terminal outcome.",
		},
		[]string{"outcome"}, // finalized | abandoned | expired
	)
)

func IncSessionStep(step, result string) { sessionSteps.WithLabelValues(norm(step), norm(result)).Inc() }
func IncSessionOutcome(outcome string)   { sessionOutcomes.WithLabelValues(norm(outcome)).Inc() }
