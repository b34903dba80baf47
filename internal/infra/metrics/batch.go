package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(batchRowsTotal, batchStageFailures, batchJobsTotal, batchRowSeconds)
}

var (
	batchRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_rows_total",
			Help: "Processed batch rows by outcome.",
		},
		[]string{"outcome"}, // ok | failed | invalid
	)

	batchStageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_stage_failures_total",
			Help: "Stage failures inside batch rows.",
		},
		[]string{"stage", "fatal"},
	)

	batchJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_jobs_total",
			Help: "Batch jobs by terminal status.",
		},
		[]string{"status"},
	)

	batchRowSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "batch_row_seconds",
			Help:    "Wall time spent on one batch row.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

func IncBatchRow(outcome string)       { batchRowsTotal.WithLabelValues(norm(outcome)).Inc() }
func IncBatchJob(status string)        { batchJobsTotal.WithLabelValues(norm(status)).Inc() }
func ObserveBatchRowSeconds(s float64) { batchRowSeconds.Observe(s) }

func IncStageFailure(stage string, fatal bool) {
	f := "false"
	if fatal {
		f = "true"
	}
	batchStageFailures.WithLabelValues(norm(stage), f).Inc()
}
