package metrics

import "time"

// JobCompleted records a successful job completion
func JobCompleted(jobType string, duration time.Duration) {
	JobsTotal.WithLabelValues(jobType, "completed").Inc()
	JobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
}

// JobFailed records a job failure
func JobFailed(jobType string) {
	JobsTotal.WithLabelValues(jobType, "failed").Inc()
}

// JobRetried records a job retry attempt
func JobRetried(jobType string) {
	JobRetriesTotal.WithLabelValues(jobType).Inc()
}

// SessionOp records the outcome of a session store operation.
func SessionOp(op, backend, result string) {
	SessionOpsTotal.WithLabelValues(op, backend, result).Inc()
}

// WamSynced records the outcome of a map-storage synchronization.
func WamSynced(status string) {
	WamSyncsTotal.WithLabelValues(status).Inc()
}
