package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	SyncRuns           prometheus.Counter
	SyncSkipped        prometheus.Counter
	PairingsResolved   *prometheus.CounterVec
	UnresolvedGames    prometheus.Counter
	FetchFailures      prometheus.Counter
	SyncDuration       prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
