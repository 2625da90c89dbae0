package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		SyncRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chess_sync_runs_total",
			Help: "The total number of completed synchronization runs.",
		}),
		SyncSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chess_sync_skipped_total",
			Help: "The total number of triggers suppressed because a run was in progress.",
		}),
		PairingsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chess_pairings_resolved_total",
			Help: "The total number of pairings that received an outcome.",
		}, []string{"source"}),
		UnresolvedGames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chess_unresolved_games_total",
			Help: "The total number of matched games whose result could not be mapped to an outcome.",
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chess_fetch_failures_total",
			Help: "The total number of game history fetches that failed and degraded to an empty result.",
		}),
		SyncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chess_sync_duration_seconds",
			Help:    "The duration of synchronization runs.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chess_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chess_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chess_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.SyncRuns,
		s.SyncSkipped,
		s.PairingsResolved,
		s.UnresolvedGames,
		s.FetchFailures,
		s.SyncDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncSyncRuns() {
	s.SyncRuns.Inc()
}

func (s *Service) IncSyncSkipped() {
	s.SyncSkipped.Inc()
}

func (s *Service) IncPairingsResolved(source string) {
	s.PairingsResolved.WithLabelValues(source).Inc()
}

func (s *Service) IncUnresolvedGames() {
	s.UnresolvedGames.Inc()
}

func (s *Service) IncFetchFailures() {
	s.FetchFailures.Inc()
}

func (s *Service) ObserveSyncDuration(seconds float64) {
	s.SyncDuration.Observe(seconds)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
