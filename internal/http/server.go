package http

import (
	"context"
	"net/http"

	"github.com/mauv0809/chess-roundrobin/internal/club"
	"github.com/mauv0809/chess-roundrobin/internal/config"
	"github.com/mauv0809/chess-roundrobin/internal/metrics"
	"github.com/mauv0809/chess-roundrobin/internal/notifier"
	"github.com/mauv0809/chess-roundrobin/internal/pubsub"
)

// NewServer wires the HTTP surface. ctx must live as long as the process; it
// drives scheduled runs enabled through the API.
func NewServer(ctx context.Context, store club.ClubStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, processor Syncer, scheduler Trigger, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Processor:      processor,
		Scheduler:      scheduler,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
		ctx:            ctx,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Admin routes additionally require the bearer secret.
	admin := adminMiddleware(s.Cfg.AdminSecret)

	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("GET /standings", Chain(s.StandingsHandler(), paramsMiddleware))
	s.Router.Handle("GET /pairings", Chain(s.ListPairingsHandler(), paramsMiddleware))
	s.Router.Handle("GET /results", Chain(s.ResultLogHandler(), paramsMiddleware))
	s.Router.Handle("GET /sync/status", Chain(s.SyncStatusHandler(), paramsMiddleware))

	s.Router.Handle("POST /sync", Chain(s.SyncHandler(), paramsMiddleware, admin))
	s.Router.Handle("POST /pairings/{id}/result", Chain(s.ManualResultHandler(), paramsMiddleware, admin))
	s.Router.Handle("POST /reset", Chain(s.ResetHandler(), paramsMiddleware, admin))
	s.Router.Handle("POST /roster", Chain(s.AddPlayerHandler(), paramsMiddleware, admin))
	s.Router.Handle("PUT /roster", Chain(s.ReplaceRosterHandler(), paramsMiddleware, admin))
	s.Router.Handle("DELETE /roster/{name}", Chain(s.RemovePlayerHandler(), paramsMiddleware, admin))
	s.Router.Handle("POST /scheduler/enable", Chain(s.EnableSchedulerHandler(), paramsMiddleware, admin))
	s.Router.Handle("POST /scheduler/disable", Chain(s.DisableSchedulerHandler(), paramsMiddleware, admin))
	s.Router.Handle("POST /standings/announce", Chain(s.AnnounceStandingsHandler(), paramsMiddleware, admin))

	s.Router.Handle("POST /slack/command/standings", Chain(s.StandingsCommandHandler(), paramsMiddleware, slackVerificationMiddleware(s.Cfg.Slack.SigningSecret)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
