package http

import (
	"context"
	"net/http"
	"time"

	"github.com/mauv0809/chess-roundrobin/internal/club"
	"github.com/mauv0809/chess-roundrobin/internal/config"
	"github.com/mauv0809/chess-roundrobin/internal/metrics"
	"github.com/mauv0809/chess-roundrobin/internal/notifier"
	"github.com/mauv0809/chess-roundrobin/internal/processor"
	"github.com/mauv0809/chess-roundrobin/internal/pubsub"
	"github.com/mauv0809/chess-roundrobin/internal/tournament"
)

// Syncer reports on and cancels synchronization runs.
type Syncer interface {
	CancelRun()
	Running() bool
}

// Trigger controls the recurring synchronization and on-demand runs.
type Trigger interface {
	RunOnce(ctx context.Context, dryRun bool) (processor.Report, error)
	Enable(ctx context.Context) bool
	Disable() bool
	Enabled() bool
	Interval() time.Duration
}

type Server struct {
	Store          club.ClubStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Processor      Syncer
	Scheduler      Trigger
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient

	// ctx outlives requests and drives the scheduler loop.
	ctx context.Context
}

type standingsResponse struct {
	Standings []tournament.Standing `json:"standings"`
	LastSync  *time.Time            `json:"last_sync"`
}

type pairingView struct {
	tournament.Pairing
	PlayerAName  string `json:"player_a_name"`
	PlayerBName  string `json:"player_b_name"`
	ChallengeURL string `json:"challenge_url,omitempty"`
}

type syncStatusResponse struct {
	Running          bool           `json:"running"`
	SchedulerEnabled bool           `json:"scheduler_enabled"`
	Interval         string         `json:"interval"`
	LastSync         *time.Time     `json:"last_sync"`
	RecentRuns       []club.SyncRun `json:"recent_runs"`
}

type manualResultRequest struct {
	Outcome string `json:"outcome"`
}

type rosterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type rosterReplaceRequest struct {
	Players []tournament.RosterEntry `json:"players"`
}
