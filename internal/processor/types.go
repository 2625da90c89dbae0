package processor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mauv0809/chess-roundrobin/internal/chesscom"
	"github.com/mauv0809/chess-roundrobin/internal/metrics"
	"github.com/mauv0809/chess-roundrobin/internal/pubsub"
	"github.com/mauv0809/chess-roundrobin/internal/tournament"
)

// ErrSyncInProgress is returned when a run is triggered while another is active.
var ErrSyncInProgress = errors.New("a synchronization run is already in progress")

// Processor runs synchronization of open pairings against game history.
type Processor struct {
	store       Store
	history     chesscom.HistorySource
	pubsub      pubsub.PubSubClient
	notifier    Notifier
	metrics     metrics.Metrics
	maxParallel int
	now         func() time.Time

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
}

// Report summarizes one synchronization run.
type Report struct {
	RunID      string              `json:"run_id"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	DryRun     bool                `json:"dry_run"`
	Checked    int                 `json:"checked"`
	Matched    int                 `json:"matched"`
	Unresolved int                 `json:"unresolved"`
	Applied    []tournament.Result `json:"applied"`
}

// Resolution is the decision taken for a matched game.
type Resolution int

const (
	Unresolved Resolution = iota
	AWin
	BWin
	Draw
)

func (r Resolution) String() string {
	switch r {
	case AWin:
		return "a-win"
	case BWin:
		return "b-win"
	case Draw:
		return "draw"
	}
	return "unresolved"
}

// Outcome converts r to a pairing outcome. It reports false for Unresolved.
func (r Resolution) Outcome() (tournament.Outcome, bool) {
	switch r {
	case AWin:
		return tournament.OutcomeAWin, true
	case BWin:
		return tournament.OutcomeBWin, true
	case Draw:
		return tournament.OutcomeDraw, true
	}
	return "", false
}
