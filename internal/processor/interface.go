package processor

import (
	"github.com/mauv0809/chess-roundrobin/internal/club"
	"github.com/mauv0809/chess-roundrobin/internal/notifier"
	"github.com/mauv0809/chess-roundrobin/internal/tournament"
)

// Store defines the tournament operations required by the processor.
type Store interface {
	Snapshot() tournament.State
	CommitSync(run club.SyncRun, results []tournament.Result) ([]tournament.Result, error)
}

// Notifier defines the notification operations required by the processor.
// This is an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
