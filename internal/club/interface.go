package club

import "github.com/mauv0809/chess-roundrobin/internal/tournament"

// ClubStore defines the interface for interacting with the live tournament.
// Every mutation is serialized; readers get an immutable snapshot.
type ClubStore interface {
	Snapshot() tournament.State
	SetRoster(entries []tournament.RosterEntry) (tournament.State, error)
	AddPlayer(name, username string) (tournament.State, error)
	RemovePlayer(name string) (tournament.State, error)
	CommitSync(run SyncRun, results []tournament.Result) ([]tournament.Result, error)
	ApplyManualResult(pairingID string, outcome tournament.Outcome) (tournament.Result, error)
	Reset() error
	ResultLog() ([]JournalEntry, error)
	SyncRuns(limit int) ([]SyncRun, error)
}
