package club

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/mauv0809/chess-roundrobin/internal/tournament"
)

// ErrStaleSnapshot is returned when a sync commit was computed against a
// roster or reset epoch that is no longer current.
var ErrStaleSnapshot = errors.New("tournament changed since the snapshot was taken")

// store holds the live tournament state and journals applied results.
type store struct {
	db    *sql.DB
	mu    sync.RWMutex
	state tournament.State
	now   func() time.Time
}

// SyncRun describes one synchronization run being committed.
type SyncRun struct {
	RunID            string    `json:"run_id"`
	Epoch            uint64    `json:"-"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	PairingsChecked  int       `json:"pairings_checked"`
	PairingsResolved int       `json:"pairings_resolved"`
}

// JournalEntry is one applied result as recorded in the journal.
type JournalEntry struct {
	PairingID string             `json:"pairing_id"`
	PlayerA   string             `json:"player_a"`
	PlayerB   string             `json:"player_b"`
	Outcome   tournament.Outcome `json:"outcome"`
	Evidence  string             `json:"evidence,omitempty"`
	Source    tournament.Source  `json:"source"`
	CheckedAt time.Time          `json:"checked_at"`
	AppliedAt time.Time          `json:"applied_at"`
	RunID     string             `json:"run_id,omitempty"`
}
