package club

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/chess-roundrobin/internal/tournament"
)

// New creates a new ClubStore seeded with the given tournament state.
func New(db *sql.DB, initial tournament.State) ClubStore {
	return newStore(db, initial, time.Now)
}

func newStore(db *sql.DB, initial tournament.State, now func() time.Time) *store {
	return &store{
		db:    db,
		state: initial,
		now:   now,
	}
}

// Snapshot returns the current tournament state. The returned value is never
// mutated by the store.
func (s *store) Snapshot() tournament.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetRoster replaces the roster, keeping results of surviving pairings and
// removing journal rows of dropped ones.
func (s *store) SetRoster(entries []tournament.RosterEntry) (tournament.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.WithRoster(entries)
	if err != nil {
		return s.state, err
	}
	return s.commitRosterLocked(next)
}

func (s *store) AddPlayer(name, username string) (tournament.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.AddPlayer(name, username)
	if err != nil {
		return s.state, err
	}
	log.Info("Adding player", "name", name, "username", username)
	return s.commitRosterLocked(next)
}

func (s *store) RemovePlayer(name string) (tournament.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.RemovePlayer(name)
	if err != nil {
		return s.state, err
	}
	log.Info("Removing player", "name", name)
	return s.commitRosterLocked(next)
}

func (s *store) commitRosterLocked(next tournament.State) (tournament.State, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return s.state, err
	}
	for _, p := range s.state.Pairings {
		if _, ok := next.Pairing(p.ID); ok {
			continue
		}
		if _, err := tx.Exec(`DELETE FROM results WHERE pairing_id = ?`, p.ID); err != nil {
			tx.Rollback()
			return s.state, fmt.Errorf("failed to drop journaled result: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return s.state, err
	}
	log.Info("Roster updated", "players", len(next.Players), "pairings", len(next.Pairings), "epoch", next.Epoch)
	s.state = next
	return next, nil
}

// CommitSync applies the results of one synchronization run in a single
// critical section and stamps the sync time, whether or not anything changed.
// Results for pairings that are gone or already resolved are skipped.
func (s *store) CommitSync(run SyncRun, results []tournament.Result) ([]tournament.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.Epoch != s.state.Epoch {
		log.Warn("Discarding sync results computed against an old roster", "runID", run.RunID, "runEpoch", run.Epoch, "epoch", s.state.Epoch)
		return nil, ErrStaleSnapshot
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	next := s.state
	applied := make([]tournament.Result, 0, len(results))
	appliedAt := s.now()
	for _, r := range results {
		candidate, err := next.ApplyOutcome(r)
		if err != nil {
			log.Warn("Skipping result", "pairingID", r.PairingID, "error", err)
			continue
		}
		if err := s.journal(tx, candidate, r, appliedAt, run.RunID); err != nil {
			log.Error("Failed to journal result, skipping", "pairingID", r.PairingID, "error", err)
			continue
		}
		next = candidate
		applied = append(applied, r)
	}

	run.PairingsResolved = len(applied)
	next = next.WithLastSync(run.FinishedAt)
	_, err = tx.Exec(`INSERT INTO sync_runs (run_id, started_at, finished_at, pairings_checked, pairings_resolved) VALUES (?, ?, ?, ?, ?)`,
		run.RunID, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(), run.PairingsChecked, run.PairingsResolved)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record sync run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sync: %w", err)
	}

	s.state = next
	return applied, nil
}

// ApplyManualResult records an administrator's result for an open pairing.
func (s *store) ApplyManualResult(pairingID string, outcome tournament.Outcome) (tournament.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.now().UTC()
	next, err := s.state.ApplyManualResult(pairingID, outcome, at)
	if err != nil {
		return tournament.Result{}, err
	}
	r := tournament.Result{PairingID: pairingID, Outcome: outcome, CheckedAt: at, Source: tournament.SourceManual}

	tx, err := s.db.Begin()
	if err != nil {
		return tournament.Result{}, err
	}
	if err := s.journal(tx, next, r, at, ""); err != nil {
		tx.Rollback()
		return tournament.Result{}, fmt.Errorf("failed to journal manual result: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return tournament.Result{}, err
	}

	log.Info("Manual result applied", "pairingID", pairingID, "outcome", outcome)
	s.state = next
	return r, nil
}

// Reset zeroes all scores, reopens all pairings and empties the journal.
func (s *store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM results`); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}
	s.state = s.state.Reset()
	log.Info("Tournament reset", "epoch", s.state.Epoch)
	return nil
}

func (s *store) journal(tx *sql.Tx, state tournament.State, r tournament.Result, appliedAt time.Time, runID string) error {
	p, ok := state.Pairing(r.PairingID)
	if !ok {
		return tournament.ErrPairingNotFound
	}
	_, err := tx.Exec(`
		INSERT INTO results (pairing_id, player_a, player_b, outcome, evidence, source, checked_at, applied_at, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.PlayerA, p.PlayerB, string(r.Outcome), nullString(r.Evidence), string(r.Source),
		r.CheckedAt.UnixMilli(), appliedAt.UnixMilli(), nullString(runID))
	return err
}

// ResultLog returns every journaled result, oldest first.
func (s *store) ResultLog() ([]JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT pairing_id, player_a, player_b, outcome, evidence, source, checked_at, applied_at, run_id
		FROM results
		ORDER BY applied_at, pairing_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var evidence, runID sql.NullString
		var checkedAt, appliedAt int64
		if err := rows.Scan(&e.PairingID, &e.PlayerA, &e.PlayerB, &e.Outcome, &evidence, &e.Source, &checkedAt, &appliedAt, &runID); err != nil {
			return nil, err
		}
		e.Evidence = evidence.String
		e.RunID = runID.String
		e.CheckedAt = time.UnixMilli(checkedAt).UTC()
		e.AppliedAt = time.UnixMilli(appliedAt).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SyncRuns returns the most recent committed runs, newest first.
func (s *store) SyncRuns(limit int) ([]SyncRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT run_id, started_at, finished_at, pairings_checked, pairings_resolved
		FROM sync_runs
		ORDER BY finished_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []SyncRun
	for rows.Next() {
		var r SyncRun
		var started, finished int64
		if err := rows.Scan(&r.RunID, &started, &finished, &r.PairingsChecked, &r.PairingsResolved); err != nil {
			return nil, err
		}
		r.StartedAt = time.UnixMilli(started).UTC()
		r.FinishedAt = time.UnixMilli(finished).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
